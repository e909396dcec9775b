package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Promotion 定义了首页推广活动。
type Promotion struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	AppID        string    `gorm:"size:64;index;not null" json:"-"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	RestaurantID string    `gorm:"size:36" json:"restaurantId,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	LinkURL      string    `json:"linkUrl,omitempty"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate 为新活动分配 ID。
func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ActiveAt reports whether now falls inside the promotion window.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.StartsAt.IsZero() && now.Before(p.StartsAt) {
		return false
	}
	if !p.EndsAt.IsZero() && !now.Before(p.EndsAt) {
		return false
	}
	return true
}
