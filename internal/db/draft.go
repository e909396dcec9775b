package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DraftTTL 是评论草稿的保留时长。
const DraftTTL = 3 * 24 * time.Hour

// DraftReview 是用户未提交的评论草稿，过期后不再可见。
type DraftReview struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	AppID        string         `gorm:"size:64;index:idx_draft_owner,priority:1;not null" json:"-"`
	UserID       string         `gorm:"size:128;index:idx_draft_owner,priority:2" json:"userId"`
	RestaurantID string         `gorm:"size:36" json:"restaurantId"`
	Payload      datatypes.JSON `json:"payload"`
	ExpiresAt    time.Time      `gorm:"index" json:"expiresAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// BeforeCreate 为新草稿分配 ID。
func (d *DraftReview) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the draft is past its expiry at now.
func (d DraftReview) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}
