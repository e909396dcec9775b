package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ReviewStatusPublished = "published"

// Review 定义了用户评论。创建后只能通过后台工具修改。
type Review struct {
	ID                string         `gorm:"primaryKey;size:36" json:"id"`
	AppID             string         `gorm:"size:64;index:idx_review_user_day,priority:1;index:idx_review_restaurant,priority:1;not null" json:"-"`
	RestaurantID      string         `gorm:"size:36;index:idx_review_restaurant,priority:2" json:"restaurantId"`
	UserID            string         `gorm:"size:128;index:idx_review_user_day,priority:2" json:"userId"`
	Username          string         `json:"username"`
	Title             string         `json:"title"`
	OverallRating     float64        `json:"overallRating"`
	TasteRating       float64        `json:"tasteRating"`
	ServiceRating     float64        `json:"serviceRating"`
	EnvironmentRating float64        `json:"environmentRating"`
	ValueRating       float64        `json:"valueRating"`
	CostPerPerson     int            `json:"costPerPerson"`
	Content           string         `json:"content"`
	ImageURLs         []string       `gorm:"serializer:json" json:"imageUrls"`
	Metadata          datatypes.JSON `json:"metadata,omitempty"`
	VisitCount        int            `json:"visitCount"`
	Status            string         `gorm:"size:16" json:"status"`
	CreatedAt         time.Time      `gorm:"index:idx_review_user_day,priority:3" json:"createdAt"`
}

// BeforeCreate 为新评论分配 ID。
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
