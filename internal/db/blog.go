package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusRejected  = "rejected"
)

// BlogPost 定义了博客文章。草稿经审核后变为 published 或 rejected。
type BlogPost struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	AppID         string     `gorm:"size:64;index:idx_blog_listing,priority:1;not null" json:"-"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	CoverImageURL string     `json:"coverImageUrl,omitempty"`
	Tags          []string   `gorm:"serializer:json" json:"tags"`
	Status        string     `gorm:"size:16;index:idx_blog_listing,priority:2" json:"status"`
	AuthorID      string     `gorm:"size:128" json:"authorId"`
	AuthorName    string     `json:"authorName"`
	SubmittedAt   time.Time  `gorm:"index:idx_blog_listing,priority:3" json:"submittedAt"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy    string     `json:"reviewedBy,omitempty"`
	RejectReason  string     `json:"rejectReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// BeforeCreate 为新文章分配 ID。
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// BlogPostTag 是标签成员关系的索引行，随文章一起在事务中重建。
type BlogPostTag struct {
	AppID      string `gorm:"primaryKey;size:64"`
	BlogPostID string `gorm:"primaryKey;size:36"`
	Tag        string `gorm:"primaryKey;size:64;index"`
}
