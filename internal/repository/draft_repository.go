package repository

import (
	"context"
	"time"

	"github.com/dinelog/internal/db"
	"gorm.io/gorm"
)

// DraftRepository 访问用户的评论草稿子集合。
type DraftRepository struct {
	db    *gorm.DB
	appID string
}

func (r *DraftRepository) owned(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.DraftReview{}).Where("app_id = ? AND user_id = ?", r.appID, userID)
}

// Create inserts a draft under the current tenant.
func (r *DraftRepository) Create(ctx context.Context, draft *db.DraftReview) error {
	draft.AppID = r.appID
	return r.db.WithContext(ctx).Create(draft).Error
}

// Save writes every column of draft.
func (r *DraftRepository) Save(ctx context.Context, draft *db.DraftReview) error {
	draft.AppID = r.appID
	return r.db.WithContext(ctx).Save(draft).Error
}

// Get fetches one of the user's drafts.
func (r *DraftRepository) Get(ctx context.Context, userID, id string) (*db.DraftReview, error) {
	var draft db.DraftReview
	if err := r.owned(ctx, userID).Where("id = ?", id).First(&draft).Error; err != nil {
		return nil, notFound(err)
	}
	return &draft, nil
}

// ListActive returns the user's drafts that have not expired at now.
func (r *DraftRepository) ListActive(ctx context.Context, userID string, now time.Time) ([]db.DraftReview, error) {
	var drafts []db.DraftReview
	if err := r.owned(ctx, userID).
		Where("expires_at > ?", now).
		Order("updated_at desc").
		Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

// Delete removes one of the user's drafts and reports whether it existed.
func (r *DraftRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("app_id = ? AND user_id = ? AND id = ?", r.appID, userID, id).
		Delete(&db.DraftReview{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
