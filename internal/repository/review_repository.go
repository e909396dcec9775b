package repository

import (
	"context"
	"time"

	"github.com/dinelog/internal/db"
	"gorm.io/gorm"
)

// ReviewRepository 访问 reviews 集合。
type ReviewRepository struct {
	db    *gorm.DB
	appID string
}

func (r *ReviewRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.Review{}).Where("app_id = ?", r.appID)
}

// Create inserts a review under the current tenant.
func (r *ReviewRepository) Create(ctx context.Context, review *db.Review) error {
	review.AppID = r.appID
	return r.db.WithContext(ctx).Create(review).Error
}

// Get fetches a review by id.
func (r *ReviewRepository) Get(ctx context.Context, id string) (*db.Review, error) {
	var review db.Review
	if err := r.scoped(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, notFound(err)
	}
	return &review, nil
}

// CountByUserSince counts the user's reviews created at or after since.
func (r *ReviewRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.scoped(ctx).Where("user_id = ? AND created_at >= ?", userID, since).Count(&count).Error
	return count, err
}

// CountByUserAndRestaurant counts the user's reviews of one restaurant.
func (r *ReviewRepository) CountByUserAndRestaurant(ctx context.Context, userID, restaurantID string) (int64, error) {
	var count int64
	err := r.scoped(ctx).Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).Count(&count).Error
	return count, err
}

// ListByRestaurant returns published reviews of a restaurant, newest first.
func (r *ReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]db.Review, error) {
	var reviews []db.Review
	query := r.scoped(ctx).
		Where("restaurant_id = ? AND status = ?", restaurantID, db.ReviewStatusPublished).
		Order("created_at desc").Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByIDs returns the reviews that exist among ids.
func (r *ReviewRepository) ListByIDs(ctx context.Context, ids []string) ([]db.Review, error) {
	if len(ids) == 0 {
		return []db.Review{}, nil
	}
	var reviews []db.Review
	if err := r.scoped(ctx).Where("id IN ?", ids).Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
