package repository

import (
	"context"
	"time"

	"github.com/dinelog/internal/db"
	"gorm.io/gorm"
)

// PromotionRepository 访问 promotions 集合。
type PromotionRepository struct {
	db    *gorm.DB
	appID string
}

func (r *PromotionRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.Promotion{}).Where("app_id = ?", r.appID)
}

func (r *PromotionRepository) Create(ctx context.Context, promotion *db.Promotion) error {
	promotion.AppID = r.appID
	return r.db.WithContext(ctx).Create(promotion).Error
}

func (r *PromotionRepository) Save(ctx context.Context, promotion *db.Promotion) error {
	promotion.AppID = r.appID
	return r.db.WithContext(ctx).Save(promotion).Error
}

func (r *PromotionRepository) Get(ctx context.Context, id string) (*db.Promotion, error) {
	var promotion db.Promotion
	if err := r.scoped(ctx).Where("id = ?", id).First(&promotion).Error; err != nil {
		return nil, notFound(err)
	}
	return &promotion, nil
}

func (r *PromotionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("app_id = ? AND id = ?", r.appID, id).Delete(&db.Promotion{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns every promotion, latest start first.
func (r *PromotionRepository) List(ctx context.Context) ([]db.Promotion, error) {
	var promotions []db.Promotion
	if err := r.scoped(ctx).Order("starts_at desc").Order("id asc").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// ListActive 返回在 now 时刻有效的活动。
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]db.Promotion, error) {
	var promotions []db.Promotion
	if err := r.scoped(ctx).
		Where("starts_at <= ? AND ends_at > ?", now, now).
		Order("ends_at asc").Order("id asc").
		Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}
