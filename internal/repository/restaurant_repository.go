package repository

import (
	"context"
	"strings"

	"github.com/dinelog/internal/db"
	"gorm.io/gorm"
)

// RestaurantRepository 访问 restaurants 集合。
type RestaurantRepository struct {
	db    *gorm.DB
	appID string
}

// RestaurantQuery holds the predicates the database evaluates directly.
type RestaurantQuery struct {
	Province    string
	City        string
	MinSpending *int
	MaxSpending *int
	MinRating   *float64
	After       *db.Restaurant
	Limit       int
}

func (r *RestaurantRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.Restaurant{}).Where("restaurants.app_id = ?", r.appID)
}

// Create inserts a restaurant under the current tenant.
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *db.Restaurant) error {
	restaurant.AppID = r.appID
	return r.db.WithContext(ctx).Create(restaurant).Error
}

// Get fetches a restaurant by id.
func (r *RestaurantRepository) Get(ctx context.Context, id string) (*db.Restaurant, error) {
	var restaurant db.Restaurant
	if err := r.scoped(ctx).Where("restaurants.id = ?", id).First(&restaurant).Error; err != nil {
		return nil, notFound(err)
	}
	return &restaurant, nil
}

// FindByIDs returns the restaurants that exist among ids, in no particular order.
func (r *RestaurantRepository) FindByIDs(ctx context.Context, ids []string) ([]db.Restaurant, error) {
	if len(ids) == 0 {
		return []db.Restaurant{}, nil
	}
	var restaurants []db.Restaurant
	if err := r.scoped(ctx).Where("restaurants.id IN ?", ids).Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// Query 按英文名与 ID 稳定排序，只执行数据库可以直接处理的等值与范围条件。
func (r *RestaurantRepository) Query(ctx context.Context, q RestaurantQuery) ([]db.Restaurant, error) {
	query := r.scoped(ctx)

	if q.Province != "" {
		query = query.Where("restaurants.province = ?", q.Province)
	}
	if q.City != "" {
		query = query.Where("restaurants.city = ?", q.City)
	}
	if q.MinSpending != nil {
		query = query.Where("restaurants.avg_spending >= ?", *q.MinSpending)
	}
	if q.MaxSpending != nil {
		query = query.Where("restaurants.avg_spending <= ?", *q.MaxSpending)
	}
	if q.MinRating != nil {
		query = query.Where("restaurants.average_rating >= ?", *q.MinRating)
	}
	if q.After != nil {
		query = query.Where(
			"(restaurants.name_en > ? OR (restaurants.name_en = ? AND restaurants.id > ?))",
			q.After.Name.EN, q.After.Name.EN, q.After.ID,
		)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var restaurants []db.Restaurant
	if err := query.Order("restaurants.name_en asc").Order("restaurants.id asc").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// AdminList 用于后台列表与搜索，按更新时间倒序分页。
func (r *RestaurantRepository) AdminList(ctx context.Context, search string, offset, limit int) ([]db.Restaurant, int64, error) {
	query := r.scoped(ctx)
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where(
			"(restaurants.name_lower_en LIKE ? OR restaurants.name_zh_tw LIKE ? OR LOWER(restaurants.city) LIKE ?)",
			like, "%"+trimmed+"%", like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var restaurants []db.Restaurant
	if err := query.Order("restaurants.updated_at desc").Order("restaurants.id asc").
		Offset(offset).Limit(limit).Find(&restaurants).Error; err != nil {
		return nil, 0, err
	}
	return restaurants, total, nil
}

// Save writes every column of restaurant.
func (r *RestaurantRepository) Save(ctx context.Context, restaurant *db.Restaurant) error {
	restaurant.AppID = r.appID
	return r.db.WithContext(ctx).Save(restaurant).Error
}

// UpdateAggregate 更新评分聚合字段。
func (r *RestaurantRepository) UpdateAggregate(ctx context.Context, id string, reviewCount int, totalRatingSum, averageRating float64) error {
	result := r.scoped(ctx).Where("restaurants.id = ?", id).Updates(map[string]interface{}{
		"review_count":     reviewCount,
		"total_rating_sum": totalRatingSum,
		"average_rating":   averageRating,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a restaurant and reports whether it existed.
func (r *RestaurantRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("app_id = ? AND id = ?", r.appID, id).Delete(&db.Restaurant{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
