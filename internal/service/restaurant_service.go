package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/storage"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultRestaurantPageSize = 10
	maxRestaurantPageSize     = 50
	defaultReservationTime    = "12:00"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrRestaurantInvalid  = errors.New("restaurant input is invalid")
)

// RestaurantService 负责餐厅筛选分页与后台增删改。
type RestaurantService struct {
	store   *repository.Store
	objects storage.ObjectStore
	log     *zap.Logger
	loc     *time.Location
	now     func() time.Time
}

// RestaurantFilter 汇总搜索接口接受的全部筛选参数。
type RestaurantFilter struct {
	Province         string
	City             string
	MinSpending      *int
	MaxSpending      *int
	MinRating        *float64
	ReservationModes []string
	PaymentMethods   []string
	Facilities       []string
	Categories       []string
	Search           string
	PartySize        int
	ReservationDate  string
	ReservationTime  string
	// FavoriteIDs 非 nil 时只返回其中的餐厅。
	FavoriteIDs     []string
	StartAfterDocID string
	PageSize        int
}

// RestaurantPage is one page of search results.
type RestaurantPage struct {
	Restaurants []db.Restaurant
	HasMore     bool
	LastDocID   string
}

// RestaurantInput represents fields accepted when creating a restaurant.
type RestaurantInput struct {
	Name             db.LocalizedName  `json:"name"`
	Province         string            `json:"province"`
	City             string            `json:"city"`
	District         string            `json:"district"`
	StreetAddress    string            `json:"streetAddress"`
	FullAddress      string            `json:"fullAddress"`
	Category         string            `json:"category"`
	AvgSpending      int               `json:"avgSpending"`
	Phone            string            `json:"phone"`
	Website          string            `json:"website"`
	SeatingCapacity  string            `json:"seatingCapacity"`
	BusinessHours    []db.BusinessHour `json:"businessHours"`
	ReservationModes []string          `json:"reservationModes"`
	PaymentMethods   []string          `json:"paymentMethods"`
	Facilities       []string          `json:"facilities"`
	PhotoURLs        []string          `json:"photoUrls"`
}

// RestaurantPatch holds a partial update; nil fields are left untouched.
type RestaurantPatch struct {
	Name             *db.LocalizedName  `json:"name"`
	Province         *string            `json:"province"`
	City             *string            `json:"city"`
	District         *string            `json:"district"`
	StreetAddress    *string            `json:"streetAddress"`
	FullAddress      *string            `json:"fullAddress"`
	Category         *string            `json:"category"`
	AvgSpending      *int               `json:"avgSpending"`
	Phone            *string            `json:"phone"`
	Website          *string            `json:"website"`
	SeatingCapacity  *string            `json:"seatingCapacity"`
	BusinessHours    *[]db.BusinessHour `json:"businessHours"`
	ReservationModes *[]string          `json:"reservationModes"`
	PaymentMethods   *[]string          `json:"paymentMethods"`
	Facilities       *[]string          `json:"facilities"`
	PhotoURLs        *[]string          `json:"photoUrls"`
}

// RestaurantListResult aggregates the admin list.
type RestaurantListResult struct {
	Restaurants []db.Restaurant
	Total       int64
	TotalPages  int
	Page        int
	PerPage     int
}

// NewRestaurantService creates a RestaurantService instance.
func NewRestaurantService(store *repository.Store, objects storage.ObjectStore, log *zap.Logger, loc *time.Location) *RestaurantService {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RestaurantService{store: store, objects: objects, log: log, loc: loc, now: time.Now}
}

// Search 先在数据库中执行等值/范围条件并多取一条，再在内存中应用其余条件。
func (s *RestaurantService) Search(ctx context.Context, filter RestaurantFilter) (*RestaurantPage, error) {
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultRestaurantPageSize
	}
	if pageSize > maxRestaurantPageSize {
		pageSize = maxRestaurantPageSize
	}

	query := repository.RestaurantQuery{
		Province:    strings.TrimSpace(filter.Province),
		City:        strings.TrimSpace(filter.City),
		MinSpending: filter.MinSpending,
		MaxSpending: filter.MaxSpending,
		MinRating:   filter.MinRating,
		Limit:       pageSize + 1,
	}

	if cursorID := strings.TrimSpace(filter.StartAfterDocID); cursorID != "" {
		after, err := s.store.Restaurants().Get(ctx, cursorID)
		switch {
		case err == nil:
			query.After = after
		case errors.Is(err, repository.ErrNotFound):
			s.log.Warn("restaurant cursor not found, starting from the beginning", zap.String("startAfterDocId", cursorID))
		default:
			return nil, errors.Wrap(err, "resolve restaurant cursor")
		}
	}

	candidates, err := s.store.Restaurants().Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query restaurants")
	}

	match := s.postFilter(filter)
	filtered := make([]db.Restaurant, 0, len(candidates))
	for _, restaurant := range candidates {
		if match(restaurant) {
			filtered = append(filtered, restaurant)
		}
	}

	page := &RestaurantPage{HasMore: len(filtered) > pageSize}
	if page.HasMore {
		filtered = filtered[:pageSize]
	}
	page.Restaurants = filtered
	if len(filtered) > 0 {
		page.LastDocID = filtered[len(filtered)-1].ID
	}
	return page, nil
}

// postFilter 构建内存筛选函数，各条件之间为 AND 关系。
func (s *RestaurantService) postFilter(filter RestaurantFilter) func(db.Restaurant) bool {
	checkHours := strings.TrimSpace(filter.ReservationDate) != "" || strings.TrimSpace(filter.ReservationTime) != ""
	var (
		weekday time.Weekday
		clock   string
	)
	if checkHours {
		weekday = s.reservationWeekday(filter.ReservationDate)
		clock = strings.TrimSpace(filter.ReservationTime)
		if clock == "" {
			clock = defaultReservationTime
		} else if _, ok := parseClock(clock); !ok {
			s.log.Warn("invalid reservation time, using default", zap.String("reservationTime", clock))
			clock = defaultReservationTime
		}
	}

	var favorites map[string]struct{}
	if filter.FavoriteIDs != nil {
		favorites = make(map[string]struct{}, len(filter.FavoriteIDs))
		for _, id := range filter.FavoriteIDs {
			favorites[id] = struct{}{}
		}
	}

	return func(r db.Restaurant) bool {
		if !SeatingAllows(r.SeatingCapacity, filter.PartySize) {
			return false
		}
		if checkHours && !IsOpenAt(r.BusinessHours, weekday, clock) {
			return false
		}
		if !containsAll(r.ReservationModes, filter.ReservationModes) ||
			!containsAll(r.PaymentMethods, filter.PaymentMethods) ||
			!containsAll(r.Facilities, filter.Facilities) {
			return false
		}
		if len(filter.Categories) > 0 && !containsString(filter.Categories, r.Category) {
			return false
		}
		if !matchesText(r, filter.Search) {
			return false
		}
		if favorites != nil {
			if _, ok := favorites[r.ID]; !ok {
				return false
			}
		}
		return true
	}
}

// reservationWeekday 解析预约日期，缺省或无法解析时使用今天。
func (s *RestaurantService) reservationWeekday(raw string) time.Weekday {
	today := s.now().In(s.loc)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return today.Weekday()
	}
	date, err := dateparse.ParseIn(trimmed, s.loc)
	if err != nil {
		s.log.Warn("invalid reservation date, using today", zap.String("reservationDate", trimmed), zap.Error(err))
		return today.Weekday()
	}
	return date.Weekday()
}

// Get fetches one restaurant.
func (s *RestaurantService) Get(ctx context.Context, id string) (*db.Restaurant, error) {
	restaurant, err := s.store.Restaurants().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

// AdminList 返回后台列表，支持按名称与城市搜索。
func (s *RestaurantService) AdminList(ctx context.Context, search string, page, perPage int) (*RestaurantListResult, error) {
	result := &RestaurantListResult{Page: normalizePage(page), PerPage: normalizePerPage(perPage, 20)}
	offset := (result.Page - 1) * result.PerPage

	restaurants, total, err := s.store.Restaurants().AdminList(ctx, search, offset, result.PerPage)
	if err != nil {
		return nil, err
	}
	result.Restaurants = restaurants
	result.Total = total
	result.TotalPages = calculateTotalPages(total, result.PerPage)
	return result, nil
}

// Create 写入新餐厅，并生成小写英文名索引字段。
func (s *RestaurantService) Create(ctx context.Context, input RestaurantInput) (*db.Restaurant, error) {
	if err := validateRestaurantName(input.Name); err != nil {
		return nil, err
	}

	restaurant := db.Restaurant{}
	if err := copier.Copy(&restaurant, &input); err != nil {
		return nil, errors.Wrap(err, "copy restaurant input")
	}
	trimRestaurant(&restaurant)

	if err := s.store.Restaurants().Create(ctx, &restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// Update 合并部分字段并刷新 updatedAt。
func (s *RestaurantService) Update(ctx context.Context, id string, patch RestaurantPatch) (*db.Restaurant, error) {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := copier.CopyWithOption(restaurant, &patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, errors.Wrap(err, "merge restaurant patch")
	}
	if err := validateRestaurantName(restaurant.Name); err != nil {
		return nil, err
	}
	trimRestaurant(restaurant)

	if err := s.store.Restaurants().Save(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// Delete 删除餐厅文档后清理其对象存储前缀。文档已不存在时同样视为成功。
func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	existed, err := s.store.Restaurants().Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete restaurant")
	}
	if s.objects == nil {
		return nil
	}

	prefix := s.store.RestaurantObjectPrefix(id)
	deleted, err := storage.DeletePrefix(ctx, s.objects, prefix)
	s.log.Info("restaurant deleted",
		zap.String("restaurantId", id),
		zap.Bool("existed", existed),
		zap.Int("objectsDeleted", deleted),
	)
	if err != nil {
		return errors.Wrapf(err, "clean up objects under %s", prefix)
	}
	return nil
}

// AddPhoto 校验图片后上传到餐厅前缀下，并追加到 photoUrls。
func (s *RestaurantService) AddPhoto(ctx context.Context, id string, body io.Reader) (*db.Restaurant, error) {
	if s.objects == nil {
		return nil, errors.New("object storage is not configured")
	}
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, info, err := ReadImage(body)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s%s", s.store.RestaurantObjectPrefix(id), uuid.NewString(), info.Extension)
	url, err := s.objects.Put(ctx, key, info.ContentType, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "upload restaurant photo")
	}

	restaurant.PhotoURLs = append(restaurant.PhotoURLs, url)
	if err := s.store.Restaurants().Save(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

func validateRestaurantName(name db.LocalizedName) error {
	if strings.TrimSpace(name.EN) == "" {
		return errors.Wrap(ErrRestaurantInvalid, "name.en is required")
	}
	return nil
}

func trimRestaurant(r *db.Restaurant) {
	r.Name.EN = strings.TrimSpace(r.Name.EN)
	r.Name.ZhTW = strings.TrimSpace(r.Name.ZhTW)
	r.NameLowerEN = strings.ToLower(r.Name.EN)
	r.Province = strings.TrimSpace(r.Province)
	r.City = strings.TrimSpace(r.City)
	r.Category = strings.TrimSpace(r.Category)
}
