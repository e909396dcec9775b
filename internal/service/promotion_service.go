package service

import (
	"context"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/pkg/errors"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrPromotionInvalid  = errors.New("promotion input is invalid")
)

// PromotionInput 的起止时间必填，接受常见日期格式并按站点时区解析。
type PromotionInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	RestaurantID string `json:"restaurantId"`
	ImageURL     string `json:"imageUrl"`
	LinkURL      string `json:"linkUrl"`
	StartsAt     string `json:"startsAt"`
	EndsAt       string `json:"endsAt"`
}

// PromotionService 管理首页推广活动。
type PromotionService struct {
	store *repository.Store
	loc   *time.Location
	now   func() time.Time
}

// NewPromotionService creates a PromotionService instance.
func NewPromotionService(store *repository.Store, loc *time.Location) *PromotionService {
	if loc == nil {
		loc = time.UTC
	}
	return &PromotionService{store: store, loc: loc, now: time.Now}
}

// Create validates and stores a promotion.
func (s *PromotionService) Create(ctx context.Context, input PromotionInput) (*db.Promotion, error) {
	promotion := &db.Promotion{}
	if err := s.apply(promotion, input); err != nil {
		return nil, err
	}
	if err := s.store.Promotions().Create(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// Update replaces every field of an existing promotion.
func (s *PromotionService) Update(ctx context.Context, id string, input PromotionInput) (*db.Promotion, error) {
	promotion, err := s.store.Promotions().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}
	if err := s.apply(promotion, input); err != nil {
		return nil, err
	}
	if err := s.store.Promotions().Save(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// Delete removes a promotion; missing promotions are ignored.
func (s *PromotionService) Delete(ctx context.Context, id string) error {
	_, err := s.store.Promotions().Delete(ctx, id)
	return err
}

// ListActive returns promotions running right now.
func (s *PromotionService) ListActive(ctx context.Context) ([]db.Promotion, error) {
	return s.store.Promotions().ListActive(ctx, s.now().UTC())
}

// ListAll returns every promotion for the admin console.
func (s *PromotionService) ListAll(ctx context.Context) ([]db.Promotion, error) {
	return s.store.Promotions().List(ctx)
}

func (s *PromotionService) apply(promotion *db.Promotion, input PromotionInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return errors.Wrap(ErrPromotionInvalid, "title is required")
	}
	startsAt, err := s.parseTime(input.StartsAt)
	if err != nil {
		return errors.Wrap(ErrPromotionInvalid, "startsAt is not a date")
	}
	endsAt, err := s.parseTime(input.EndsAt)
	if err != nil {
		return errors.Wrap(ErrPromotionInvalid, "endsAt is not a date")
	}
	if !endsAt.After(startsAt) {
		return errors.Wrap(ErrPromotionInvalid, "endsAt must be after startsAt")
	}

	promotion.Title = title
	promotion.Description = strings.TrimSpace(input.Description)
	promotion.RestaurantID = strings.TrimSpace(input.RestaurantID)
	promotion.ImageURL = strings.TrimSpace(input.ImageURL)
	promotion.LinkURL = strings.TrimSpace(input.LinkURL)
	promotion.StartsAt = startsAt
	promotion.EndsAt = endsAt
	return nil
}

func (s *PromotionService) parseTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errors.New("empty date")
	}
	parsed, err := dateparse.ParseIn(trimmed, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
