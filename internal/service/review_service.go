package service

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// DailyReviewLimit 是每位用户每个 UTC 自然日可提交的评论数。
const DailyReviewLimit = 10

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")
)

// SubmissionOutcome 区分评论提交的三种正常结果，故障通过 error 返回。
type SubmissionOutcome int

const (
	SubmissionAccepted SubmissionOutcome = iota
	SubmissionLimitReached
	SubmissionInvalid
)

func (o SubmissionOutcome) String() string {
	switch o {
	case SubmissionAccepted:
		return "accepted"
	case SubmissionLimitReached:
		return "limit_reached"
	case SubmissionInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ReviewInput represents fields accepted when submitting a review.
type ReviewInput struct {
	RestaurantID      string          `json:"restaurantId"`
	UserID            string          `json:"-"`
	Username          string          `json:"username"`
	Title             string          `json:"title"`
	OverallRating     *float64        `json:"overallRating"`
	TasteRating       float64         `json:"tasteRating"`
	ServiceRating     float64         `json:"serviceRating"`
	EnvironmentRating float64         `json:"environmentRating"`
	ValueRating       float64         `json:"valueRating"`
	CostPerPerson     *int            `json:"costPerPerson"`
	Content           string          `json:"content"`
	ImageURLs         []string        `json:"imageUrls"`
	Metadata          json.RawMessage `json:"metadata"`
}

// ReviewSubmission is the tagged result of Submit.
type ReviewSubmission struct {
	Outcome SubmissionOutcome
	Review  *db.Review
	// Fields 列出缺失或无效的字段，仅在 SubmissionInvalid 时非空。
	Fields []string
}

// ReviewService 负责评论提交事务及查询。
type ReviewService struct {
	store    *repository.Store
	objects  storage.ObjectStore
	log      *zap.Logger
	sanitize *bluemonday.Policy
	now      func() time.Time
}

// NewReviewService creates a ReviewService instance.
func NewReviewService(store *repository.Store, objects storage.ObjectStore, log *zap.Logger) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		store:    store,
		objects:  objects,
		log:      log,
		sanitize: bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

// Submit 校验输入、检查每日上限，然后在一个事务中写入评论并更新餐厅评分汇总。
func (s *ReviewService) Submit(ctx context.Context, input ReviewInput) (*ReviewSubmission, error) {
	if fields := validateReviewInput(input); len(fields) > 0 {
		return &ReviewSubmission{Outcome: SubmissionInvalid, Fields: fields}, nil
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	submitted, err := s.store.Reviews().CountByUserSince(ctx, input.UserID, dayStart)
	if err != nil {
		return nil, errors.Wrap(err, "count today's reviews")
	}
	if submitted >= DailyReviewLimit {
		s.log.Info("daily review limit reached", zap.String("userId", input.UserID), zap.Int64("count", submitted))
		return &ReviewSubmission{Outcome: SubmissionLimitReached}, nil
	}

	review := &db.Review{
		RestaurantID:      strings.TrimSpace(input.RestaurantID),
		UserID:            input.UserID,
		Username:          strings.TrimSpace(input.Username),
		Title:             strings.TrimSpace(input.Title),
		OverallRating:     *input.OverallRating,
		TasteRating:       input.TasteRating,
		ServiceRating:     input.ServiceRating,
		EnvironmentRating: input.EnvironmentRating,
		ValueRating:       input.ValueRating,
		CostPerPerson:     *input.CostPerPerson,
		Content:           s.plainText(input.Content),
		ImageURLs:         input.ImageURLs,
		Status:            db.ReviewStatusPublished,
		CreatedAt:         now,
	}
	if len(input.Metadata) > 0 {
		review.Metadata = datatypes.JSON(input.Metadata)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		prior, err := tx.Reviews().CountByUserAndRestaurant(ctx, review.UserID, review.RestaurantID)
		if err != nil {
			return errors.Wrap(err, "count prior visits")
		}
		review.VisitCount = int(prior) + 1

		restaurant, err := tx.Restaurants().Get(ctx, review.RestaurantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRestaurantNotFound
			}
			return err
		}
		user, err := tx.Users().Get(ctx, review.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		count := restaurant.ReviewCount + 1
		sum := restaurant.TotalRatingSum + review.OverallRating
		if err := tx.Restaurants().UpdateAggregate(ctx, restaurant.ID, count, sum, roundTo2(sum/float64(count))); err != nil {
			return errors.Wrap(err, "update rating aggregate")
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return errors.Wrap(err, "create review")
		}

		user.PublishedReviews = append(user.PublishedReviews, review.ID)
		return errors.Wrap(tx.Users().Save(ctx, user), "append published review")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("review submitted",
		zap.String("reviewId", review.ID),
		zap.String("restaurantId", review.RestaurantID),
		zap.Int("visitCount", review.VisitCount),
	)
	return &ReviewSubmission{Outcome: SubmissionAccepted, Review: review}, nil
}

// Get fetches one review.
func (s *ReviewService) Get(ctx context.Context, id string) (*db.Review, error) {
	review, err := s.store.Reviews().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// ListByRestaurant returns a restaurant's newest published reviews.
func (s *ReviewService) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]db.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.Reviews().ListByRestaurant(ctx, restaurantID, limit)
}

// ListByUser 返回用户 publishedReviews 中仍存在的评论。
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]db.Review, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.store.Reviews().ListByIDs(ctx, user.PublishedReviews)
}

// UploadImage 将评论图片存放在用户自己的前缀下，返回公开地址。
func (s *ReviewService) UploadImage(ctx context.Context, userID string, body io.Reader) (string, error) {
	if s.objects == nil {
		return "", errors.New("object storage is not configured")
	}
	data, info, err := ReadImage(body)
	if err != nil {
		return "", err
	}
	key := s.store.ReviewObjectPrefix(userID) + uuid.NewString() + info.Extension
	url, err := s.objects.Put(ctx, key, info.ContentType, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "upload review image")
	}
	return url, nil
}

// plainText 去掉所有标签，但保留 & < > 等字符的原样，转义留给渲染端。
func (s *ReviewService) plainText(raw string) string {
	return html.UnescapeString(s.sanitize.Sanitize(strings.TrimSpace(raw)))
}

func validateReviewInput(input ReviewInput) []string {
	var fields []string
	if strings.TrimSpace(input.RestaurantID) == "" {
		fields = append(fields, "restaurantId")
	}
	if strings.TrimSpace(input.UserID) == "" {
		fields = append(fields, "userId")
	}
	if strings.TrimSpace(input.Title) == "" {
		fields = append(fields, "title")
	}
	if input.OverallRating == nil || *input.OverallRating <= 0 || *input.OverallRating > 5 {
		fields = append(fields, "overallRating")
	}
	if input.CostPerPerson == nil || *input.CostPerPerson < 0 {
		fields = append(fields, "costPerPerson")
	}
	subRatings := []struct {
		name  string
		value float64
	}{
		{"tasteRating", input.TasteRating},
		{"serviceRating", input.ServiceRating},
		{"environmentRating", input.EnvironmentRating},
		{"valueRating", input.ValueRating},
	}
	for _, rating := range subRatings {
		if rating.value < 0 || rating.value > 5 {
			fields = append(fields, rating.name)
		}
	}
	if len(input.Metadata) > 0 && !json.Valid(input.Metadata) {
		fields = append(fields, "metadata")
	}
	return fields
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
