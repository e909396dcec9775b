package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrDraftInvalid  = errors.New("draft input is invalid")
)

// DraftInput 是评论草稿的写入参数，Payload 为任意的部分评论 JSON。
type DraftInput struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurantId"`
	Payload      json.RawMessage `json:"payload"`
}

// DraftService 管理用户的评论草稿。
type DraftService struct {
	store *repository.Store
	now   func() time.Time
}

// NewDraftService creates a DraftService instance.
func NewDraftService(store *repository.Store) *DraftService {
	return &DraftService{store: store, now: time.Now}
}

// Save 创建或更新草稿。过期时间固定为创建后三天，更新不会延长。
func (s *DraftService) Save(ctx context.Context, userID string, input DraftInput) (*db.DraftReview, error) {
	payload := input.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if !json.Valid(payload) {
		return nil, errors.Wrap(ErrDraftInvalid, "payload must be valid JSON")
	}

	if id := strings.TrimSpace(input.ID); id != "" {
		draft, err := s.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		draft.RestaurantID = strings.TrimSpace(input.RestaurantID)
		draft.Payload = datatypes.JSON(payload)
		if err := s.store.Drafts().Save(ctx, draft); err != nil {
			return nil, err
		}
		return draft, nil
	}

	now := s.now().UTC()
	draft := &db.DraftReview{
		UserID:       userID,
		RestaurantID: strings.TrimSpace(input.RestaurantID),
		Payload:      datatypes.JSON(payload),
		ExpiresAt:    now.Add(db.DraftTTL),
		CreatedAt:    now,
	}
	if err := s.store.Drafts().Create(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// List returns the user's unexpired drafts.
func (s *DraftService) List(ctx context.Context, userID string) ([]db.DraftReview, error) {
	return s.store.Drafts().ListActive(ctx, userID, s.now().UTC())
}

// Get 返回草稿；过期草稿视为不存在。
func (s *DraftService) Get(ctx context.Context, userID, id string) (*db.DraftReview, error) {
	draft, err := s.store.Drafts().Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	if draft.Expired(s.now().UTC()) {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// Delete removes a draft; missing drafts are ignored.
func (s *DraftService) Delete(ctx context.Context, userID, id string) error {
	_, err := s.store.Drafts().Delete(ctx, userID, id)
	return err
}
