package service

import (
	"context"
	"strings"
	"time"

	"github.com/dinelog/internal/auth"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// lastLoginTouchInterval 控制 lastLogin 的写入频率。
const lastLoginTouchInterval = 24 * time.Hour

const defaultUserRank = "newcomer"

var (
	ErrFavoritesMismatch = errors.New("favorite order must contain exactly the current favorites")
	ErrProfileInvalid    = errors.New("profile input is invalid")
)

// UserService 负责用户资料与收藏。
type UserService struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
}

// ProfileInput holds editable profile fields.
type ProfileInput struct {
	Username *string `json:"username"`
}

// NewUserService creates a UserService instance.
func NewUserService(store *repository.Store, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{store: store, log: log, now: time.Now}
}

// EnsureOnSignIn 首次登录时创建用户，之后仅在上次记录超过 24 小时时更新 lastLogin。
func (s *UserService) EnsureOnSignIn(ctx context.Context, claims *auth.Claims) (*db.User, error) {
	if claims == nil || strings.TrimSpace(claims.UserID) == "" {
		return nil, errors.New("claims without user id")
	}
	now := s.now().UTC()

	user, err := s.store.Users().Get(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		user = &db.User{
			ID:                  claims.UserID,
			Username:            displayNameFromClaims(claims),
			Rank:                defaultUserRank,
			Email:               claims.Email,
			IsAdmin:             claims.Admin,
			FavoriteRestaurants: []string{},
			PublishedReviews:    []string{},
			LastLogin:           now,
		}
		if err := s.store.Users().Create(ctx, user); err != nil {
			return nil, errors.Wrap(err, "create user")
		}
		s.log.Info("user created on first sign-in", zap.String("userId", user.ID))
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	if now.Sub(user.LastLogin) > lastLoginTouchInterval {
		if err := s.store.Users().UpdateFields(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
			return nil, errors.Wrap(err, "touch last login")
		}
		user.LastLogin = now
	}
	return user, nil
}

// Profile fetches a user by id.
func (s *UserService) Profile(ctx context.Context, id string) (*db.User, error) {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*db.User, error) {
	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" || len([]rune(username)) > 40 {
			return nil, errors.Wrap(ErrProfileInvalid, "username must be 1-40 characters")
		}
		user.Username = username
	}
	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleFavorite 收藏或取消收藏餐厅，返回操作后的状态与列表。
func (s *UserService) ToggleFavorite(ctx context.Context, userID, restaurantID string) (bool, []string, error) {
	var (
		favorited bool
		list      []string
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users().Get(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		index := -1
		for i, id := range user.FavoriteRestaurants {
			if id == restaurantID {
				index = i
				break
			}
		}
		if index >= 0 {
			user.FavoriteRestaurants = append(user.FavoriteRestaurants[:index:index], user.FavoriteRestaurants[index+1:]...)
		} else {
			if _, err := tx.Restaurants().Get(ctx, restaurantID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrRestaurantNotFound
				}
				return err
			}
			user.FavoriteRestaurants = append(user.FavoriteRestaurants, restaurantID)
			favorited = true
		}
		list = user.FavoriteRestaurants
		return tx.Users().Save(ctx, user)
	})
	if err != nil {
		return false, nil, err
	}
	if list == nil {
		list = []string{}
	}
	return favorited, list, nil
}

// ReorderFavorites 保存新的收藏顺序，ordered 必须是当前收藏的一个排列。
func (s *UserService) ReorderFavorites(ctx context.Context, userID string, ordered []string) ([]string, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isPermutation(user.FavoriteRestaurants, ordered) {
		return nil, ErrFavoritesMismatch
	}
	user.FavoriteRestaurants = append([]string{}, ordered...)
	if err := s.store.Users().Save(ctx, user); err != nil {
		return nil, err
	}
	return user.FavoriteRestaurants, nil
}

// Favorites 按用户保存的顺序返回收藏的餐厅，已删除的餐厅被跳过。
func (s *UserService) Favorites(ctx context.Context, userID string) ([]db.Restaurant, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	found, err := s.store.Restaurants().FindByIDs(ctx, user.FavoriteRestaurants)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]db.Restaurant, len(found))
	for _, restaurant := range found {
		byID[restaurant.ID] = restaurant
	}
	ordered := make([]db.Restaurant, 0, len(found))
	for _, id := range user.FavoriteRestaurants {
		if restaurant, ok := byID[id]; ok {
			ordered = append(ordered, restaurant)
		}
	}
	return ordered, nil
}

func displayNameFromClaims(claims *auth.Claims) string {
	if name := strings.TrimSpace(claims.Name); name != "" {
		return name
	}
	if at := strings.Index(claims.Email, "@"); at > 0 {
		return claims.Email[:at]
	}
	return "user-" + shortID(claims.UserID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isPermutation(current, ordered []string) bool {
	if len(current) != len(ordered) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range ordered {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}
