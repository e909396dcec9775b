package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound 表示当前租户下不存在目标文档。
var ErrNotFound = errors.New("document not found")

// Store 将所有集合访问限定在一个租户 (app id) 之下。
type Store struct {
	db    *gorm.DB
	appID string
}

// New creates a Store scoped to appID.
func New(gdb *gorm.DB, appID string) *Store {
	return &Store{db: gdb, appID: appID}
}

// AppID returns the tenant discriminator.
func (s *Store) AppID() string {
	return s.appID
}

// Transaction runs fn with a Store bound to one database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, appID: s.appID})
	})
}

func (s *Store) Restaurants() *RestaurantRepository {
	return &RestaurantRepository{db: s.db, appID: s.appID}
}

func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{db: s.db, appID: s.appID}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db, appID: s.appID}
}

func (s *Store) Credentials() *CredentialRepository {
	return &CredentialRepository{db: s.db, appID: s.appID}
}

func (s *Store) Blogs() *BlogRepository {
	return &BlogRepository{db: s.db, appID: s.appID}
}

func (s *Store) Drafts() *DraftRepository {
	return &DraftRepository{db: s.db, appID: s.appID}
}

func (s *Store) Promotions() *PromotionRepository {
	return &PromotionRepository{db: s.db, appID: s.appID}
}

// RestaurantObjectPrefix 返回餐厅图片在对象存储中的前缀。
func (s *Store) RestaurantObjectPrefix(restaurantID string) string {
	return fmt.Sprintf("%s/restaurants/%s/", s.appID, restaurantID)
}

// ReviewObjectPrefix 返回用户评论图片在对象存储中的前缀。
func (s *Store) ReviewObjectPrefix(userID string) string {
	return fmt.Sprintf("%s/reviews/%s/", s.appID, userID)
}

// BlogObjectPrefix 返回博客封面图在对象存储中的前缀。
func (s *Store) BlogObjectPrefix() string {
	return fmt.Sprintf("%s/blogs/", s.appID)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
