package repository

import (
	"context"

	"github.com/dinelog/internal/db"
	"gorm.io/gorm"
)

// UserRepository 访问 users 集合。
type UserRepository struct {
	db    *gorm.DB
	appID string
}

func (r *UserRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.User{}).Where("app_id = ?", r.appID)
}

// Get fetches a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := r.scoped(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// Create inserts a user under the current tenant.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	user.AppID = r.appID
	return r.db.WithContext(ctx).Create(user).Error
}

// Save writes every column of user.
func (r *UserRepository) Save(ctx context.Context, user *db.User) error {
	user.AppID = r.appID
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateFields applies a partial update; missing users yield ErrNotFound.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.scoped(ctx).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CredentialRepository 访问本地身份提供方的账号。
type CredentialRepository struct {
	db    *gorm.DB
	appID string
}

// FindByUsername fetches a credential by username.
func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*db.Credential, error) {
	var credential db.Credential
	if err := r.db.WithContext(ctx).
		Where("app_id = ? AND username = ?", r.appID, username).
		First(&credential).Error; err != nil {
		return nil, notFound(err)
	}
	return &credential, nil
}

// Create inserts a credential under the current tenant.
func (r *CredentialRepository) Create(ctx context.Context, credential *db.Credential) error {
	credential.AppID = r.appID
	return r.db.WithContext(ctx).Create(credential).Error
}
