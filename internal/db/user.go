package db

import (
	"time"
)

// User 定义了用户资料。ID 来自身份提供方。
type User struct {
	ID                  string    `gorm:"primaryKey;size:128" json:"id"`
	AppID               string    `gorm:"size:64;index;not null" json:"-"`
	Username            string    `json:"username"`
	Rank                string    `json:"rank"`
	FavoriteRestaurants []string  `gorm:"serializer:json" json:"favoriteRestaurants"`
	PublishedReviews    []string  `gorm:"serializer:json" json:"publishedReviews"`
	Email               string    `json:"email"`
	IsAdmin             bool      `json:"isAdmin"`
	LastLogin           time.Time `json:"lastLogin"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// PublicProfile 仅包含可公开的资料字段。
type PublicProfile struct {
	ID                  string   `json:"id"`
	Username            string   `json:"username"`
	Rank                string   `json:"rank"`
	FavoriteRestaurants []string `json:"favoriteRestaurants"`
	PublishedReviews    []string `json:"publishedReviews"`
}

// Public strips private fields.
func (u User) Public() PublicProfile {
	favorites := u.FavoriteRestaurants
	if favorites == nil {
		favorites = []string{}
	}
	reviews := u.PublishedReviews
	if reviews == nil {
		reviews = []string{}
	}
	return PublicProfile{
		ID:                  u.ID,
		Username:            u.Username,
		Rank:                u.Rank,
		FavoriteRestaurants: favorites,
		PublishedReviews:    reviews,
	}
}

// Credential 是本地身份提供方的账号，密码使用 bcrypt 哈希保存。
type Credential struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AppID        string `gorm:"size:64;uniqueIndex:idx_credential_username,priority:1;not null" json:"-"`
	Username     string `gorm:"size:128;uniqueIndex:idx_credential_username,priority:2;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	UserID       string `gorm:"size:128;not null" json:"userId"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"isAdmin"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
