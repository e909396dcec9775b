package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid username or password")

// CredentialService 是本地身份提供方：校验账号密码并签发令牌。
type CredentialService struct {
	store  *repository.Store
	tokens *JWTProvider
}

// SignInResult carries an issued token.
type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Admin     bool      `json:"admin"`
}

func NewCredentialService(store *repository.Store, tokens *JWTProvider) *CredentialService {
	return &CredentialService{store: store, tokens: tokens}
}

// SignIn checks the bcrypt hash and issues a token.
func (s *CredentialService) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	credential, err := s.store.Credentials().FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	token, expiresAt, err := s.tokens.Issue(Claims{
		UserID: credential.UserID,
		Email:  credential.Email,
		Name:   credential.Username,
		Admin:  credential.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &SignInResult{Token: token, ExpiresAt: expiresAt, UserID: credential.UserID, Admin: credential.IsAdmin}, nil
}

// EnsureCredential 存在性检查：若用户名与密码均非空且账号不存在，则创建一个 bcrypt 哈希的账号。
func (s *CredentialService) EnsureCredential(ctx context.Context, username, password, email string, admin bool) (bool, error) {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return false, nil
	}

	if _, err := s.store.Credentials().FindByUsername(ctx, trimmedUser); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	return true, s.store.Credentials().Create(ctx, &db.Credential{
		Username:     trimmedUser,
		PasswordHash: string(hashed),
		UserID:       uuid.NewString(),
		Email:        strings.TrimSpace(email),
		IsAdmin:      admin,
	})
}
