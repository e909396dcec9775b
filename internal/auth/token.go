package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing bearer token")
)

// Claims 是经身份提供方验证后的用户信息。Admin 对应自定义声明 admin。
type Claims struct {
	UserID string
	Email  string
	Name   string
	Admin  bool
}

// TokenVerifier validates bearer tokens against the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider 使用 HS256 签发与校验令牌。
type JWTProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTProvider creates a provider; ttl <= 0 falls back to 24h.
func NewJWTProvider(secret, issuer string, ttl time.Duration) (*JWTProvider, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTProvider{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for claims.
func (p *JWTProvider) Issue(claims Claims) (string, time.Time, error) {
	if claims.UserID == "" {
		return "", time.Time{}, errors.New("empty user id passed to Issue")
	}
	now := p.now()
	expiresAt := now.Add(p.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: claims.Email,
		Name:  claims.Name,
		Admin: claims.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a signed token.
func (p *JWTProvider) Verify(ctx context.Context, raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		options = append(options, jwt.WithIssuer(p.issuer))
	}

	var parsed tokenClaims
	token, err := jwt.ParseWithClaims(raw, &parsed, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, options...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if parsed.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID: parsed.Subject,
		Email:  parsed.Email,
		Name:   parsed.Name,
		Admin:  parsed.Admin,
	}, nil
}

// BearerToken 从 Authorization 头中取出令牌。
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	return parts[1], nil
}
