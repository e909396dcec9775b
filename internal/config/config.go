package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string `mapstructure:"LISTEN_ADDR"`
	Port               string `mapstructure:"PORT"`
	AppID              string `mapstructure:"APP_ID"`
	DatabaseDriver     string `mapstructure:"DB_DRIVER"`
	DatabaseDSN        string `mapstructure:"DATABASE_DSN"`
	SessionSecret      string `mapstructure:"SESSION_SECRET"`
	GinMode            string `mapstructure:"GIN_MODE"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTIssuer          string `mapstructure:"JWT_ISSUER"`
	TokenTTLHours      int    `mapstructure:"TOKEN_TTL_HOURS"`
	StorageBackend     string `mapstructure:"STORAGE_BACKEND"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	UploadURLPath      string `mapstructure:"UPLOAD_URL_PATH"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3AccessKey        string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey        string `mapstructure:"S3_SECRET_KEY"`
	S3PublicBaseURL    string `mapstructure:"S3_PUBLIC_BASE_URL"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	LogDir             string `mapstructure:"LOG_DIR"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	Timezone           string `mapstructure:"TIMEZONE"`
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`
	SuperAdminUserName string `mapstructure:"SUPER_ADMIN_USER_NAME"`
	SuperAdminPassword string `mapstructure:"SUPER_ADMIN_PASSWORD"`
}

const (
	defaultSessionSecret = "dinelog-dev-secret"
	defaultJWTSecret     = "dinelog-dev-jwt-secret"
)

var defaults = map[string]any{
	"PORT":            "8080",
	"APP_ID":          "default-app",
	"DB_DRIVER":       "sqlite",
	"DATABASE_DSN":    "data/dinelog.db",
	"SESSION_SECRET":  defaultSessionSecret,
	"GIN_MODE":        "release",
	"JWT_SECRET":      defaultJWTSecret,
	"JWT_ISSUER":      "dinelog",
	"TOKEN_TTL_HOURS": 24,
	"STORAGE_BACKEND": "local",
	"UPLOAD_DIR":      "web/static/uploads",
	"UPLOAD_URL_PATH": "/static/uploads",
	"S3_REGION":       "auto",
	"REDIS_DB":        0,
	"LOG_DIR":         "logs",
	"LOG_LEVEL":       "info",
	"TIMEZONE":        "Asia/Taipei",
	"CORS_ORIGINS":    "*",
}

// Load 从 .env 文件与环境变量读取应用配置，并为缺失项提供安全的默认值。
// dir 为空时在当前目录查找 .env。
func Load(dir string) (AppConfig, error) {
	envFile := filepath.Join(strings.TrimSpace(dir), ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return AppConfig{}, errors.Wrapf(err, "load %s", envFile)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envKeys() {
		if err := v.BindEnv(key); err != nil {
			return AppConfig{}, errors.Wrapf(err, "bind %s", key)
		}
	}
	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, errors.Wrap(err, "decode config")
	}

	cfg.normalize()
	return cfg, nil
}

// envKeys lists every key so viper.Unmarshal sees variables that have no default.
func envKeys() []string {
	return []string{
		"LISTEN_ADDR", "PORT", "APP_ID", "DB_DRIVER", "DATABASE_DSN", "SESSION_SECRET",
		"GIN_MODE", "JWT_SECRET", "JWT_ISSUER", "TOKEN_TTL_HOURS", "STORAGE_BACKEND",
		"UPLOAD_DIR", "UPLOAD_URL_PATH", "S3_ENDPOINT", "S3_REGION", "S3_BUCKET",
		"S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_PUBLIC_BASE_URL", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "LOG_DIR", "LOG_LEVEL", "TIMEZONE", "CORS_ORIGINS",
		"SUPER_ADMIN_USER_NAME", "SUPER_ADMIN_PASSWORD",
	}
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.AppID = strings.TrimSpace(c.AppID)
	if c.AppID == "" {
		c.AppID = "default-app"
	}
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.UploadURLPath), "/")
	if c.TokenTTLHours <= 0 {
		c.TokenTTLHours = 24
	}
}

// TokenTTL 返回签发令牌的有效期。
func (c AppConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// Location resolves the configured timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, raw := range strings.Split(c.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// DefaultSecrets 列出仍在使用内置开发默认值的密钥配置项。
func (c AppConfig) DefaultSecrets() []string {
	var keys []string
	if c.SessionSecret == defaultSessionSecret {
		keys = append(keys, "SESSION_SECRET")
	}
	if c.JWTSecret == defaultJWTSecret {
		keys = append(keys, "JWT_SECRET")
	}
	return keys
}
