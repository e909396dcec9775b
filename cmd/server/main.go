package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dinelog/internal/auth"
	"github.com/dinelog/internal/cache"
	"github.com/dinelog/internal/config"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/handler"
	"github.com/dinelog/internal/logging"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/router"
	"github.com/dinelog/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	logger, err := logging.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.AppConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	store := repository.New(gdb, cfg.AppID)

	objects, staticDir, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	opts := handler.Options{
		Store:    store,
		Objects:  objects,
		Logger:   logger,
		Location: cfg.Location(),
	}

	// Redis 可选，未配置时标签全集直接查库
	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer client.Close()
		opts.TagCache = cache.NewTagVocabulary(client, cfg.AppID, cache.DefaultTagTTL)
		logger.Info("tag cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	if insecure := cfg.DefaultSecrets(); len(insecure) > 0 && gin.Mode() == gin.ReleaseMode {
		logger.Warn("built-in development secrets in use, tokens and sessions can be forged", zap.Strings("keys", insecure))
	}

	tokens, err := auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())
	if err != nil {
		return err
	}
	opts.Tokens = tokens
	opts.Credentials = auth.NewCredentialService(store, tokens)

	created, err := opts.Credentials.EnsureCredential(ctx, cfg.SuperAdminUserName, cfg.SuperAdminPassword, "", true)
	if err != nil {
		return errors.Wrap(err, "ensure super admin")
	}
	if created {
		logger.Info("super admin credential created", zap.String("username", cfg.SuperAdminUserName))
	}

	engine, err := router.SetupRouter(handler.NewAPI(opts), router.Options{
		SessionSecret:  cfg.SessionSecret,
		AllowedOrigins: cfg.AllowedOrigins(),
		StaticDir:      staticDir,
		StaticURLPath:  cfg.UploadURLPath,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.String("appId", cfg.AppID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openObjectStore 返回对象存储，以及本地存储时需要静态托管的目录。
func openObjectStore(ctx context.Context, cfg config.AppConfig) (storage.ObjectStore, string, error) {
	switch cfg.StorageBackend {
	case "s3":
		objects, err := storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", errors.Wrap(err, "open s3 storage")
		}
		return objects, "", nil
	case "", "local":
		dir, err := filepath.Abs(cfg.UploadDir)
		if err != nil {
			return nil, "", err
		}
		objects, err := storage.NewLocalStore(dir, cfg.UploadURLPath)
		if err != nil {
			return nil, "", errors.Wrap(err, "open local storage")
		}
		return objects, objects.Root(), nil
	default:
		return nil, "", errors.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
