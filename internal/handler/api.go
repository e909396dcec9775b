package handler

import (
	"time"

	"github.com/dinelog/internal/auth"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/service"
	"github.com/dinelog/internal/storage"
	"go.uber.org/zap"
)

// Options 汇总构建 API 所需的外部依赖，由 cmd/server 注入。
type Options struct {
	Store       *repository.Store
	Objects     storage.ObjectStore
	Tokens      auth.TokenVerifier
	Credentials *auth.CredentialService
	// TagCache 可为 nil，此时标签全集每次都从数据库读取。
	TagCache service.TagVocabularyCache
	Logger   *zap.Logger
	Location *time.Location
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	restaurants *service.RestaurantService
	reviews     *service.ReviewService
	blogs       *service.BlogService
	users       *service.UserService
	drafts      *service.DraftService
	promotions  *service.PromotionService
	credentials *auth.CredentialService
	tokens      auth.TokenVerifier
	log         *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		restaurants: service.NewRestaurantService(opts.Store, opts.Objects, log.Named("restaurants"), opts.Location),
		reviews:     service.NewReviewService(opts.Store, opts.Objects, log.Named("reviews")),
		blogs:       service.NewBlogService(opts.Store, opts.Objects, opts.TagCache, log.Named("blogs")),
		users:       service.NewUserService(opts.Store, log.Named("users")),
		drafts:      service.NewDraftService(opts.Store),
		promotions:  service.NewPromotionService(opts.Store, opts.Location),
		credentials: opts.Credentials,
		tokens:      opts.Tokens,
		log:         log,
	}
}
