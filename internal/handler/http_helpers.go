package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dinelog/internal/logging"
	"github.com/dinelog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondFault 记录日志并以 500 返回原始错误信息。
func (a *API) respondFault(c *gin.Context, err error, message string) {
	a.log.Error(message,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("requestId", c.GetString(logging.RequestIDKey)),
	)
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, err.Error())
}

// respondServiceError 将服务层的哨兵错误映射为 HTTP 状态码。
func (a *API) respondServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrRestaurantNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrBlogNotFound),
		errors.Is(err, service.ErrDraftNotFound),
		errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRestaurantInvalid),
		errors.Is(err, service.ErrBlogInvalid),
		errors.Is(err, service.ErrPromotionInvalid),
		errors.Is(err, service.ErrDraftInvalid),
		errors.Is(err, service.ErrProfileInvalid),
		errors.Is(err, service.ErrFavoritesMismatch),
		errors.Is(err, service.ErrImageUnsupported),
		errors.Is(err, service.ErrImageTooLarge):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBlogInvalidTransition):
		respondError(c, http.StatusConflict, err.Error())
	default:
		a.respondFault(c, err, message)
	}
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// queryList 同时支持重复参数与逗号分隔两种写法。
func queryList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

func optionalIntQuery(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.Errorf("invalid %s", key)
	}
	return &value, nil
}

func optionalFloatQuery(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Errorf("invalid %s", key)
	}
	return &value, nil
}

// openUpload 打开 multipart 表单中的 image 字段。
func openUpload(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image file is required")
		return nil, false
	}
	if header.Size > service.MaxImageBytes {
		respondError(c, http.StatusBadRequest, service.ErrImageTooLarge.Error())
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "cannot read uploaded file")
		return nil, false
	}
	return file, true
}
