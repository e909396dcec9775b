package handler

import (
	"net/http"
	"strings"

	"github.com/dinelog/internal/service"
	"github.com/gin-gonic/gin"
)

// SubmitReview 提交评论。达到每日上限属于正常结果，返回 200 与 isLimitReached。
func (a *API) SubmitReview(c *gin.Context) {
	var input service.ReviewInput
	if !bindJSON(c, &input, "invalid review payload") {
		return
	}
	claims := currentClaims(c)
	input.UserID = claims.UserID
	// 署名以令牌为准，令牌没有名字时才用请求里的
	if name := strings.TrimSpace(claims.Name); name != "" {
		input.Username = name
	}

	result, err := a.reviews.Submit(c.Request.Context(), input)
	if err != nil {
		// 事务内找不到餐厅或用户同样按服务端故障处理
		a.respondFault(c, err, "submit review failed")
		return
	}

	switch result.Outcome {
	case service.SubmissionInvalid:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "missing or invalid fields",
			"fields":  result.Fields,
		})
	case service.SubmissionLimitReached:
		c.JSON(http.StatusOK, gin.H{"success": false, "isLimitReached": true})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "reviewId": result.Review.ID})
	}
}

// GetReview 获取单条评论
func (a *API) GetReview(c *gin.Context) {
	review, err := a.reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err, "get review failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// UploadReviewImage 上传评论图片
func (a *API) UploadReviewImage(c *gin.Context) {
	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	url, err := a.reviews.UploadImage(c.Request.Context(), currentClaims(c).UserID, file)
	if err != nil {
		a.respondServiceError(c, err, "upload review image failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
