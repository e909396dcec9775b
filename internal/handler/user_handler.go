package handler

import (
	"net/http"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/service"
	"github.com/gin-gonic/gin"
)

type favoriteOrderRequest struct {
	FavoriteRestaurants []string `json:"favoriteRestaurants" binding:"required"`
}

// CreateSession 在登录后调用，首次登录时创建用户资料
func (a *API) CreateSession(c *gin.Context) {
	user, err := a.users.EnsureOnSignIn(c.Request.Context(), currentClaims(c))
	if err != nil {
		a.respondFault(c, err, "sign-in bookkeeping failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// GetUserProfile 返回公开资料
func (a *API) GetUserProfile(c *gin.Context) {
	user, err := a.users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err, "get profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
}

// ListUserReviews 返回用户已发布的评论
func (a *API) ListUserReviews(c *gin.Context) {
	reviews, err := a.reviews.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err, "list user reviews failed")
		return
	}
	if reviews == nil {
		reviews = []db.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": reviews})
}

// GetMe 返回当前用户的完整资料
func (a *API) GetMe(c *gin.Context) {
	user, err := a.users.Profile(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		a.respondServiceError(c, err, "get profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateMe 修改当前用户资料
func (a *API) UpdateMe(c *gin.Context) {
	var input service.ProfileInput
	if !bindJSON(c, &input, "invalid profile payload") {
		return
	}
	user, err := a.users.UpdateProfile(c.Request.Context(), currentClaims(c).UserID, input)
	if err != nil {
		a.respondServiceError(c, err, "update profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ListFavorites 按收藏顺序返回餐厅
func (a *API) ListFavorites(c *gin.Context) {
	restaurants, err := a.users.Favorites(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		a.respondServiceError(c, err, "list favorites failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurants": restaurants, "displayNames": a.displayNames(c, restaurants)})
}

// ToggleFavorite 收藏或取消收藏
func (a *API) ToggleFavorite(c *gin.Context) {
	favorited, list, err := a.users.ToggleFavorite(c.Request.Context(), currentClaims(c).UserID, c.Param("restaurantId"))
	if err != nil {
		a.respondServiceError(c, err, "toggle favorite failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favorited": favorited, "favoriteRestaurants": list})
}

// ReorderFavorites 保存收藏顺序
func (a *API) ReorderFavorites(c *gin.Context) {
	var req favoriteOrderRequest
	if !bindJSON(c, &req, "favoriteRestaurants is required") {
		return
	}
	list, err := a.users.ReorderFavorites(c.Request.Context(), currentClaims(c).UserID, req.FavoriteRestaurants)
	if err != nil {
		a.respondServiceError(c, err, "reorder favorites failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favoriteRestaurants": list})
}

// ListDrafts 返回未过期的草稿
func (a *API) ListDrafts(c *gin.Context) {
	drafts, err := a.drafts.List(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		a.respondFault(c, err, "list drafts failed")
		return
	}
	if drafts == nil {
		drafts = []db.DraftReview{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "drafts": drafts})
}

// SaveDraft 创建或更新草稿
func (a *API) SaveDraft(c *gin.Context) {
	var input service.DraftInput
	if !bindJSON(c, &input, "invalid draft payload") {
		return
	}
	draft, err := a.drafts.Save(c.Request.Context(), currentClaims(c).UserID, input)
	if err != nil {
		a.respondServiceError(c, err, "save draft failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft})
}

// GetDraft 获取草稿
func (a *API) GetDraft(c *gin.Context) {
	draft, err := a.drafts.Get(c.Request.Context(), currentClaims(c).UserID, c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err, "get draft failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "draft": draft})
}

// DeleteDraft 删除草稿
func (a *API) DeleteDraft(c *gin.Context) {
	if err := a.drafts.Delete(c.Request.Context(), currentClaims(c).UserID, c.Param("id")); err != nil {
		a.respondFault(c, err, "delete draft failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
