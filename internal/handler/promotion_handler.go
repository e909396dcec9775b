package handler

import (
	"net/http"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/service"
	"github.com/gin-gonic/gin"
)

// ListActivePromotions 返回正在进行的活动
func (a *API) ListActivePromotions(c *gin.Context) {
	promotions, err := a.promotions.ListActive(c.Request.Context())
	if err != nil {
		a.respondFault(c, err, "list promotions failed")
		return
	}
	if promotions == nil {
		promotions = []db.Promotion{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "promotions": promotions})
}

// AdminListPromotions 返回全部活动
func (a *API) AdminListPromotions(c *gin.Context) {
	promotions, err := a.promotions.ListAll(c.Request.Context())
	if err != nil {
		a.respondFault(c, err, "list promotions failed")
		return
	}
	if promotions == nil {
		promotions = []db.Promotion{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "promotions": promotions})
}

// AdminCreatePromotion 创建活动
func (a *API) AdminCreatePromotion(c *gin.Context) {
	var input service.PromotionInput
	if !bindJSON(c, &input, "invalid promotion payload") {
		return
	}
	promotion, err := a.promotions.Create(c.Request.Context(), input)
	if err != nil {
		a.respondServiceError(c, err, "create promotion failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "promotion": promotion})
}

// AdminUpdatePromotion 更新活动
func (a *API) AdminUpdatePromotion(c *gin.Context) {
	var input service.PromotionInput
	if !bindJSON(c, &input, "invalid promotion payload") {
		return
	}
	promotion, err := a.promotions.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		a.respondServiceError(c, err, "update promotion failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "promotion": promotion})
}

// AdminDeletePromotion 删除活动
func (a *API) AdminDeletePromotion(c *gin.Context) {
	if err := a.promotions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.respondFault(c, err, "delete promotion failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
