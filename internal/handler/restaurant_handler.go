package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/locale"
	"github.com/dinelog/internal/service"
	"github.com/gin-gonic/gin"
)

// restaurantFilterFromQuery 解析搜索接口的查询参数。
func restaurantFilterFromQuery(c *gin.Context) (service.RestaurantFilter, error) {
	filter := service.RestaurantFilter{
		Province:         c.Query("province"),
		City:             c.Query("city"),
		ReservationModes: queryList(c.QueryArray("reservationModes")),
		PaymentMethods:   queryList(c.QueryArray("paymentMethods")),
		Facilities:       queryList(c.QueryArray("facilities")),
		Categories:       queryList(c.QueryArray("category")),
		Search:           c.Query("search"),
		ReservationDate:  c.Query("reservationDate"),
		ReservationTime:  c.Query("reservationTime"),
		StartAfterDocID:  c.Query("startAfterDocId"),
		PageSize:         parsePositiveInt(c.Query("pageSize"), 0),
	}

	var err error
	if filter.MinSpending, err = optionalIntQuery(c, "minSpending"); err != nil {
		return filter, err
	}
	if filter.MaxSpending, err = optionalIntQuery(c, "maxSpending"); err != nil {
		return filter, err
	}
	if filter.MinRating, err = optionalFloatQuery(c, "minRating"); err != nil {
		return filter, err
	}

	// 非数字的 partySize 等同于不限制
	if partySize, err := strconv.Atoi(strings.TrimSpace(c.Query("partySize"))); err == nil {
		filter.PartySize = partySize
	}

	if values, ok := c.GetQueryArray("favorites"); ok {
		filter.FavoriteIDs = queryList(values)
	}
	return filter, nil
}

// displayNames 按请求语言给出每家餐厅的名称，键为餐厅 ID。
func (a *API) displayNames(c *gin.Context, restaurants []db.Restaurant) map[string]string {
	language := a.requestLocale(c).Language
	names := make(map[string]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = locale.DisplayName(r.Name, language)
	}
	return names
}

// SearchRestaurants 处理餐厅筛选与游标分页
func (a *API) SearchRestaurants(c *gin.Context) {
	filter, err := restaurantFilterFromQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.restaurants.Search(c.Request.Context(), filter)
	if err != nil {
		a.respondFault(c, err, "search restaurants failed")
		return
	}

	restaurants := page.Restaurants
	if restaurants == nil {
		restaurants = []db.Restaurant{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"restaurants":  restaurants,
		"displayNames": a.displayNames(c, restaurants),
		"hasMore":      page.HasMore,
		"lastDocId":    page.LastDocID,
	})
}

// GetRestaurant 获取单个餐厅
func (a *API) GetRestaurant(c *gin.Context) {
	restaurant, err := a.restaurants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondServiceError(c, err, "get restaurant failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"restaurant":  restaurant,
		"displayName": locale.DisplayName(restaurant.Name, a.requestLocale(c).Language),
	})
}

// ListRestaurantReviews 获取餐厅最新的评论
func (a *API) ListRestaurantReviews(c *gin.Context) {
	reviews, err := a.reviews.ListByRestaurant(c.Request.Context(), c.Param("id"), parsePositiveInt(c.Query("limit"), 20))
	if err != nil {
		a.respondFault(c, err, "list restaurant reviews failed")
		return
	}
	if reviews == nil {
		reviews = []db.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": reviews})
}

// AdminListRestaurants 后台餐厅列表
func (a *API) AdminListRestaurants(c *gin.Context) {
	result, err := a.restaurants.AdminList(
		c.Request.Context(),
		c.Query("search"),
		parsePositiveInt(c.Query("page"), 1),
		parsePositiveInt(c.Query("perPage"), 20),
	)
	if err != nil {
		a.respondFault(c, err, "list restaurants failed")
		return
	}
	restaurants := result.Restaurants
	if restaurants == nil {
		restaurants = []db.Restaurant{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"restaurants": restaurants,
		"total":       result.Total,
		"totalPages":  result.TotalPages,
		"page":        result.Page,
		"perPage":     result.PerPage,
	})
}

// AdminCreateRestaurant 创建餐厅
func (a *API) AdminCreateRestaurant(c *gin.Context) {
	var input service.RestaurantInput
	if !bindJSON(c, &input, "invalid restaurant payload") {
		return
	}
	restaurant, err := a.restaurants.Create(c.Request.Context(), input)
	if err != nil {
		a.respondServiceError(c, err, "create restaurant failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "restaurant": restaurant})
}

// AdminUpdateRestaurant 局部更新餐厅
func (a *API) AdminUpdateRestaurant(c *gin.Context) {
	var patch service.RestaurantPatch
	if !bindJSON(c, &patch, "invalid restaurant payload") {
		return
	}
	restaurant, err := a.restaurants.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		a.respondServiceError(c, err, "update restaurant failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": restaurant})
}

// AdminDeleteRestaurant 删除餐厅，重复删除同样返回成功
func (a *API) AdminDeleteRestaurant(c *gin.Context) {
	if err := a.restaurants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.respondFault(c, err, "delete restaurant failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminUploadRestaurantPhoto 上传餐厅图片
func (a *API) AdminUploadRestaurantPhoto(c *gin.Context) {
	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	restaurant, err := a.restaurants.AddPhoto(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		a.respondServiceError(c, err, "upload restaurant photo failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": restaurant})
}
