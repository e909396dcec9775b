package handler

import (
	"net/http"
	"testing"

	"github.com/dinelog/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signIn(t *testing.T, env *testEnv, claims *auth.Claims) {
	t.Helper()
	c, w := newJSONContext(t, http.MethodPost, "/api/auth/session", nil, claims)
	env.api.CreateSession(c)
	expectStatus(t, w, http.StatusOK)
}

func reviewPayload(restaurantID string) map[string]any {
	return map[string]any{
		"restaurantId":  restaurantID,
		"title":         "Great broth",
		"overallRating": 4.5,
		"tasteRating":   5,
		"costPerPerson": 350,
		"content":       "Would return.",
	}
}

func TestSubmitReviewOutcomes(t *testing.T) {
	env := setupTestAPI(t)
	restaurantID := createRestaurant(t, env, "Alpha Noodles", "Taipei", 300)
	reviewer := &auth.Claims{UserID: "user-1", Name: "Mei"}
	signIn(t, env, reviewer)

	c, w := newJSONContext(t, http.MethodPost, "/api/reviews", map[string]any{"restaurantId": restaurantID}, reviewer)
	env.api.SubmitReview(c)
	expectStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, []any{"title", "overallRating", "costPerPerson"}, decodeBody(t, w)["fields"])

	c, w = newJSONContext(t, http.MethodPost, "/api/reviews", reviewPayload(restaurantID), reviewer)
	env.api.SubmitReview(c)
	expectStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	reviewID, _ := body["reviewId"].(string)
	require.NotEmpty(t, reviewID)

	c, w = newJSONContext(t, http.MethodGet, "/api/reviews/"+reviewID, nil, nil)
	c.Params = gin.Params{{Key: "id", Value: reviewID}}
	env.api.GetReview(c)
	expectStatus(t, w, http.StatusOK)
	review := decodeBody(t, w)["review"].(map[string]any)
	assert.Equal(t, "Mei", review["username"])

	c, w = newJSONContext(t, http.MethodGet, "/api/restaurants/"+restaurantID, nil, nil)
	c.Params = gin.Params{{Key: "id", Value: restaurantID}}
	env.api.GetRestaurant(c)
	expectStatus(t, w, http.StatusOK)
	restaurant := decodeBody(t, w)["restaurant"].(map[string]any)
	assert.Equal(t, float64(1), restaurant["reviewCount"])
	assert.Equal(t, 4.5, restaurant["averageRating"])
}

func TestSubmitReviewDailyLimit(t *testing.T) {
	env := setupTestAPI(t)
	restaurantID := createRestaurant(t, env, "Alpha Noodles", "Taipei", 300)
	reviewer := &auth.Claims{UserID: "user-1", Name: "Mei"}
	signIn(t, env, reviewer)

	for i := 0; i < 10; i++ {
		c, w := newJSONContext(t, http.MethodPost, "/api/reviews", reviewPayload(restaurantID), reviewer)
		env.api.SubmitReview(c)
		expectStatus(t, w, http.StatusOK)
	}

	c, w := newJSONContext(t, http.MethodPost, "/api/reviews", reviewPayload(restaurantID), reviewer)
	env.api.SubmitReview(c)
	expectStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["isLimitReached"])
}

func TestSubmitReviewUnknownRestaurant(t *testing.T) {
	env := setupTestAPI(t)
	reviewer := &auth.Claims{UserID: "user-1", Name: "Mei"}
	signIn(t, env, reviewer)

	c, w := newJSONContext(t, http.MethodPost, "/api/reviews", reviewPayload("missing"), reviewer)
	env.api.SubmitReview(c)
	expectStatus(t, w, http.StatusInternalServerError)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestSubmitReviewSignsWithTokenName(t *testing.T) {
	env := setupTestAPI(t)
	restaurantID := createRestaurant(t, env, "Alpha Noodles", "Taipei", 300)

	cases := []struct {
		claims *auth.Claims
		want   string
	}{
		{claims: &auth.Claims{UserID: "user-1", Name: "Mei"}, want: "Mei"},
		{claims: &auth.Claims{UserID: "user-2"}, want: "Impostor"},
	}
	for _, tc := range cases {
		signIn(t, env, tc.claims)
		payload := reviewPayload(restaurantID)
		payload["username"] = "Impostor"

		c, w := newJSONContext(t, http.MethodPost, "/api/reviews", payload, tc.claims)
		env.api.SubmitReview(c)
		expectStatus(t, w, http.StatusOK)
		reviewID := decodeBody(t, w)["reviewId"].(string)

		c, w = newJSONContext(t, http.MethodGet, "/api/reviews/"+reviewID, nil, nil)
		c.Params = gin.Params{{Key: "id", Value: reviewID}}
		env.api.GetReview(c)
		expectStatus(t, w, http.StatusOK)
		assert.Equal(t, tc.want, decodeBody(t, w)["review"].(map[string]any)["username"], tc.claims.UserID)
	}
}
