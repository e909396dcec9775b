package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dinelog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceErrorStatus(t *testing.T) {
	env := setupTestAPI(t)

	tests := []struct {
		err    error
		status int
	}{
		{err: service.ErrRestaurantNotFound, status: http.StatusNotFound},
		{err: errors.Wrap(service.ErrDraftNotFound, "load"), status: http.StatusNotFound},
		{err: errors.Wrap(service.ErrBlogInvalid, "title is required"), status: http.StatusBadRequest},
		{err: service.ErrFavoritesMismatch, status: http.StatusBadRequest},
		{err: service.ErrImageUnsupported, status: http.StatusBadRequest},
		{err: service.ErrBlogInvalidTransition, status: http.StatusConflict},
		{err: errors.New("disk on fire"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			c, w := newJSONContext(t, http.MethodGet, "/", nil, nil)
			env.api.respondServiceError(c, tt.err, "operation failed")
			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestQueryList(t *testing.T) {
	assert.Equal(t, []string{"cash", "card", "line-pay"}, queryList([]string{"cash, card", "", "line-pay"}))
	assert.Empty(t, queryList(nil))
}

func TestOptionalNumericQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?minSpending=300&minRating=abc", nil)

	spending, err := optionalIntQuery(c, "minSpending")
	assert.NoError(t, err)
	if assert.NotNil(t, spending) {
		assert.Equal(t, 300, *spending)
	}

	missing, err := optionalIntQuery(c, "maxSpending")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = optionalFloatQuery(c, "minRating")
	assert.EqualError(t, err, "invalid minRating")
}
