package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dinelog/internal/locale"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func localeContext(target string, header func(*http.Request)) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if header != nil {
		header(c.Request)
	}
	return c, w
}

func TestRequestLocalePrecedence(t *testing.T) {
	env := setupTestAPI(t)

	c, w := localeContext("/blogs?lang=en", func(r *http.Request) {
		r.Header.Set("Accept-Language", "zh-TW")
		r.AddCookie(&http.Cookie{Name: languageCookieName, Value: "zh-TW"})
	})
	assert.Equal(t, locale.LanguageEnglish, env.api.requestLocale(c).Language)
	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, "en", cookies[0].Value)
	}

	c, w = localeContext("/blogs", func(r *http.Request) {
		r.Header.Set("Accept-Language", "en-US,en;q=0.9")
		r.AddCookie(&http.Cookie{Name: languageCookieName, Value: "zh-TW"})
	})
	assert.Equal(t, locale.LanguageChinese, env.api.requestLocale(c).Language)
	assert.Empty(t, w.Result().Cookies())

	c, _ = localeContext("/blogs", func(r *http.Request) {
		r.Header.Set("Accept-Language", "en-US,en;q=0.9")
	})
	assert.Equal(t, locale.LanguageEnglish, env.api.requestLocale(c).Language)
}

func TestBuildLanguageSwitchKeepsQuery(t *testing.T) {
	c, _ := localeContext("/blogs?tag=ramen&page=2", nil)
	links := buildLanguageSwitch(c)

	en, err := url.Parse(links["en"])
	assert.NoError(t, err)
	assert.Equal(t, "/blogs", en.Path)
	assert.Equal(t, "ramen", en.Query().Get("tag"))
	assert.Equal(t, "en", en.Query().Get("lang"))

	zh, err := url.Parse(links["zh"])
	assert.NoError(t, err)
	assert.Equal(t, "zh-TW", zh.Query().Get("lang"))
}
