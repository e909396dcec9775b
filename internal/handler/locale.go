package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dinelog/internal/locale"
	"github.com/gin-gonic/gin"
)

const (
	localeContextKey     = "__request_locale"
	languageCookieName   = "dl_lang"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

// LocaleMiddleware resolves request language and sets headers for downstream caching.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := a.requestLocale(c)
		c.Header("Content-Language", pref.HTMLLang)
		c.Header("Vary", "Accept-Language, Cookie")
		c.Next()
	}
}

func (a *API) requestLocale(c *gin.Context) locale.Preference {
	if cached, exists := c.Get(localeContextKey); exists {
		if pref, ok := cached.(locale.Preference); ok {
			return pref
		}
	}
	language, persist := resolveLanguage(c)
	pref := locale.PreferenceForLanguage(language)
	if persist {
		persistLanguage(c, pref.Language)
	}
	c.Set(localeContextKey, pref)
	return pref
}

// resolveLanguage 依次检查 lang 参数、语言 Cookie 与 Accept-Language。
func resolveLanguage(c *gin.Context) (string, bool) {
	if override := locale.NormalizeLanguage(c.Query("lang")); override != "" {
		return override, true
	}
	if cookie := readLanguageCookie(c); cookie != "" {
		return cookie, false
	}
	return locale.Resolve("", c.GetHeader("Accept-Language")), false
}

func readLanguageCookie(c *gin.Context) string {
	value, err := c.Cookie(languageCookieName)
	if err != nil {
		return ""
	}
	return locale.NormalizeLanguage(value)
}

func persistLanguage(c *gin.Context, language string) {
	normalized := locale.NormalizeLanguage(language)
	if normalized == "" {
		return
	}
	secure := c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    normalized,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   languageCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}

func buildLanguageSwitch(c *gin.Context) map[string]string {
	path := "/"
	rawQuery := ""
	if c.Request != nil && c.Request.URL != nil {
		path = c.Request.URL.Path
		rawQuery = c.Request.URL.RawQuery
	}
	values, _ := url.ParseQuery(rawQuery)
	values.Set("lang", locale.LanguageChinese)
	zhURL := path + "?" + values.Encode()
	values.Set("lang", locale.LanguageEnglish)
	enURL := path + "?" + values.Encode()
	return map[string]string{
		"zh": zhURL,
		"en": enURL,
	}
}
