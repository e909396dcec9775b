package view

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/dinelog/internal/locale"
)

//go:embed templates/*.html
var templateFS embed.FS

// FuncMap 返回页面模板使用的辅助函数。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(n int) []int {
			pages := make([]int, 0, n)
			for i := 1; i <= n; i++ {
				pages = append(pages, i)
			}
			return pages
		},
		"join":       strings.Join,
		"formatDate": FormatDate,
		"tr":         locale.Pick,
	}
}

// FormatDate 按语言格式化日期，零值返回空字符串。
func FormatDate(t time.Time, language string) string {
	if t.IsZero() {
		return ""
	}
	if locale.NormalizeLanguage(language) == locale.LanguageEnglish {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("2006年1月2日")
}

// Load parses every embedded page template.
func Load() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}
