package view

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/dinelog/internal/db"
)

func TestLoadParsesEveryPage(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	for _, name := range []string{"blog_list.html", "blog_post.html", "error.html"} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("template %s not defined", name)
		}
	}
}

func TestBlogListRendersPagination(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "blog_list.html", map[string]any{
		"lang":         "en",
		"htmlLang":     "en",
		"tag":          "",
		"keyword":      "",
		"tags":         []string{"ramen"},
		"posts":        []db.BlogPost{{ID: "p1", Title: "Hello", SubmittedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}},
		"total":        int64(3),
		"page":         1,
		"totalPages":   2,
		"maxReachable": 2,
		"hasMore":      true,
		"nextCursor":   "1_p1",
		"filterQuery":  template.URL("&tag=ramen"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"/blogs/p1", "Oct 1, 2026", "lastCursor=1_p1&amp;tag=ramen", "#ramen"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(at, "zh-TW"); got != "2026年3月9日" {
		t.Fatalf("unexpected chinese date %q", got)
	}
	if got := FormatDate(time.Time{}, "en"); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
}
