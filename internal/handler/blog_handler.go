package handler

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const blogTrailSessionKey = "blog_trail"

// blogTrail 记录访客在当前筛选条件下每一页的起始游标，使页码链接无需携带 lastCursor。
type blogTrail struct {
	Filter  string         `json:"filter"`
	Cursors map[int]string `json:"cursors"`
}

func loadBlogTrail(session sessions.Session, filter string) blogTrail {
	trail := blogTrail{Filter: filter, Cursors: map[int]string{}}
	raw, ok := session.Get(blogTrailSessionKey).(string)
	if !ok || raw == "" {
		return trail
	}
	var stored blogTrail
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.Filter != filter || stored.Cursors == nil {
		return trail
	}
	return stored
}

func saveBlogTrail(session sessions.Session, trail blogTrail) error {
	encoded, err := json.Marshal(trail)
	if err != nil {
		return err
	}
	session.Set(blogTrailSessionKey, string(encoded))
	return session.Save()
}

// maxReachablePage 返回可以直接跳转的最大页码。
func (t blogTrail) maxReachablePage() int {
	page := 1
	for {
		if _, ok := t.Cursors[page+1]; !ok {
			return page
		}
		page++
	}
}

type blogReviewRequest struct {
	Decision service.BlogReviewDecision `json:"decision" binding:"required"`
	Reason   string                     `json:"reason"`
}

func blogQueryFromRequest(c *gin.Context) service.BlogQuery {
	return service.BlogQuery{
		Page:       parsePositiveInt(c.Query("page"), 1),
		PageSize:   parsePositiveInt(c.Query("pageSize"), 0),
		Tag:        strings.TrimSpace(c.Query("tag")),
		Keyword:    strings.TrimSpace(c.Query("keyword")),
		LastCursor: strings.TrimSpace(c.Query("lastCursor")),
	}
}

func blogPageJSON(page *service.BlogPage) gin.H {
	posts := page.Posts
	if posts == nil {
		posts = []db.BlogPost{}
	}
	tags := page.Tags
	if tags == nil {
		tags = []string{}
	}
	return gin.H{
		"success":    true,
		"posts":      posts,
		"page":       page.Page,
		"total":      page.Total,
		"totalPages": page.TotalPages,
		"hasMore":    page.HasMore,
		"nextCursor": page.NextCursor,
		"tags":       tags,
	}
}

// ListBlogs 以 JSON 返回已发布文章
func (a *API) ListBlogs(c *gin.Context) {
	page, err := a.blogs.ListPublished(c.Request.Context(), blogQueryFromRequest(c))
	if err != nil {
		a.respondFault(c, err, "list blogs failed")
		return
	}
	c.JSON(http.StatusOK, blogPageJSON(page))
}

// ShowBlogList 渲染博客列表页
func (a *API) ShowBlogList(c *gin.Context) {
	pref := a.requestLocale(c)
	query := blogQueryFromRequest(c)
	filterKey := query.Tag + "\x00" + query.Keyword

	session := sessions.Default(c)
	trail := loadBlogTrail(session, filterKey)
	if query.LastCursor == "" && query.Page > 1 {
		query.LastCursor = trail.Cursors[query.Page]
		if query.LastCursor == "" {
			query.Page = 1
		}
	}

	page, err := a.blogs.ListPublished(c.Request.Context(), query)
	if err != nil {
		a.log.Error("render blog list failed", zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	if page.Page > 1 && query.LastCursor != "" {
		trail.Cursors[page.Page] = query.LastCursor
	}
	if page.NextCursor != "" {
		trail.Cursors[page.Page+1] = page.NextCursor
	}
	if err := saveBlogTrail(session, trail); err != nil {
		a.log.Warn("save blog trail failed", zap.Error(err))
	}

	filters := url.Values{}
	if query.Tag != "" {
		filters.Set("tag", query.Tag)
	}
	if query.Keyword != "" {
		filters.Set("keyword", query.Keyword)
	}
	filterQuery := ""
	if encoded := filters.Encode(); encoded != "" {
		filterQuery = "&" + encoded
	}

	c.HTML(http.StatusOK, "blog_list.html", gin.H{
		"lang":         pref.Language,
		"htmlLang":     pref.HTMLLang,
		"langSwitch":   buildLanguageSwitch(c),
		"posts":        page.Posts,
		"tags":         page.Tags,
		"tag":          query.Tag,
		"keyword":      query.Keyword,
		"page":         page.Page,
		"total":        page.Total,
		"totalPages":   page.TotalPages,
		"maxReachable": trail.maxReachablePage(),
		"hasMore":      page.HasMore,
		"nextCursor":   page.NextCursor,
		"filterQuery":  template.URL(filterQuery),
	})
}

// ShowBlogPost 渲染博客详情页
func (a *API) ShowBlogPost(c *gin.Context) {
	pref := a.requestLocale(c)
	post, err := a.blogs.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBlogNotFound) {
			a.renderError(c, http.StatusNotFound, "post not found")
			return
		}
		a.log.Error("render blog post failed", zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "failed to load post")
		return
	}
	c.HTML(http.StatusOK, "blog_post.html", gin.H{
		"lang":       pref.Language,
		"htmlLang":   pref.HTMLLang,
		"langSwitch": buildLanguageSwitch(c),
		"post":       post,
		"content":    a.blogs.Render(post.Content),
	})
}

func (a *API) renderError(c *gin.Context, status int, message string) {
	pref := a.requestLocale(c)
	c.HTML(status, "error.html", gin.H{
		"lang":     pref.Language,
		"htmlLang": pref.HTMLLang,
		"status":   status,
		"message":  message,
	})
}

// AdminListBlogs 后台文章列表，可按状态过滤
func (a *API) AdminListBlogs(c *gin.Context) {
	result, err := a.blogs.List(c.Request.Context(), c.Query("status"),
		parsePositiveInt(c.Query("page"), 1), parsePositiveInt(c.Query("perPage"), 20))
	if err != nil {
		a.respondFault(c, err, "list blogs failed")
		return
	}
	posts := result.Posts
	if posts == nil {
		posts = []db.BlogPost{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"posts":      posts,
		"total":      result.Total,
		"totalPages": result.TotalPages,
		"page":       result.Page,
		"perPage":    result.PerPage,
	})
}

// AdminCreateBlog 以草稿状态提交文章
func (a *API) AdminCreateBlog(c *gin.Context) {
	var input service.BlogInput
	if !bindJSON(c, &input, "invalid blog payload") {
		return
	}
	claims := currentClaims(c)
	post, err := a.blogs.CreateDraft(c.Request.Context(), service.BlogAuthor{ID: claims.UserID, Name: claims.Name}, input)
	if err != nil {
		a.respondServiceError(c, err, "create blog failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "post": post})
}

// AdminUpdateBlog 修改文章
func (a *API) AdminUpdateBlog(c *gin.Context) {
	var input service.BlogInput
	if !bindJSON(c, &input, "invalid blog payload") {
		return
	}
	post, err := a.blogs.UpdateDraft(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		a.respondServiceError(c, err, "update blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

// AdminReviewBlog 审核草稿
func (a *API) AdminReviewBlog(c *gin.Context) {
	var req blogReviewRequest
	if !bindJSON(c, &req, "decision is required") {
		return
	}
	claims := currentClaims(c)
	post, err := a.blogs.Review(c.Request.Context(), c.Param("id"),
		service.BlogAuthor{ID: claims.UserID, Name: claims.Name}, req.Decision, req.Reason)
	if err != nil {
		a.respondServiceError(c, err, "review blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

// AdminDeleteBlog 删除文章
func (a *API) AdminDeleteBlog(c *gin.Context) {
	if err := a.blogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.respondFault(c, err, "delete blog failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminUploadBlogCover 上传封面图
func (a *API) AdminUploadBlogCover(c *gin.Context) {
	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	url, err := a.blogs.UploadCover(c.Request.Context(), file)
	if err != nil {
		a.respondServiceError(c, err, "upload blog cover failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
