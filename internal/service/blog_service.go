package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

const defaultBlogPageSize = 9

var (
	ErrBlogNotFound          = errors.New("blog post not found")
	ErrBlogInvalid           = errors.New("blog post input is invalid")
	ErrBlogInvalidTransition = errors.New("blog post cannot be reviewed in its current status")
	ErrBlogCursorInvalid     = errors.New("blog cursor is malformed")
)

// BlogReviewDecision 是审核人对草稿的处理结果。
type BlogReviewDecision string

const (
	BlogDecisionPublish BlogReviewDecision = "publish"
	BlogDecisionReject  BlogReviewDecision = "reject"
)

// TagVocabularyCache 缓存已发布文章的标签全集。
type TagVocabularyCache interface {
	Get(ctx context.Context) ([]string, bool, error)
	Set(ctx context.Context, tags []string) error
	Invalidate(ctx context.Context) error
}

// BlogQuery describes the public listing request.
type BlogQuery struct {
	Page       int
	PageSize   int
	Tag        string
	Keyword    string
	LastCursor string
}

// BlogPage is one page of the public listing.
type BlogPage struct {
	Posts      []db.BlogPost
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
	HasMore    bool
	NextCursor string
	Tags       []string
}

// BlogInput represents fields accepted when authoring a post.
type BlogInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	CoverImageURL string   `json:"coverImageUrl"`
	Tags          []string `json:"tags"`
}

// BlogAuthor identifies who writes or reviews a post.
type BlogAuthor struct {
	ID   string
	Name string
}

// BlogListResult aggregates the admin list.
type BlogListResult struct {
	Posts      []db.BlogPost
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// BlogService 负责博客的发布流程与公开列表。
type BlogService struct {
	store    *repository.Store
	objects  storage.ObjectStore
	tags     TagVocabularyCache
	log      *zap.Logger
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	now      func() time.Time
}

// NewBlogService creates a BlogService; tags may be nil when no cache is configured.
func NewBlogService(store *repository.Store, objects storage.ObjectStore, tags TagVocabularyCache, log *zap.Logger) *BlogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlogService{
		store:   store,
		objects: objects,
		tags:    tags,
		log:     log,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
	}
}

// FormatBlogCursor encodes a post's sort key as <submittedAtUnixMilli>_<id>.
func FormatBlogCursor(post db.BlogPost) string {
	return fmt.Sprintf("%d_%s", post.SubmittedAt.UnixMilli(), post.ID)
}

// ParseBlogCursor decodes a cursor produced by FormatBlogCursor.
func ParseBlogCursor(raw string) (*repository.BlogCursor, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, ErrBlogCursorInvalid
	}
	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrBlogCursorInvalid
	}
	return &repository.BlogCursor{SubmittedAt: time.UnixMilli(millis).UTC(), ID: parts[1]}, nil
}

// ListPublished 返回一页已发布文章。分页锚定在上一页最后一篇的排序键上，总数与标签全集单独查询。
func (s *BlogService) ListPublished(ctx context.Context, q BlogQuery) (*BlogPage, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultBlogPageSize
	}
	page := &BlogPage{Page: normalizePage(q.Page), PageSize: pageSize}

	listQuery := repository.BlogListQuery{
		Tag:     strings.TrimSpace(q.Tag),
		Keyword: strings.TrimSpace(q.Keyword),
		Limit:   pageSize + 1,
	}
	// 没有可用游标时只能取第一页，页码也随之归一
	if raw := strings.TrimSpace(q.LastCursor); raw != "" {
		cursor, err := ParseBlogCursor(raw)
		if err != nil {
			s.log.Warn("ignoring malformed blog cursor", zap.String("lastCursor", raw))
			page.Page = 1
		} else {
			listQuery.After = cursor
		}
	} else {
		page.Page = 1
	}

	posts, err := s.store.Blogs().ListPublished(ctx, listQuery)
	if err != nil {
		return nil, errors.Wrap(err, "list published blogs")
	}
	page.HasMore = len(posts) > pageSize
	if page.HasMore {
		posts = posts[:pageSize]
	}
	page.Posts = posts
	if page.HasMore && len(posts) > 0 {
		page.NextCursor = FormatBlogCursor(posts[len(posts)-1])
	}

	total, err := s.store.Blogs().CountPublished(ctx, listQuery)
	if err != nil {
		return nil, errors.Wrap(err, "count published blogs")
	}
	page.Total = total
	page.TotalPages = calculateTotalPages(total, pageSize)

	tags, err := s.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	page.Tags = tags
	return page, nil
}

// Vocabulary 返回标签全集，优先读取缓存；缓存故障只记录日志。
func (s *BlogService) Vocabulary(ctx context.Context) ([]string, error) {
	if s.tags != nil {
		tags, ok, err := s.tags.Get(ctx)
		if err != nil {
			s.log.Warn("tag cache read failed", zap.Error(err))
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.store.Blogs().PublishedTags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load tag vocabulary")
	}
	if s.tags != nil {
		if err := s.tags.Set(ctx, tags); err != nil {
			s.log.Warn("tag cache write failed", zap.Error(err))
		}
	}
	return tags, nil
}

// Get fetches a post by id.
func (s *BlogService) Get(ctx context.Context, id string) (*db.BlogPost, error) {
	post, err := s.store.Blogs().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return post, nil
}

// GetPublished 只返回已发布的文章，供公开页面使用。
func (s *BlogService) GetPublished(ctx context.Context, id string) (*db.BlogPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != db.BlogStatusPublished {
		return nil, ErrBlogNotFound
	}
	return post, nil
}

// List returns posts for the admin console.
func (s *BlogService) List(ctx context.Context, status string, page, perPage int) (*BlogListResult, error) {
	result := &BlogListResult{Page: normalizePage(page), PerPage: normalizePerPage(perPage, 20)}
	posts, total, err := s.store.Blogs().List(ctx, strings.TrimSpace(status), (result.Page-1)*result.PerPage, result.PerPage)
	if err != nil {
		return nil, err
	}
	result.Posts = posts
	result.Total = total
	result.TotalPages = calculateTotalPages(total, result.PerPage)
	return result, nil
}

// CreateDraft 以草稿状态提交文章，提交时间精确到毫秒以便游标往返。
func (s *BlogService) CreateDraft(ctx context.Context, author BlogAuthor, input BlogInput) (*db.BlogPost, error) {
	post := &db.BlogPost{
		Status:      db.BlogStatusDraft,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		SubmittedAt: s.submissionTime(),
	}
	if err := applyBlogInput(post, input); err != nil {
		return nil, err
	}
	if err := s.store.Blogs().Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateDraft 修改文章内容。被驳回的文章修改后回到草稿并重新计提交时间。
func (s *BlogService) UpdateDraft(ctx context.Context, id string, input BlogInput) (*db.BlogPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyBlogInput(post, input); err != nil {
		return nil, err
	}
	if post.Status == db.BlogStatusRejected {
		post.Status = db.BlogStatusDraft
		post.RejectReason = ""
		post.ReviewedAt = nil
		post.ReviewedBy = ""
		post.SubmittedAt = s.submissionTime()
	}
	if err := s.store.Blogs().Save(ctx, post); err != nil {
		return nil, err
	}
	if post.Status == db.BlogStatusPublished {
		s.invalidateVocabulary(ctx)
	}
	return post, nil
}

// Review 将草稿转为 published 或 rejected，其余状态不可审核。
func (s *BlogService) Review(ctx context.Context, id string, reviewer BlogAuthor, decision BlogReviewDecision, reason string) (*db.BlogPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != db.BlogStatusDraft {
		return nil, ErrBlogInvalidTransition
	}

	reviewedAt := s.now().UTC()
	switch decision {
	case BlogDecisionPublish:
		post.Status = db.BlogStatusPublished
		post.RejectReason = ""
	case BlogDecisionReject:
		post.Status = db.BlogStatusRejected
		post.RejectReason = strings.TrimSpace(reason)
	default:
		return nil, errors.Wrapf(ErrBlogInvalid, "unknown decision %q", decision)
	}
	post.ReviewedAt = &reviewedAt
	post.ReviewedBy = reviewer.ID

	if err := s.store.Blogs().Save(ctx, post); err != nil {
		return nil, err
	}
	if post.Status == db.BlogStatusPublished {
		s.invalidateVocabulary(ctx)
	}
	s.log.Info("blog reviewed", zap.String("blogId", post.ID), zap.String("status", post.Status), zap.String("reviewer", reviewer.ID))
	return post, nil
}

// Delete removes a post; deleting a missing post is not an error.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	existed, err := s.store.Blogs().Delete(ctx, id)
	if err != nil {
		return err
	}
	if existed {
		s.invalidateVocabulary(ctx)
	}
	return nil
}

// UploadCover 校验并上传封面图，返回可公开访问的地址。
func (s *BlogService) UploadCover(ctx context.Context, body io.Reader) (string, error) {
	if s.objects == nil {
		return "", errors.New("object storage is not configured")
	}
	data, info, err := ReadImage(body)
	if err != nil {
		return "", err
	}
	key := s.store.BlogObjectPrefix() + uuid.NewString() + info.Extension
	url, err := s.objects.Put(ctx, key, info.ContentType, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "upload blog cover")
	}
	return url, nil
}

// Render converts markdown content into sanitised HTML.
func (s *BlogService) Render(content string) template.HTML {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(s.policy.SanitizeBytes(buf.Bytes()))
}

func (s *BlogService) submissionTime() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *BlogService) invalidateVocabulary(ctx context.Context) {
	if s.tags == nil {
		return
	}
	if err := s.tags.Invalidate(ctx); err != nil {
		s.log.Warn("tag cache invalidation failed", zap.Error(err))
	}
}

func applyBlogInput(post *db.BlogPost, input BlogInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return errors.Wrap(ErrBlogInvalid, "title is required")
	}
	post.Title = title
	post.Content = input.Content
	post.CoverImageURL = strings.TrimSpace(input.CoverImageURL)
	if post.CoverImageURL == "" {
		post.CoverImageURL = defaultCoverImage(post.Content)
	}
	post.Tags = normalizeTags(input.Tags)
	return nil
}

// normalizeTags 去除空白与重复标签，保持原有顺序。
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
