package repository

import (
	"context"
	"strings"
	"time"

	"github.com/dinelog/internal/db"
	"gorm.io/gorm"
)

// BlogRepository 访问 blogs 集合及其标签索引。
type BlogRepository struct {
	db    *gorm.DB
	appID string
}

// BlogCursor 由最后一篇文章的提交时间与 ID 组成，用于稳定分页。
type BlogCursor struct {
	SubmittedAt time.Time
	ID          string
}

// BlogListQuery filters published posts.
type BlogListQuery struct {
	Tag     string
	Keyword string
	After   *BlogCursor
	Limit   int
}

func (r *BlogRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.BlogPost{}).Where("blog_posts.app_id = ?", r.appID)
}

// Create inserts a post and its tag index rows in one transaction.
func (r *BlogRepository) Create(ctx context.Context, post *db.BlogPost) error {
	post.AppID = r.appID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return r.reindexTags(tx, post)
	})
}

// Save writes a post and rebuilds its tag index rows.
func (r *BlogRepository) Save(ctx context.Context, post *db.BlogPost) error {
	post.AppID = r.appID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		return r.reindexTags(tx, post)
	})
}

func (r *BlogRepository) reindexTags(tx *gorm.DB, post *db.BlogPost) error {
	if err := tx.Where("app_id = ? AND blog_post_id = ?", r.appID, post.ID).Delete(&db.BlogPostTag{}).Error; err != nil {
		return err
	}
	if len(post.Tags) == 0 {
		return nil
	}
	rows := make([]db.BlogPostTag, 0, len(post.Tags))
	for _, tag := range post.Tags {
		rows = append(rows, db.BlogPostTag{AppID: r.appID, BlogPostID: post.ID, Tag: tag})
	}
	return tx.Create(&rows).Error
}

// Get fetches a post by id.
func (r *BlogRepository) Get(ctx context.Context, id string) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := r.scoped(ctx).Where("blog_posts.id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// Delete removes a post and its tag index rows.
func (r *BlogRepository) Delete(ctx context.Context, id string) (bool, error) {
	var existed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("app_id = ? AND id = ?", r.appID, id).Delete(&db.BlogPost{})
		if result.Error != nil {
			return result.Error
		}
		existed = result.RowsAffected > 0
		return tx.Where("app_id = ? AND blog_post_id = ?", r.appID, id).Delete(&db.BlogPostTag{}).Error
	})
	return existed, err
}

// List returns posts of one status (all statuses when empty), newest first.
func (r *BlogRepository) List(ctx context.Context, status string, offset, limit int) ([]db.BlogPost, int64, error) {
	query := r.scoped(ctx)
	if status != "" {
		query = query.Where("blog_posts.status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []db.BlogPost
	if err := query.Order("blog_posts.created_at desc").Order("blog_posts.id desc").
		Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *BlogRepository) publishedFilter(ctx context.Context, q BlogListQuery) *gorm.DB {
	query := r.scoped(ctx).Where("blog_posts.status = ?", db.BlogStatusPublished)
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		sub := r.db.WithContext(ctx).Model(&db.BlogPostTag{}).
			Select("blog_post_id").
			Where("app_id = ? AND tag = ?", r.appID, tag)
		query = query.Where("blog_posts.id IN (?)", sub)
	}
	if keyword := strings.ToLower(strings.TrimSpace(q.Keyword)); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("(LOWER(blog_posts.title) LIKE ? OR LOWER(blog_posts.content) LIKE ?)", like, like)
	}
	return query
}

// ListPublished 按提交时间倒序返回已发布文章，After 指向上一页最后一篇。
func (r *BlogRepository) ListPublished(ctx context.Context, q BlogListQuery) ([]db.BlogPost, error) {
	query := r.publishedFilter(ctx, q)
	if q.After != nil {
		query = query.Where(
			"(blog_posts.submitted_at < ? OR (blog_posts.submitted_at = ? AND blog_posts.id < ?))",
			q.After.SubmittedAt, q.After.SubmittedAt, q.After.ID,
		)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	var posts []db.BlogPost
	if err := query.Order("blog_posts.submitted_at desc").Order("blog_posts.id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountPublished counts published posts matching the tag and keyword filters.
func (r *BlogRepository) CountPublished(ctx context.Context, q BlogListQuery) (int64, error) {
	var total int64
	err := r.publishedFilter(ctx, BlogListQuery{Tag: q.Tag, Keyword: q.Keyword}).Count(&total).Error
	return total, err
}

// PublishedTags 返回所有已发布文章使用过的标签，按字母序去重。
func (r *BlogRepository) PublishedTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).Model(&db.BlogPostTag{}).
		Joins("JOIN blog_posts ON blog_posts.id = blog_post_tags.blog_post_id").
		Where("blog_post_tags.app_id = ? AND blog_posts.status = ?", r.appID, db.BlogStatusPublished).
		Order("blog_post_tags.tag asc").
		Distinct().
		Pluck("blog_post_tags.tag", &tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
