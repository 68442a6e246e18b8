package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/gateway"
	"inkwell/internal/models"
	"inkwell/internal/utils"
)

const (
	MaxTags         = 5
	DefaultCategory = "其他"
	// FeedCachePrefix 发布新文章后清掉的缓存前缀
	FeedCachePrefix = "feed:"
)

var Categories = []string{"前端开发", "后端开发", "移动开发", "数据库", "运维", "人工智能", "其他"}

type PublishInput struct {
	Title    string   `json:"title" form:"title"`
	Content  string   `json:"content" form:"content"`
	Category string   `json:"category" form:"category"`
	Tags     []string `json:"tags" form:"tags"`
}

// ArticleService 写文章以及个人主页、我的文章、我的收藏等列表
type ArticleService struct {
	gw      gateway.Gateway
	cache   *utils.GlobalCache
	timeout time.Duration
}

func NewArticleService(gw gateway.Gateway, cache *utils.GlobalCache, timeout time.Duration) *ArticleService {
	if timeout <= 0 {
		timeout = engine.DefaultTimeout
	}
	return &ArticleService{gw: gw, cache: cache, timeout: timeout}
}

func invalid(op, msg string) error {
	return &engine.Error{Kind: engine.Invalid, Op: op, Err: errors.New(msg)}
}

func isCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Publish 校验输入、生成摘要并保存作者快照
func (s *ArticleService) Publish(ctx context.Context, who *engine.Identity, in PublishInput) (*models.Article, error) {
	const op = "services.Publish"
	if who == nil {
		return nil, &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, invalid(op, "请输入文章标题")
	}
	if content == "" {
		return nil, invalid(op, "请输入文章内容")
	}
	tags := utils.NormalizeTags(in.Tags)
	if len(tags) == 0 {
		return nil, invalid(op, "请至少添加一个标签")
	}
	if len(tags) > MaxTags {
		return nil, invalid(op, fmt.Sprintf("最多添加 %d 个标签", MaxTags))
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	if !isCategory(category) {
		return nil, invalid(op, "未知的分类")
	}

	a := &models.Article{
		Title:        title,
		Content:      content,
		Summary:      utils.GenerateSummary(content),
		Category:     category,
		Tags:         tags,
		AuthorID:     who.ID,
		AuthorName:   who.Username(),
		AuthorAvatar: who.AvatarURL,
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.gw.CreateArticle(ctx, a); err != nil {
		return nil, &engine.Error{Kind: engine.GatewayError, Op: op, Err: err}
	}
	if s.cache != nil {
		s.cache.DeletePrefix(FeedCachePrefix)
	}
	return a, nil
}

// ByAuthor 某个作者的全部文章，最新的在前
func (s *ArticleService) ByAuthor(ctx context.Context, authorID string) ([]models.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	list, err := s.gw.ListArticles(ctx, gateway.ArticleQuery{AuthorID: authorID})
	if err != nil {
		return nil, &engine.Error{Kind: engine.GatewayError, Op: "services.ByAuthor", Err: err}
	}
	if list == nil {
		list = []models.Article{}
	}
	return list, nil
}

// Recent 全站最新文章，sitemap 和 RSS 使用
func (s *ArticleService) Recent(ctx context.Context, limit int) ([]models.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	list, err := s.gw.ListArticles(ctx, gateway.ArticleQuery{Limit: limit})
	if err != nil {
		return nil, &engine.Error{Kind: engine.GatewayError, Op: "services.Recent", Err: err}
	}
	return list, nil
}

// Bookmarked 当前用户收藏的文章，最近收藏的在前
func (s *ArticleService) Bookmarked(ctx context.Context, who *engine.Identity) ([]models.Article, error) {
	const op = "services.Bookmarked"
	if who == nil {
		return nil, &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	list, err := s.gw.BookmarkedArticles(ctx, who.ID)
	if err != nil {
		return nil, &engine.Error{Kind: engine.GatewayError, Op: op, Err: err}
	}
	if list == nil {
		list = []models.Article{}
	}
	return list, nil
}
