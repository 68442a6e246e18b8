package engine

import (
	"context"
	"sort"
	"strings"

	"inkwell/internal/gateway"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"go.uber.org/zap"
)

const (
	PageSize    = 20
	SearchLimit = 20
	// 热门 tab 在最近的这么多篇文章里按热度排序
	hotWindow = 200
)

type Source string

const (
	Live     Source = "live"
	Fallback Source = "fallback"
)

// ArticleList Source 用来区分"真的没有结果"和"后端不可用，展示的是示例数据"
type ArticleList struct {
	Source   Source           `json:"source"`
	Articles []models.Article `json:"articles"`
}

func (l ArticleList) IsFallback() bool { return l.Source == Fallback }

type Tab string

const (
	TabLatest  Tab = "latest"
	TabPopular Tab = "popular"
	TabHot     Tab = "hot"
)

func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabPopular, TabHot:
		return Tab(s)
	}
	return TabLatest
}

type FeedOptions struct {
	Tab  Tab
	Page int
}

// Search 空查询直接返回空的 live 结果
func (e *Engine) Search(ctx context.Context, q string) (ArticleList, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return ArticleList{Source: Live, Articles: []models.Article{}}, nil
	}
	return e.degrade(ctx, "search", q, func(ctx context.Context) ([]models.Article, error) {
		return e.gw.SearchArticles(ctx, q, SearchLimit)
	})
}

func (e *Engine) TagFeed(ctx context.Context, tag string) (ArticleList, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ArticleList{Source: Live, Articles: []models.Article{}}, nil
	}
	return e.degrade(ctx, "tag", tag, func(ctx context.Context) ([]models.Article, error) {
		return e.gw.ArticlesByTag(ctx, tag, SearchLimit)
	})
}

func (e *Engine) Feed(ctx context.Context, opts FeedOptions) (ArticleList, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Page > utils.MaxPage {
		opts.Page = utils.MaxPage
	}
	offset := (opts.Page - 1) * PageSize
	return e.degrade(ctx, "feed:"+string(opts.Tab), "", func(ctx context.Context) ([]models.Article, error) {
		switch opts.Tab {
		case TabPopular:
			return e.gw.ListArticles(ctx, gateway.ArticleQuery{OrderBy: "view_count DESC", Offset: offset, Limit: PageSize})
		case TabHot:
			list, err := e.gw.ListArticles(ctx, gateway.ArticleQuery{Limit: hotWindow})
			if err != nil {
				return nil, err
			}
			return pageOf(sortByHotScore(list), offset, PageSize), nil
		default:
			return e.gw.ListArticles(ctx, gateway.ArticleQuery{Offset: offset, Limit: PageSize})
		}
	})
}

// degrade 网关出错时返回带 fallback 标记的示例数据，不向上返回错误
func (e *Engine) degrade(ctx context.Context, what, key string, fetch func(context.Context) ([]models.Article, error)) (ArticleList, error) {
	var list []models.Article
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		list, err = fetch(ctx)
		return err
	})
	if err != nil {
		e.log.Warn("serving fallback articles", zap.String("source", what), zap.String("key", key), zap.Error(err))
		return ArticleList{Source: Fallback, Articles: SampleArticles(key)}, nil
	}
	if len(list) == 0 && e.opts.FallbackOnEmpty {
		return ArticleList{Source: Fallback, Articles: SampleArticles(key)}, nil
	}
	if list == nil {
		list = []models.Article{}
	}
	return ArticleList{Source: Live, Articles: list}, nil
}

func sortByHotScore(list []models.Article) []models.Article {
	scores := make(map[string]float64, len(list))
	for _, a := range list {
		scores[a.ID] = utils.HotScore(a.CreatedAt, a.LikeCount, a.BookmarkCount, a.CommentCount, a.ViewCount)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return scores[list[i].ID] > scores[list[j].ID]
	})
	return list
}

func pageOf(list []models.Article, offset, limit int) []models.Article {
	if offset < 0 || offset >= len(list) {
		return []models.Article{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
