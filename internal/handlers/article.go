package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const feedCacheTTL = 30 * time.Second

type ArticleHandler struct {
	Deps
}

func NewArticleHandler(d Deps) *ArticleHandler {
	return &ArticleHandler{Deps: d}
}

// feed 只缓存 live 结果，fallback 不进缓存
func (h *ArticleHandler) feed(c *gin.Context) engine.ArticleList {
	tab := engine.ParseTab(c.Query("tab"))
	page := utils.ParsePage(c.Query("page"))
	key := fmt.Sprintf("%s%s:%d", services.FeedCachePrefix, tab, page)

	if h.Cache != nil {
		if cached, ok := h.Cache.Get(key).(engine.ArticleList); ok {
			return cached
		}
	}
	list, _ := h.Engine.Feed(c.Request.Context(), engine.FeedOptions{Tab: tab, Page: page})
	if h.Cache != nil && list.Source == engine.Live {
		h.Cache.Set(key, list, feedCacheTTL)
	}
	return list
}

// Index 首页 - latest / popular / hot
func (h *ArticleHandler) Index(c *gin.Context) {
	list := h.feed(c)
	page := utils.ParsePage(c.Query("page"))
	Render(c, http.StatusOK, "article/list.html", gin.H{
		"Title":      "首页",
		"Tab":        string(engine.ParseTab(c.Query("tab"))),
		"List":       list,
		"Page":       page,
		"HasMore":    len(list.Articles) == engine.PageSize,
		"Categories": services.Categories,
	})
}

// Detail 文章详情页，加载时登记一次浏览
func (h *ArticleHandler) Detail(c *gin.Context) {
	id := c.Param("id")
	v, err := h.Engine.Open(c.Request.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		abortHTML(c, err)
		return
	}
	h.Views.Schedule(id)

	deletable := make(map[string]bool, len(v.Comments))
	for i := range v.Comments {
		deletable[v.Comments[i].ID] = v.CanDelete(&v.Comments[i])
	}
	Render(c, http.StatusOK, "article/detail.html", gin.H{
		"Title":     v.Article.Title,
		"View":      v,
		"Deletable": deletable,
	})
}

// TagPage 标签页
func (h *ArticleHandler) TagPage(c *gin.Context) {
	tag := c.Param("tag")
	list, _ := h.Engine.TagFeed(c.Request.Context(), tag)
	Render(c, http.StatusOK, "article/list.html", gin.H{
		"Title": "#" + tag,
		"Tag":   tag,
		"List":  list,
	})
}

// SearchPage 搜索页，空结果和降级数据分开展示
func (h *ArticleHandler) SearchPage(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	list, _ := h.Engine.Search(c.Request.Context(), q)
	Render(c, http.StatusOK, "search.html", gin.H{
		"Title": "搜索",
		"Query": q,
		"List":  list,
	})
}

// List GET /api/articles?tab=&page=
func (h *ArticleHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed(c))
}

// Get GET /api/articles/:id，等同一次页面加载
func (h *ArticleHandler) Get(c *gin.Context) {
	id := c.Param("id")
	v, err := h.Engine.Open(c.Request.Context(), id, middleware.CurrentIdentity(c))
	if err != nil {
		abortJSON(c, err)
		return
	}
	h.Views.Schedule(id)
	c.JSON(http.StatusOK, gin.H{
		"article":    v.Article,
		"comments":   v.Comments,
		"liked":      v.Liked,
		"bookmarked": v.Bookmarked,
	})
}

// Create POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var in services.PublishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.Create", Err: err})
		return
	}
	a, err := h.Articles.Publish(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ByTag GET /api/tags/:tag
func (h *ArticleHandler) ByTag(c *gin.Context) {
	list, _ := h.Engine.TagFeed(c.Request.Context(), c.Param("tag"))
	c.JSON(http.StatusOK, list)
}

// Search GET /api/search?q=
func (h *ArticleHandler) Search(c *gin.Context) {
	list, _ := h.Engine.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, list)
}

// Categories GET /api/categories
func (h *ArticleHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": services.Categories, "default": services.DefaultCategory})
}

// TopLiked GET /api/rankings/likes?top=N
func (h *ArticleHandler) TopLiked(c *gin.Context) {
	top := utils.ParseLimit(c.Query("top"), 10, 100)
	entries, err := h.Ranker.Top(c.Request.Context(), top)
	if err != nil {
		abortJSON(c, &engine.Error{Kind: engine.GatewayError, Op: "handlers.TopLiked", Err: err})
		return
	}

	list := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		item := gin.H{"id": e.ArticleID, "score": e.Likes, "rank": e.Rank}
		// 标题查不到不影响排行
		if a, err := h.Engine.Article(c.Request.Context(), e.ArticleID); err == nil {
			item["title"] = a.Title
		}
		list = append(list, item)
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
