package router

import (
	"net/http"
	"time"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "inkwell_session"

type Options struct {
	SessionSecret string
	// CORSOrigins 为空时不启用 CORS
	CORSOrigins  []string
	TemplatesDir string
	StaticDir    string
}

// New 组装 gin 引擎：中间件、模板、路由
func New(opts Options, d handlers.Deps, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(log), middleware.Recovery(log))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if opts.TemplatesDir != "" {
		r.HTMLRender = loadTemplates(opts.TemplatesDir)
	}
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	r.Use(middleware.LoadUser(d.Accounts))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d handlers.Deps) {
	articleHandler := handlers.NewArticleHandler(d)
	interactionHandler := handlers.NewInteractionHandler(d)
	commentHandler := handlers.NewCommentHandler(d)
	authHandler := handlers.NewAuthHandler(d)
	userHandler := handlers.NewUserHandler(d)
	seoHandler := handlers.NewSEOHandler(d)
	notificationHandler := handlers.NewNotificationHandler(d)

	// 公共页面 (Public Pages)
	r.GET("/", articleHandler.Index)             // 首页 - latest / popular / hot
	r.GET("/a/:id", articleHandler.Detail)       // 文章详情页
	r.GET("/tags/:tag", articleHandler.TagPage)  // 标签下的文章
	r.GET("/search", articleHandler.SearchPage)  // 搜索页面
	r.GET("/u/:id", userHandler.Profile)         // 用户主页
	r.GET("/robots.txt", seoHandler.RobotsTxt)   // robots
	r.GET("/sitemap.xml", seoHandler.SitemapXML) // sitemap
	r.GET("/feed.xml", seoHandler.RSSFeed)       // RSS
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	{
		api.GET("/articles", articleHandler.List)                             // 文章流
		api.POST("/articles", articleHandler.Create)                          // 发布文章
		api.GET("/articles/:id", articleHandler.Get)                          // 文章详情 + 互动状态
		api.POST("/articles/:id/like", interactionHandler.ToggleLike)         // 点赞/取消点赞
		api.POST("/articles/:id/bookmark", interactionHandler.ToggleBookmark) // 收藏/取消收藏
		api.GET("/articles/:id/comments", commentHandler.List)                // 评论列表
		api.POST("/articles/:id/comments", commentHandler.Create)             // 发表评论
		api.DELETE("/comments/:cid", commentHandler.Delete)                   // 删除评论

		api.GET("/tags/:tag", articleHandler.ByTag)         // 标签
		api.GET("/search", articleHandler.Search)           // 搜索
		api.GET("/categories", articleHandler.Categories)   // 分类列表
		api.GET("/rankings/likes", articleHandler.TopLiked) // 点赞排行榜
		api.GET("/users/:id", userHandler.PublicProfile)    // 公开主页

		api.POST("/auth/register", authHandler.Register) // 注册
		api.POST("/auth/login", authHandler.Login)       // 登录
		api.POST("/auth/logout", authHandler.Logout)     // 退出
		api.GET("/auth/me", authHandler.Me)              // 当前用户
	}

	// 受保护路由 (Protected Routes)
	me := api.Group("/me")
	me.Use(middleware.AuthRequired())
	{
		me.GET("/articles", userHandler.MyArticles)                        // 我的文章
		me.GET("/bookmarks", userHandler.MyBookmarks)                      // 我的收藏
		me.PUT("/profile", userHandler.UpdateProfile)                      // 修改资料
		me.PUT("/settings/notifications", userHandler.UpdateNotifications) // 通知设置
		me.PUT("/settings/privacy", userHandler.UpdatePrivacy)             // 隐私设置
		me.PUT("/password", userHandler.ChangePassword)                    // 修改密码

		me.GET("/notifications", notificationHandler.List)              // 我的通知
		me.POST("/notifications/read-all", notificationHandler.ReadAll) // 全部标记为已读
		me.POST("/notifications/:id/read", notificationHandler.Read)    // 标记单条为已读
		me.DELETE("/notifications/:id", notificationHandler.Delete)     // 删除单条通知
	}
}
