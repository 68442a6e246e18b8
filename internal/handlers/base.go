package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/ranking"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ViewScheduler 页面加载时登记一次浏览，不阻塞请求
type ViewScheduler interface {
	Schedule(articleID string) bool
}

// Deps 所有 handler 共享的依赖
type Deps struct {
	Engine   *engine.Engine
	Articles *services.ArticleService
	Accounts *services.AccountService
	// Notifications 站内通知收件箱
	Notifications *services.NotificationService
	Views         ViewScheduler
	Ranker        ranking.Ranker
	Cache         *utils.GlobalCache
	// SiteURL sitemap 和 RSS 中的绝对地址前缀
	SiteURL string
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	c.HTML(code, name, obj)
}

// RenderError 错误页
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": "出错了", "Error": message})
}

func statusOf(kind engine.Kind) int {
	switch kind {
	case engine.Unauthenticated:
		return http.StatusUnauthorized
	case engine.AlreadyToggled:
		return http.StatusConflict
	case engine.NotAuthorized:
		return http.StatusForbidden
	case engine.NotFound:
		return http.StatusNotFound
	case engine.Invalid:
		return http.StatusBadRequest
	case engine.GatewayError, engine.CommentPostFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// message Invalid 带具体原因时优先展示原因
func message(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		if e.Kind == engine.Invalid && e.Err != nil {
			return e.Err.Error()
		}
		if e.Kind == engine.Unauthenticated && errors.Is(err, services.ErrInvalidCredentials) {
			return services.ErrInvalidCredentials.Error()
		}
		return e.Kind.Message()
	}
	return "服务器内部错误"
}

// errorBody 统一的 JSON 错误格式
func errorBody(err error) gin.H {
	kind := engine.KindOf(err)
	if kind == "" {
		kind = "internal"
	}
	return gin.H{"error": string(kind), "message": message(err)}
}

// abortJSON 按错误类型映射状态码，5xx 记日志
func abortJSON(c *gin.Context, err error) {
	code := statusOf(engine.KindOf(err))
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, errorBody(err))
}

// abortHTML 页面请求的错误处理
func abortHTML(c *gin.Context, err error) {
	code := statusOf(engine.KindOf(err))
	if code >= http.StatusInternalServerError {
		logger.Error("page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	RenderError(c, code, message(err))
	c.Abort()
}
