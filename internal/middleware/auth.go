package middleware

import (
	"context"
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey = "user"
	IdentityKey  = "identity"
	SessionUser  = "user_id"
)

// UserLoader 按 id 读取用户
type UserLoader interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// LoadUser 从 session 取出 user_id 并把用户和身份放进上下文，找不到用户时按匿名处理
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(SessionUser).(string)

		if userID != "" {
			user, err := users.Get(c.Request.Context(), userID)
			if err == nil {
				c.Set(CheckUserKey, user)
				c.Set(IdentityKey, &engine.Identity{
					ID:          user.ID,
					Email:       user.Email,
					DisplayName: user.Username,
					AvatarURL:   user.AvatarURL,
				})
			} else if engine.IsKind(err, engine.NotFound) {
				// 用户已被删除，清掉失效的 session
				session.Delete(SessionUser)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentIdentity nil 表示匿名
func CurrentIdentity(c *gin.Context) *engine.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if who, ok := v.(*engine.Identity); ok {
			return who
		}
	}
	return nil
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   string(engine.Unauthenticated),
				"message": engine.Unauthenticated.Message(),
			})
			return
		}
		c.Next()
	}
}
