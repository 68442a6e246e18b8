package handlers

import (
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Deps
}

func NewUserHandler(d Deps) *UserHandler {
	return &UserHandler{Deps: d}
}

// publicProfile 公开主页只暴露这些字段
type publicProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
	DaysSince int    `json:"days_since_joined"`
}

func toPublic(u *models.User) publicProfile {
	return publicProfile{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		DaysSince: utils.GetDaysSinceJoined(u.CreatedAt),
	}
}

// Profile - 用户主页 /u/:id
func (h *UserHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.Accounts.Get(ctx, c.Param("id"))
	if err != nil {
		abortHTML(c, err)
		return
	}
	articles, err := h.Articles.ByAuthor(ctx, user.ID)
	if err != nil {
		abortHTML(c, err)
		return
	}
	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":    user.Username + " 的主页",
		"User":     toPublic(user),
		"Articles": articles,
	})
}

// PublicProfile GET /api/users/:id
func (h *UserHandler) PublicProfile(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.Accounts.Get(ctx, c.Param("id"))
	if err != nil {
		abortJSON(c, err)
		return
	}
	articles, err := h.Articles.ByAuthor(ctx, user.ID)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toPublic(user), "articles": articles})
}

// MyArticles GET /api/me/articles
func (h *UserHandler) MyArticles(c *gin.Context) {
	list, err := h.Articles.ByAuthor(c.Request.Context(), middleware.CurrentIdentity(c).ID)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": list})
}

// MyBookmarks GET /api/me/bookmarks
func (h *UserHandler) MyBookmarks(c *gin.Context) {
	list, err := h.Articles.Bookmarked(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": list})
}

// UpdateProfile PUT /api/me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in services.ProfileInput
	if err := c.ShouldBind(&in); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.UpdateProfile", Err: err})
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateNotifications PUT /api/me/settings/notifications
func (h *UserHandler) UpdateNotifications(c *gin.Context) {
	var in models.NotificationSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.UpdateNotifications", Err: err})
		return
	}
	user, err := h.Accounts.UpdateNotifications(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, user.NotificationSettings)
}

// UpdatePrivacy PUT /api/me/settings/privacy
func (h *UserHandler) UpdatePrivacy(c *gin.Context) {
	var in models.PrivacySettings
	if err := c.ShouldBindJSON(&in); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.UpdatePrivacy", Err: err})
		return
	}
	user, err := h.Accounts.UpdatePrivacy(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, user.PrivacySettings)
}

// ChangePassword PUT /api/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		Current string `json:"current_password" binding:"required"`
		New     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.ChangePassword", Err: err})
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), middleware.CurrentIdentity(c), req.Current, req.New); err != nil {
		abortJSON(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
