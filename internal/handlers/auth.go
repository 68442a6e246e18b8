package handlers

import (
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Deps
}

func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{Deps: d}
}

type credentials struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func bindCredentials(c *gin.Context) (credentials, bool) {
	var req credentials
	if err := c.ShouldBind(&req); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.Auth", Err: err})
		return req, false
	}
	return req, true
}

func startSession(c *gin.Context, userID string) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUser, userID)
	return session.Save()
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortJSON(c, err)
		return
	}
	if err := startSession(c, user.ID); err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	user, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortJSON(c, err)
		return
	}
	if err := startSession(c, user.ID); err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Status(http.StatusNoContent)
}

// Me GET /api/auth/me，匿名时返回 null
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}
