package handlers

import (
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	Deps
}

func NewInteractionHandler(d Deps) *InteractionHandler {
	return &InteractionHandler{Deps: d}
}

// toggleRequest 客户端当前看到的状态；不传时以数据库为准
type toggleRequest struct {
	Liked      *bool `json:"liked"`
	Bookmarked *bool `json:"bookmarked"`
}

// ToggleLike POST /api/articles/:id/like
func (h *InteractionHandler) ToggleLike(c *gin.Context) {
	h.toggle(c, models.KindLike, "liked")
}

// ToggleBookmark POST /api/articles/:id/bookmark
func (h *InteractionHandler) ToggleBookmark(c *gin.Context) {
	h.toggle(c, models.KindBookmark, "bookmarked")
}

func (h *InteractionHandler) toggle(c *gin.Context, kind models.ToggleKind, stateKey string) {
	ctx := c.Request.Context()
	articleID := c.Param("id")
	who := middleware.CurrentIdentity(c)

	var req toggleRequest
	// 空 body 也合法
	_ = c.ShouldBindJSON(&req)
	current := req.Liked
	if kind == models.KindBookmark {
		current = req.Bookmarked
	}

	var state bool
	if current != nil {
		state = *current
	} else if who != nil {
		on, err := h.Engine.Resync(ctx, kind, articleID, who)
		if err != nil {
			abortJSON(c, err)
			return
		}
		state = on
	}

	res, err := h.Engine.Toggle(ctx, kind, articleID, who, state)
	if err != nil {
		body := errorBody(err)
		if engine.IsKind(err, engine.AlreadyToggled) {
			// 告诉客户端真实状态
			if on, rerr := h.Engine.Resync(ctx, kind, articleID, who); rerr == nil {
				body[stateKey] = on
			}
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(statusOf(engine.KindOf(err)), body)
		return
	}

	body := gin.H{stateKey: res.On, "reconciled": res.Reconciled}
	if res.Reconciled {
		body["count"] = res.Count
	}
	c.JSON(http.StatusOK, body)
}
