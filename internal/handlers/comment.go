package handlers

import (
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/middleware"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	Deps
}

func NewCommentHandler(d Deps) *CommentHandler {
	return &CommentHandler{Deps: d}
}

// List GET /api/articles/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	list, err := h.Engine.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

// Create POST /api/articles/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.ShouldBind(&req); err != nil {
		abortJSON(c, &engine.Error{Kind: engine.Invalid, Op: "handlers.CreateComment", Err: err})
		return
	}

	res, err := h.Engine.PostComment(c.Request.Context(), c.Param("id"), middleware.CurrentIdentity(c), req.Content)
	if err != nil {
		abortJSON(c, err)
		return
	}
	body := gin.H{"comment": res.Comment, "reconciled": res.Reconciled}
	if res.Reconciled {
		body["comment_count"] = res.Count
	}
	c.JSON(http.StatusCreated, body)
}

// Delete DELETE /api/comments/:cid
func (h *CommentHandler) Delete(c *gin.Context) {
	res, err := h.Engine.DeleteComment(c.Request.Context(), c.Param("cid"), middleware.CurrentIdentity(c))
	if err != nil {
		abortJSON(c, err)
		return
	}
	body := gin.H{"deleted": res.CommentID, "reconciled": res.Reconciled}
	if res.Reconciled {
		body["comment_count"] = res.Count
	}
	c.JSON(http.StatusOK, body)
}
