package engine

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/models"

	"go.uber.org/zap"
)

type PostResult struct {
	Comment    models.Comment `json:"comment"`
	Count      int64          `json:"count"`
	Reconciled bool           `json:"reconciled"`
}

type DeleteResult struct {
	CommentID  string `json:"comment_id"`
	Count      int64  `json:"count"`
	Reconciled bool   `json:"reconciled"`
}

// PostComment 发表评论，返回服务端生成 id 和时间的持久化记录
func (e *Engine) PostComment(ctx context.Context, articleID string, who *Identity, content string) (PostResult, error) {
	const op = "engine.PostComment"
	if who == nil {
		return PostResult{}, newError(Unauthenticated, op, nil)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return PostResult{}, newError(Invalid, op, errors.New("empty comment"))
	}
	if e.opts.Filter != nil {
		content = e.opts.Filter.Replace(content)
	}

	c := models.Comment{
		ArticleID:  articleID,
		UserID:     who.ID,
		Username:   who.Username(),
		UserAvatar: who.AvatarURL,
		Content:    content,
	}
	err := e.call(ctx, func(ctx context.Context) error {
		return e.gw.CreateComment(ctx, &c)
	})
	if err != nil {
		return PostResult{}, newError(CommentPostFailed, op, err)
	}

	res := PostResult{Comment: c}
	if count, err := e.Refresh(ctx, articleID, models.CommentCount); err != nil {
		e.log.Warn("counter refresh after comment failed", zap.String("article_id", articleID), zap.Error(err))
	} else {
		res.Count = count
		res.Reconciled = true
	}

	e.publish(ctx, events.Event{Type: events.CommentPosted, ArticleID: articleID, UserID: who.ID, CommentID: c.ID, Count: res.Count})
	return res, nil
}

// ListComments 按 created_at 倒序，同一时刻按 id 倒序
func (e *Engine) ListComments(ctx context.Context, articleID string) ([]models.Comment, error) {
	var list []models.Comment
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		list, err = e.gw.ListComments(ctx, articleID)
		return err
	})
	if err != nil {
		return nil, newError(GatewayError, "engine.ListComments", err)
	}
	if list == nil {
		list = []models.Comment{}
	}
	return list, nil
}

// CanDelete 评论作者或文章作者可以删除评论
func CanDelete(who *Identity, c *models.Comment, a *models.Article) bool {
	if who == nil || c == nil {
		return false
	}
	if who.ID == c.UserID {
		return true
	}
	return a != nil && who.ID == a.AuthorID
}

// DeleteComment 先查评论，再查所属文章作者，两步都通过才发起删除。
// 网关的删除语句会再校验一次同样的条件。影响行数为 0 时重新查一次评论：
// 已经不存在按 NotFound，仍然存在才是无权。
func (e *Engine) DeleteComment(ctx context.Context, commentID string, who *Identity) (DeleteResult, error) {
	const op = "engine.DeleteComment"
	if who == nil {
		return DeleteResult{}, newError(Unauthenticated, op, nil)
	}

	var c *models.Comment
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		c, err = e.gw.GetComment(ctx, commentID)
		return err
	})
	if err != nil {
		return DeleteResult{}, lookupError(op, err)
	}

	var a *models.Article
	err = e.call(ctx, func(ctx context.Context) error {
		var err error
		a, err = e.gw.GetArticle(ctx, c.ArticleID)
		return err
	})
	if err != nil {
		return DeleteResult{}, lookupError(op, err)
	}

	if !CanDelete(who, c, a) {
		return DeleteResult{}, newError(NotAuthorized, op, nil)
	}

	var affected int64
	err = e.call(ctx, func(ctx context.Context) error {
		var err error
		affected, err = e.gw.DeleteComment(ctx, commentID, who.ID)
		return err
	})
	if err != nil {
		return DeleteResult{}, newError(GatewayError, op, err)
	}
	if affected == 0 {
		return DeleteResult{}, e.explainNoDelete(ctx, op, commentID)
	}

	res := DeleteResult{CommentID: commentID}
	if count, err := e.Refresh(ctx, c.ArticleID, models.CommentCount); err != nil {
		e.log.Warn("counter refresh after comment delete failed", zap.String("article_id", c.ArticleID), zap.Error(err))
	} else {
		res.Count = count
		res.Reconciled = true
	}

	e.publish(ctx, events.Event{Type: events.CommentDeleted, ArticleID: c.ArticleID, UserID: who.ID, CommentID: commentID, Count: res.Count})
	return res, nil
}

func lookupError(op string, err error) *Error {
	if errors.Is(err, gateway.ErrNotFound) {
		return newError(NotFound, op, err)
	}
	return newError(GatewayError, op, err)
}

func (e *Engine) explainNoDelete(ctx context.Context, op, commentID string) error {
	err := e.call(ctx, func(ctx context.Context) error {
		_, err := e.gw.GetComment(ctx, commentID)
		return err
	})
	if errors.Is(err, gateway.ErrNotFound) {
		return newError(NotFound, op, err)
	}
	return newError(NotAuthorized, op, errors.New("no rows deleted"))
}
