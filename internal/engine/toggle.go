package engine

import (
	"context"
	"errors"

	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/models"

	"go.uber.org/zap"
)

// ToggleResult Reconciled 为 false 时 Count 没有意义，调用方保留原来的数字
type ToggleResult struct {
	On         bool  `json:"on"`
	Count      int64 `json:"count"`
	Reconciled bool  `json:"reconciled"`
}

// Toggle 根据调用方当前看到的状态翻转点赞或收藏。
// 只有网关变更成功之后才回读计数；失败时 On 保持 current。
func (e *Engine) Toggle(ctx context.Context, kind models.ToggleKind, articleID string, who *Identity, current bool) (ToggleResult, error) {
	const op = "engine.Toggle"
	res := ToggleResult{On: current}
	if who == nil {
		return res, newError(Unauthenticated, op, nil)
	}
	if !kind.Valid() {
		return res, newError(Invalid, op, nil)
	}

	if !current {
		err := e.call(ctx, func(ctx context.Context) error {
			return e.gw.CreateToggle(ctx, kind, articleID, who.ID)
		})
		switch {
		case err == nil:
		case errors.Is(err, gateway.ErrConflict):
			return res, newError(AlreadyToggled, op, err)
		case errors.Is(err, gateway.ErrNotFound):
			return res, newError(NotFound, op, err)
		default:
			return res, newError(GatewayError, op, err)
		}
	} else {
		err := e.call(ctx, func(ctx context.Context) error {
			return e.gw.DeleteToggle(ctx, kind, articleID, who.ID)
		})
		if err != nil {
			return res, newError(GatewayError, op, err)
		}
	}

	res.On = !current
	count, err := e.Refresh(ctx, articleID, kind.Counter())
	if err != nil {
		e.log.Warn("counter refresh after toggle failed",
			zap.String("article_id", articleID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	} else {
		res.Count = count
		res.Reconciled = true
	}

	e.afterToggle(ctx, kind, articleID, who, res)
	return res, nil
}

// Resync 重新读取 (article, user) 的开关状态，用于 AlreadyToggled 之后
func (e *Engine) Resync(ctx context.Context, kind models.ToggleKind, articleID string, who *Identity) (bool, error) {
	const op = "engine.Resync"
	if who == nil {
		return false, nil
	}
	var on bool
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		on, err = e.gw.ToggleExists(ctx, kind, articleID, who.ID)
		return err
	})
	if err != nil {
		return false, newError(GatewayError, op, err)
	}
	return on, nil
}

func (e *Engine) afterToggle(ctx context.Context, kind models.ToggleKind, articleID string, who *Identity, res ToggleResult) {
	var typ events.Type
	switch {
	case kind == models.KindLike && res.On:
		typ = events.ArticleLiked
	case kind == models.KindLike:
		typ = events.ArticleUnliked
	case res.On:
		typ = events.ArticleBookmarked
	default:
		typ = events.ArticleUnmarked
	}

	if kind == models.KindLike && res.Reconciled && e.opts.Ranker != nil {
		if err := e.opts.Ranker.SetLikes(ctx, articleID, res.Count); err != nil {
			e.log.Warn("update like ranking", zap.String("article_id", articleID), zap.Error(err))
		}
	}
	e.publish(ctx, events.Event{Type: typ, ArticleID: articleID, UserID: who.ID, Count: res.Count})
}
