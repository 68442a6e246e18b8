package engine

import (
	"context"
	"errors"

	"inkwell/internal/gateway"
	"inkwell/internal/models"

	"go.uber.org/zap"
)

// Refresh 回读一个计数列的权威值。失败时调用方应保留原来显示的数字，
// 绝不能在本地旧值上 +1/-1。
func (e *Engine) Refresh(ctx context.Context, articleID string, field models.Counter) (int64, error) {
	const op = "engine.Refresh"
	if !field.Valid() {
		return 0, newError(Invalid, op, nil)
	}

	attempts := 1
	if e.opts.RetryRefresh {
		attempts = 2
	}

	var err error
	for i := 0; i < attempts; i++ {
		var v *int64
		err = e.call(ctx, func(ctx context.Context) error {
			var err error
			v, err = e.gw.ReadCounter(ctx, articleID, field)
			return err
		})
		if err == nil {
			if v == nil {
				return 0, nil
			}
			return *v, nil
		}
		if errors.Is(err, gateway.ErrNotFound) {
			return 0, newError(NotFound, op, err)
		}
		if ctx.Err() != nil {
			break
		}
		e.log.Debug("refresh counter failed",
			zap.String("article_id", articleID),
			zap.String("field", string(field)),
			zap.Int("attempt", i+1),
			zap.Error(err))
	}
	return 0, newError(GatewayError, op, err)
}
