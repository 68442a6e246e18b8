package engine

import (
	"context"

	"inkwell/internal/models"
)

// Accrue 浏览量 +1，单条 view_count = view_count + 1 语句，并发安全
func (e *Engine) Accrue(ctx context.Context, articleID string) error {
	return e.IncrementViews(ctx, articleID, 1)
}

// IncrementViews 一次写回 n 次浏览，后台合并队列走这里
func (e *Engine) IncrementViews(ctx context.Context, articleID string, n int64) error {
	if n <= 0 {
		return nil
	}
	err := e.call(ctx, func(ctx context.Context) error {
		return e.gw.IncrementViews(ctx, articleID, n)
	})
	if err != nil {
		return lookupError("engine.Accrue", err)
	}
	return nil
}

// Article 读取单篇文章
func (e *Engine) Article(ctx context.Context, articleID string) (*models.Article, error) {
	var a *models.Article
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		a, err = e.gw.GetArticle(ctx, articleID)
		return err
	})
	if err != nil {
		return nil, lookupError("engine.Article", err)
	}
	return a, nil
}
