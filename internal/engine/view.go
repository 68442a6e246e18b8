package engine

import (
	"context"

	"inkwell/internal/models"

	"go.uber.org/zap"
)

// View 一次文章页浏览的互动状态。每次导航都会整体重置，
// 只有网关变更成功后才修改快照。
type View struct {
	e *Engine

	ArticleID  string
	Article    *models.Article
	Comments   []models.Comment
	Liked      bool
	Bookmarked bool
	User       *Identity
	Draft      string
}

// Open 为一篇文章创建全新的 View
func (e *Engine) Open(ctx context.Context, articleID string, who *Identity) (*View, error) {
	v := &View{e: e, User: who}
	if err := v.Navigate(ctx, articleID); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) reset(articleID string) {
	v.ArticleID = articleID
	v.Article = nil
	v.Comments = []models.Comment{}
	v.Liked = false
	v.Bookmarked = false
	v.Draft = ""
}

// Navigate 切换到另一篇文章，先清空上一篇的全部状态再加载
func (v *View) Navigate(ctx context.Context, articleID string) error {
	v.reset(articleID)

	a, err := v.e.Article(ctx, articleID)
	if err != nil {
		return err
	}
	v.Article = a

	if comments, err := v.e.ListComments(ctx, articleID); err != nil {
		v.e.log.Warn("load comments", zap.String("article_id", articleID), zap.Error(err))
	} else {
		v.Comments = comments
	}

	if v.User == nil {
		return nil
	}
	if on, err := v.e.Resync(ctx, models.KindLike, articleID, v.User); err != nil {
		v.e.log.Warn("load like state", zap.String("article_id", articleID), zap.Error(err))
	} else {
		v.Liked = on
	}
	if on, err := v.e.Resync(ctx, models.KindBookmark, articleID, v.User); err != nil {
		v.e.log.Warn("load bookmark state", zap.String("article_id", articleID), zap.Error(err))
	} else {
		v.Bookmarked = on
	}
	return nil
}

func (v *View) ToggleLike(ctx context.Context) (ToggleResult, error) {
	return v.toggle(ctx, models.KindLike, &v.Liked)
}

func (v *View) ToggleBookmark(ctx context.Context) (ToggleResult, error) {
	return v.toggle(ctx, models.KindBookmark, &v.Bookmarked)
}

func (v *View) toggle(ctx context.Context, kind models.ToggleKind, state *bool) (ToggleResult, error) {
	articleID := v.ArticleID
	res, err := v.e.Toggle(ctx, kind, articleID, v.User, *state)
	if err != nil {
		if IsKind(err, AlreadyToggled) {
			// 以数据库为准重新同步
			if on, rerr := v.e.Resync(ctx, kind, articleID, v.User); rerr == nil && v.ArticleID == articleID {
				*state = on
			}
		}
		return res, err
	}
	// 请求期间已经导航到别的文章，结果作废
	if v.ArticleID != articleID {
		return res, nil
	}
	*state = res.On
	if res.Reconciled && v.Article != nil {
		v.Article.SetCounter(kind.Counter(), res.Count)
	}
	return res, nil
}

// Post 发表 Draft，成功后插到列表最前并清空草稿；失败时草稿保留
func (v *View) Post(ctx context.Context) (PostResult, error) {
	articleID := v.ArticleID
	res, err := v.e.PostComment(ctx, articleID, v.User, v.Draft)
	if err != nil || v.ArticleID != articleID {
		return res, err
	}
	v.Comments = append([]models.Comment{res.Comment}, v.Comments...)
	v.Draft = ""
	if res.Reconciled && v.Article != nil {
		v.Article.CommentCount = res.Count
	}
	return res, nil
}

// Delete 删除成功后从列表移除；失败时列表不变
func (v *View) Delete(ctx context.Context, commentID string) (DeleteResult, error) {
	articleID := v.ArticleID
	res, err := v.e.DeleteComment(ctx, commentID, v.User)
	if err != nil || v.ArticleID != articleID {
		return res, err
	}
	kept := make([]models.Comment, 0, len(v.Comments))
	for _, c := range v.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	v.Comments = kept
	if res.Reconciled && v.Article != nil {
		v.Article.CommentCount = res.Count
	}
	return res, nil
}

// CanDelete 当前用户能否删除某条评论，用于决定是否显示删除按钮
func (v *View) CanDelete(c *models.Comment) bool {
	return CanDelete(v.User, c, v.Article)
}
