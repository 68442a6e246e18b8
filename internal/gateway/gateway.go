// Package gateway 是远端数据网关：对 articles / comments / likes / bookmarks / users 的行级读写。
// 约束冲突被翻译成哨兵错误，其余错误原样返回。
package gateway

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type ArticleQuery struct {
	AuthorID string
	OrderBy  string
	Offset   int
	Limit    int
}

type ArticleStore interface {
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	// ReadCounter 只读一列，nil 表示数据库里是 NULL
	ReadCounter(ctx context.Context, id string, field models.Counter) (*int64, error)
	IncrementViews(ctx context.Context, id string, n int64) error
	CreateArticle(ctx context.Context, a *models.Article) error
	ListArticles(ctx context.Context, q ArticleQuery) ([]models.Article, error)
	ArticlesByTag(ctx context.Context, tag string, limit int) ([]models.Article, error)
	SearchArticles(ctx context.Context, query string, limit int) ([]models.Article, error)
	BookmarkedArticles(ctx context.Context, userID string) ([]models.Article, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, articleID string) ([]models.Comment, error)
	// DeleteComment 在 WHERE 中再次校验权限（评论作者或文章作者），返回实际删除行数
	DeleteComment(ctx context.Context, commentID, requesterID string) (int64, error)
}

type ToggleStore interface {
	ToggleExists(ctx context.Context, kind models.ToggleKind, articleID, userID string) (bool, error)
	CreateToggle(ctx context.Context, kind models.ToggleKind, articleID, userID string) error
	DeleteToggle(ctx context.Context, kind models.ToggleKind, articleID, userID string) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User, columns ...string) error
}

// NotificationStore 所有操作都限定在接收者 userID 下
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	// HasNotification 同一个人对同一篇文章的同类通知是否已存在
	HasNotification(ctx context.Context, userID, actorID, articleID string, typ models.NotificationType) (bool, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, id, userID string) error
}

type Gateway interface {
	ArticleStore
	CommentStore
	ToggleStore
	UserStore
}

// translate 把 GORM 的错误映射为哨兵错误，保留原始信息
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
