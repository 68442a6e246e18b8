package services

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/models"
	"inkwell/internal/utils"
)

const (
	NotificationLimit = 50
	snippetLen        = 100
)

// NotificationGateway 生成通知时需要回查文章、评论和双方用户
type NotificationGateway interface {
	gateway.NotificationStore
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// NotificationService 消费互动事件生成站内通知，并提供收件箱操作。
// 只处理评论和点赞，且遵守作者的通知设置。
type NotificationService struct {
	gw      NotificationGateway
	timeout time.Duration
	mailer  Mailer
}

// Mailer 作者开启邮件通知时使用
type Mailer interface {
	SendNotification(email string, n *models.Notification)
}

// WithMailer 设置邮件通道，nil 表示只发站内通知
func (s *NotificationService) WithMailer(m Mailer) *NotificationService {
	s.mailer = m
	return s
}

func NewNotificationService(gw NotificationGateway, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = engine.DefaultTimeout
	}
	return &NotificationService{gw: gw, timeout: timeout}
}

// Publish 实现 events.Publisher
func (s *NotificationService) Publish(ctx context.Context, e events.Event) error {
	var typ models.NotificationType
	switch e.Type {
	case events.CommentPosted:
		typ = models.NotificationTypeComment
	case events.ArticleLiked:
		typ = models.NotificationTypeLike
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	article, err := s.gw.GetArticle(ctx, e.ArticleID)
	if err != nil {
		return err
	}
	// 自己给自己的互动不通知
	if article.AuthorID == e.UserID {
		return nil
	}
	author, err := s.gw.GetUser(ctx, article.AuthorID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil
		}
		return err
	}
	if !wants(author.NotificationSettings, typ) {
		return nil
	}

	// 反复点赞/取消只通知一次
	if typ == models.NotificationTypeLike {
		exists, err := s.gw.HasNotification(ctx, author.ID, e.UserID, article.ID, typ)
		if err != nil || exists {
			return err
		}
	}

	n := &models.Notification{
		UserID:       author.ID,
		ActorID:      e.UserID,
		ActorName:    utils.AnonymousName,
		ArticleID:    article.ID,
		ArticleTitle: article.Title,
		CommentID:    e.CommentID,
		Type:         typ,
	}
	if actor, err := s.gw.GetUser(ctx, e.UserID); err == nil {
		n.ActorName = actor.Username
	}
	if typ == models.NotificationTypeComment && e.CommentID != "" {
		if c, err := s.gw.GetComment(ctx, e.CommentID); err == nil {
			n.ActorName = c.Username
			n.Content = snippet(c.Content)
		}
	}
	if err := s.gw.CreateNotification(ctx, n); err != nil {
		return err
	}
	if s.mailer != nil && author.NotificationSettings.EmailNotifications {
		s.mailer.SendNotification(author.Email, n)
	}
	return nil
}

func wants(settings models.NotificationSettings, typ models.NotificationType) bool {
	switch typ {
	case models.NotificationTypeComment:
		return settings.CommentNotifications
	case models.NotificationTypeLike:
		return settings.LikeNotifications
	}
	return false
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > snippetLen {
		return string(runes[:snippetLen]) + "..."
	}
	return content
}

// Inbox 最近的通知和未读数
type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
}

func (s *NotificationService) List(ctx context.Context, who *engine.Identity) (Inbox, error) {
	const op = "services.ListNotifications"
	if who == nil {
		return Inbox{}, &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.gw.ListNotifications(ctx, who.ID, NotificationLimit)
	if err != nil {
		return Inbox{}, gatewayErr(op, err)
	}
	unread, err := s.gw.CountUnread(ctx, who.ID)
	if err != nil {
		return Inbox{}, gatewayErr(op, err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return Inbox{Notifications: list, Unread: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, who *engine.Identity, id string) error {
	const op = "services.MarkNotificationRead"
	if who == nil {
		return &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.gw.MarkNotificationRead(ctx, id, who.ID); err != nil {
		return gatewayErr(op, err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, who *engine.Identity) (int64, error) {
	const op = "services.MarkAllNotificationsRead"
	if who == nil {
		return 0, &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.gw.MarkAllNotificationsRead(ctx, who.ID)
	if err != nil {
		return 0, gatewayErr(op, err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, who *engine.Identity, id string) error {
	const op = "services.DeleteNotification"
	if who == nil {
		return &engine.Error{Kind: engine.Unauthenticated, Op: op}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.gw.DeleteNotification(ctx, id, who.ID); err != nil {
		return gatewayErr(op, err)
	}
	return nil
}
