package services

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationFixture struct {
	gw      *gateway.GormGateway
	svc     *NotificationService
	author  *models.User
	reader  *models.User
	article *models.Article
}

func newNotificationFixture(t *testing.T) notificationFixture {
	t.Helper()
	ctx := context.Background()
	gw := gateway.New(newTestDB(t))

	author := &models.User{Username: "author", Email: "author@example.com", Password: "x",
		NotificationSettings: models.DefaultNotificationSettings()}
	reader := &models.User{Username: "reader", Email: "reader@example.com", Password: "x",
		NotificationSettings: models.DefaultNotificationSettings()}
	require.NoError(t, gw.CreateUser(ctx, author))
	require.NoError(t, gw.CreateUser(ctx, reader))

	article := &models.Article{Title: "标题", Content: "正文", AuthorID: author.ID, AuthorName: "author"}
	require.NoError(t, gw.CreateArticle(ctx, article))

	return notificationFixture{
		gw:      gw,
		svc:     NewNotificationService(gw, time.Second),
		author:  author,
		reader:  reader,
		article: article,
	}
}

func TestNotificationFromComment(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	long := ""
	for i := 0; i < 30; i++ {
		long += "很长的评论"
	}
	c := &models.Comment{ArticleID: f.article.ID, UserID: f.reader.ID, Username: "reader", Content: long}
	require.NoError(t, f.gw.CreateComment(ctx, c))

	require.NoError(t, f.svc.Publish(ctx, events.Event{
		Type: events.CommentPosted, ArticleID: f.article.ID, UserID: f.reader.ID, CommentID: c.ID,
	}))

	inbox, err := f.svc.List(ctx, Identity(f.author))
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 1)
	n := inbox.Notifications[0]
	assert.Equal(t, models.NotificationTypeComment, n.Type)
	assert.Equal(t, f.reader.ID, n.ActorID)
	assert.Equal(t, c.ID, n.CommentID)
	assert.Len(t, []rune(n.Content), snippetLen+3)
	assert.EqualValues(t, 1, inbox.Unread)
}

func TestNotificationRespectsSettings(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	f.author.NotificationSettings.LikeNotifications = false
	require.NoError(t, f.gw.UpdateUser(ctx, f.author, "notification_settings"))

	require.NoError(t, f.svc.Publish(ctx, events.Event{Type: events.ArticleLiked, ArticleID: f.article.ID, UserID: f.reader.ID}))
	// 只关心评论和点赞
	require.NoError(t, f.svc.Publish(ctx, events.Event{Type: events.ArticleBookmarked, ArticleID: f.article.ID, UserID: f.reader.ID}))

	inbox, err := f.svc.List(ctx, Identity(f.author))
	require.NoError(t, err)
	assert.Empty(t, inbox.Notifications)
}

func TestLikeNotificationOnce(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()
	like := events.Event{Type: events.ArticleLiked, ArticleID: f.article.ID, UserID: f.reader.ID}

	require.NoError(t, f.svc.Publish(ctx, like))
	require.NoError(t, f.svc.Publish(ctx, like))
	// 作者给自己点赞
	require.NoError(t, f.svc.Publish(ctx, events.Event{Type: events.ArticleLiked, ArticleID: f.article.ID, UserID: f.author.ID}))

	inbox, err := f.svc.List(ctx, Identity(f.author))
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "reader", inbox.Notifications[0].ActorName)
	assert.Equal(t, "标题", inbox.Notifications[0].ArticleTitle)
}

func TestNotificationInboxScopedToReceiver(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Publish(ctx, events.Event{Type: events.ArticleLiked, ArticleID: f.article.ID, UserID: f.reader.ID}))

	inbox, err := f.svc.List(ctx, Identity(f.author))
	require.NoError(t, err)
	id := inbox.Notifications[0].ID

	err = f.svc.MarkRead(ctx, Identity(f.reader), id)
	assert.True(t, engine.IsKind(err, engine.NotFound))
	err = f.svc.Delete(ctx, Identity(f.reader), id)
	assert.True(t, engine.IsKind(err, engine.NotFound))

	require.NoError(t, f.svc.MarkRead(ctx, Identity(f.author), id))
	n, err := f.svc.MarkAllRead(ctx, Identity(f.author))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.List(ctx, nil)
	assert.True(t, engine.IsKind(err, engine.Unauthenticated))
}

func TestNotificationEmail(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()
	mailer := &recordingMailer{}
	f.svc.WithMailer(mailer)

	require.NoError(t, f.svc.Publish(ctx, events.Event{Type: events.ArticleLiked, ArticleID: f.article.ID, UserID: f.reader.ID}))
	assert.Equal(t, []string{f.author.Email}, mailer.to)

	f.author.NotificationSettings.EmailNotifications = false
	require.NoError(t, f.gw.UpdateUser(ctx, f.author, "notification_settings"))
	c := &models.Comment{ArticleID: f.article.ID, UserID: f.reader.ID, Username: "reader", Content: "hi"}
	require.NoError(t, f.gw.CreateComment(ctx, c))
	require.NoError(t, f.svc.Publish(ctx, events.Event{Type: events.CommentPosted, ArticleID: f.article.ID, UserID: f.reader.ID, CommentID: c.ID}))
	assert.Len(t, mailer.to, 1)
}
