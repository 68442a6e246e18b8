package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostComment(t *testing.T) {
	pub := &recordingPublisher{}
	e, g := newTestEngine(Options{Filter: starFilter{}, Publisher: pub})
	a := g.addArticle(models.Article{AuthorID: "author"})

	res, err := e.PostComment(context.Background(), a.ID, bob, "  这是垃圾  ")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Comment.ID)
	assert.False(t, res.Comment.CreatedAt.IsZero())
	assert.Equal(t, "这是**", res.Comment.Content)
	assert.Equal(t, "bob", res.Comment.Username)
	assert.Equal(t, int64(1), res.Count)
	assert.True(t, res.Reconciled)
	assert.Equal(t, []events.Type{events.CommentPosted}, pub.types())
}

func TestPostCommentValidation(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})

	_, err := e.PostComment(context.Background(), a.ID, nil, "hi")
	assert.True(t, IsKind(err, Unauthenticated))

	_, err = e.PostComment(context.Background(), a.ID, bob, "   \n ")
	assert.True(t, IsKind(err, Invalid))
	assert.Equal(t, 0, g.calls)
}

func TestPostCommentFailureCarriesMessage(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	g.commentErr = errBoom

	_, err := e.PostComment(context.Background(), a.ID, bob, "hi")
	assert.True(t, IsKind(err, CommentPostFailed))
	assert.Contains(t, err.Error(), errBoom.Error())
	assert.Equal(t, 0, g.counterReads)
}

func TestListCommentsOrder(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	now := time.Now()
	g.addComment(models.Comment{ID: "c1", ArticleID: a.ID, CreatedAt: now.Add(-time.Minute)})
	g.addComment(models.Comment{ID: "c2", ArticleID: a.ID, CreatedAt: now})
	g.addComment(models.Comment{ID: "c3", ArticleID: a.ID, CreatedAt: now})

	list, err := e.ListComments(context.Background(), a.ID)
	require.NoError(t, err)
	ids := []string{list[0].ID, list[1].ID, list[2].ID}
	assert.Equal(t, []string{"c3", "c2", "c1"}, ids)

	list, err = e.ListComments(context.Background(), "empty")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestArticleAuthorDeletesOthersComment(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	c := g.addComment(models.Comment{ArticleID: a.ID, UserID: "bob", Content: "hi"})

	res, err := e.DeleteComment(context.Background(), c.ID, author)
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{CommentID: c.ID, Count: 0, Reconciled: true}, res)

	list, err := e.ListComments(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCommentAuthorDeletesOwnComment(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	c := g.addComment(models.Comment{ArticleID: a.ID, UserID: "bob", Content: "hi"})

	_, err := e.DeleteComment(context.Background(), c.ID, bob)
	require.NoError(t, err)
}

func TestThirdPartyCannotDelete(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	c := g.addComment(models.Comment{ArticleID: a.ID, UserID: "bob", Content: "hi"})

	_, err := e.DeleteComment(context.Background(), c.ID, carol)
	assert.True(t, IsKind(err, NotAuthorized))
	assert.Equal(t, 0, g.deleteCalls)
	assert.Equal(t, int64(1), g.counter(a.ID, models.CommentCount))
}

func TestDeleteCommentPolicyRecheckedByGateway(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	c := g.addComment(models.Comment{ArticleID: a.ID, UserID: "bob", Content: "hi"})
	g.deleteZero = true

	_, err := e.DeleteComment(context.Background(), c.ID, bob)
	assert.True(t, IsKind(err, NotAuthorized))
	assert.Equal(t, 1, g.deleteCalls)
}

func TestDeleteCommentRemovedConcurrently(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	c := g.addComment(models.Comment{ArticleID: a.ID, UserID: "bob", Content: "hi"})
	g.vanishOnDelete = true

	_, err := e.DeleteComment(context.Background(), c.ID, author)
	assert.True(t, IsKind(err, NotFound))
	assert.Equal(t, 1, g.deleteCalls)
}

func TestDeleteCommentErrors(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	c := g.addComment(models.Comment{ArticleID: a.ID, UserID: "bob"})

	_, err := e.DeleteComment(context.Background(), c.ID, nil)
	assert.True(t, IsKind(err, Unauthenticated))

	_, err = e.DeleteComment(context.Background(), "missing", bob)
	assert.True(t, IsKind(err, NotFound))

	g.deleteErr = errBoom
	_, err = e.DeleteComment(context.Background(), c.ID, bob)
	assert.True(t, IsKind(err, GatewayError))
	assert.True(t, errors.Is(err, errBoom))
}

func TestCanDelete(t *testing.T) {
	a := &models.Article{AuthorID: "author"}
	c := &models.Comment{UserID: "bob"}

	assert.True(t, CanDelete(bob, c, a))
	assert.True(t, CanDelete(author, c, a))
	assert.False(t, CanDelete(carol, c, a))
	assert.False(t, CanDelete(nil, c, a))
	assert.False(t, CanDelete(author, c, nil))
}
