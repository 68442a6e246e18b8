package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeReadsAuthoritativeCount(t *testing.T) {
	ranker := &recordingRanker{}
	pub := &recordingPublisher{}
	e, g := newTestEngine(Options{Ranker: ranker, Publisher: pub})
	a := g.addArticle(models.Article{AuthorID: "author", LikeCount: 89})

	res, err := e.Toggle(context.Background(), models.KindLike, a.ID, alice, false)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{On: true, Count: 90, Reconciled: true}, res)
	assert.Equal(t, int64(90), ranker.likes[a.ID])
	assert.Equal(t, []events.Type{events.ArticleLiked}, pub.types())
}

func TestToggleDoesNotSynthesizeCount(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author", LikeCount: 89})
	// 变更和回读之间另一个用户也点了赞
	g.afterCreate = func(g *memGateway) {
		g.mu.Lock()
		g.afterCreate = nil
		g.mu.Unlock()
		_ = g.CreateToggle(context.Background(), models.KindLike, a.ID, "someone-else")
	}

	res, err := e.Toggle(context.Background(), models.KindLike, a.ID, alice, false)
	require.NoError(t, err)
	assert.Equal(t, int64(91), res.Count)
}

func TestToggleUnauthenticated(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})

	res, err := e.Toggle(context.Background(), models.KindBookmark, a.ID, nil, false)
	assert.True(t, IsKind(err, Unauthenticated))
	assert.False(t, res.On)
	assert.Equal(t, 0, g.calls)
	assert.Equal(t, int64(0), g.counter(a.ID, models.BookmarkCount))
}

func TestToggleRemove(t *testing.T) {
	pub := &recordingPublisher{}
	e, g := newTestEngine(Options{Publisher: pub})
	a := g.addArticle(models.Article{AuthorID: "author"})
	ctx := context.Background()

	_, err := e.Toggle(ctx, models.KindBookmark, a.ID, alice, false)
	require.NoError(t, err)
	res, err := e.Toggle(ctx, models.KindBookmark, a.ID, alice, true)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{On: false, Count: 0, Reconciled: true}, res)

	on, err := e.Resync(ctx, models.KindBookmark, a.ID, alice)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []events.Type{events.ArticleBookmarked, events.ArticleUnmarked}, pub.types())
}

func TestToggleConflictIsSurfaced(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	ctx := context.Background()

	_, err := e.Toggle(ctx, models.KindLike, a.ID, alice, false)
	require.NoError(t, err)

	res, err := e.Toggle(ctx, models.KindLike, a.ID, alice, false)
	assert.True(t, IsKind(err, AlreadyToggled))
	assert.False(t, res.On)
	assert.Equal(t, int64(1), g.counter(a.ID, models.LikeCount))

	on, err := e.Resync(ctx, models.KindLike, a.ID, alice)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestConcurrentDoubleToggle(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Toggle(context.Background(), models.KindLike, a.ID, alice, false)
		}(i)
	}
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case IsKind(err, AlreadyToggled):
			already++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)
	assert.Equal(t, int64(1), g.counter(a.ID, models.LikeCount))
}

func TestToggleMissingArticle(t *testing.T) {
	e, _ := newTestEngine(Options{})
	_, err := e.Toggle(context.Background(), models.KindLike, "missing", alice, false)
	assert.True(t, IsKind(err, NotFound))
}

func TestToggleGatewayErrorSkipsRefresh(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author", LikeCount: 5})
	g.createErr = errBoom

	res, err := e.Toggle(context.Background(), models.KindLike, a.ID, alice, false)
	assert.True(t, IsKind(err, GatewayError))
	assert.True(t, errors.Is(err, errBoom))
	assert.False(t, res.On)
	assert.Equal(t, 0, g.counterReads)

	g.createErr = nil
	g.deleteErr = errBoom
	res, err = e.Toggle(context.Background(), models.KindLike, a.ID, alice, true)
	assert.True(t, IsKind(err, GatewayError))
	assert.True(t, res.On)
}

func TestToggleTimeout(t *testing.T) {
	e, g := newTestEngine(Options{Timeout: 20 * time.Millisecond})
	a := g.addArticle(models.Article{AuthorID: "author"})
	g.block = true

	start := time.Now()
	_, err := e.Toggle(context.Background(), models.KindLike, a.ID, alice, false)
	assert.True(t, IsKind(err, GatewayError))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestToggleRefreshFailureKeepsCountUnreconciled(t *testing.T) {
	ranker := &recordingRanker{}
	e, g := newTestEngine(Options{RetryRefresh: true, Ranker: ranker})
	a := g.addArticle(models.Article{AuthorID: "author", LikeCount: 89})
	g.readFailures = 2

	res, err := e.Toggle(context.Background(), models.KindLike, a.ID, alice, false)
	require.NoError(t, err)
	assert.True(t, res.On)
	assert.False(t, res.Reconciled)
	assert.Equal(t, int64(0), res.Count)
	assert.Empty(t, ranker.likes)
	// 触发器照常生效
	assert.Equal(t, int64(90), g.counter(a.ID, models.LikeCount))
}

func TestToggleInvalidKind(t *testing.T) {
	e, g := newTestEngine(Options{})
	a := g.addArticle(models.Article{AuthorID: "author"})
	_, err := e.Toggle(context.Background(), models.ToggleKind("star"), a.ID, alice, false)
	assert.True(t, IsKind(err, Invalid))
}

func TestResyncAnonymous(t *testing.T) {
	e, g := newTestEngine(Options{})
	on, err := e.Resync(context.Background(), models.KindLike, "x", nil)
	assert.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 0, g.calls)
}
