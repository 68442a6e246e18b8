package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/models"

	"github.com/google/uuid"
)

var errBoom = errors.New("connection reset by peer")

// memGateway 内存版网关：(article, user) 唯一约束 + 触发器式计数维护
type memGateway struct {
	mu       sync.Mutex
	articles map[string]*models.Article
	comments map[string]*models.Comment
	toggles  map[string]bool
	users    map[string]*models.User

	calls         int
	counterReads  int
	deleteCalls   int
	readFailures  int // 接下来多少次 ReadCounter 失败
	readNull      bool
	createErr     error
	deleteErr     error
	commentErr    error
	listErr       error
	existsErr     error
	searchErr     error
	getArticleErr error
	deleteZero    bool
	// 模拟别人在两步检查之后抢先删掉了评论
	vanishOnDelete bool
	block          bool
	afterCreate    func(g *memGateway)
}

func newMemGateway() *memGateway {
	return &memGateway{
		articles: map[string]*models.Article{},
		comments: map[string]*models.Comment{},
		toggles:  map[string]bool{},
		users:    map[string]*models.User{},
	}
}

func toggleKey(kind models.ToggleKind, articleID, userID string) string {
	return string(kind) + "|" + articleID + "|" + userID
}

func (g *memGateway) addArticle(a models.Article) *models.Article {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	g.articles[a.ID] = &a
	return &a
}

func (g *memGateway) addComment(c models.Comment) *models.Comment {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	g.comments[c.ID] = &c
	if a, ok := g.articles[c.ArticleID]; ok {
		a.CommentCount++
	}
	return &c
}

// bump 模拟触发器
func (g *memGateway) bump(articleID string, field models.Counter, delta int64) {
	a, ok := g.articles[articleID]
	if !ok {
		return
	}
	v := a.Counter(field) + delta
	if v < 0 {
		v = 0
	}
	a.SetCounter(field, v)
}

func (g *memGateway) enter(ctx context.Context) error {
	g.mu.Lock()
	g.calls++
	block := g.block
	g.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return ctx.Err()
}

func (g *memGateway) counter(id string, field models.Counter) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.articles[id].Counter(field)
}

func (g *memGateway) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getArticleErr != nil {
		return nil, g.getArticleErr
	}
	a, ok := g.articles[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (g *memGateway) ReadCounter(ctx context.Context, id string, field models.Counter) (*int64, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counterReads++
	if g.readFailures > 0 {
		g.readFailures--
		return nil, errBoom
	}
	a, ok := g.articles[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	if g.readNull {
		return nil, nil
	}
	v := a.Counter(field)
	return &v, nil
}

func (g *memGateway) IncrementViews(ctx context.Context, id string, n int64) error {
	if err := g.enter(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.articles[id]; !ok {
		return gateway.ErrNotFound
	}
	g.bump(id, models.ViewCount, n)
	return nil
}

func (g *memGateway) CreateArticle(ctx context.Context, a *models.Article) error {
	if err := g.enter(ctx); err != nil {
		return err
	}
	*a = *g.addArticle(*a)
	return nil
}

func (g *memGateway) sorted(filter func(*models.Article) bool) []models.Article {
	var list []models.Article
	for _, a := range g.articles {
		if filter(a) {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (g *memGateway) ListArticles(ctx context.Context, q gateway.ArticleQuery) ([]models.Article, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	list := g.sorted(func(a *models.Article) bool { return q.AuthorID == "" || a.AuthorID == q.AuthorID })
	if q.OrderBy == "view_count DESC" {
		sort.SliceStable(list, func(i, j int) bool { return list[i].ViewCount > list[j].ViewCount })
	}
	if q.Offset >= len(list) {
		return nil, nil
	}
	list = list[q.Offset:]
	if q.Limit > 0 && len(list) > q.Limit {
		list = list[:q.Limit]
	}
	return list, nil
}

func (g *memGateway) ArticlesByTag(ctx context.Context, tag string, limit int) ([]models.Article, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	return g.sorted(func(a *models.Article) bool {
		for _, t := range a.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}), nil
}

func (g *memGateway) SearchArticles(ctx context.Context, q string, limit int) ([]models.Article, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	return g.sorted(func(a *models.Article) bool { return strings.Contains(a.Title, q) }), nil
}

func (g *memGateway) BookmarkedArticles(ctx context.Context, userID string) ([]models.Article, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sorted(func(a *models.Article) bool {
		return g.toggles[toggleKey(models.KindBookmark, a.ID, userID)]
	}), nil
}

func (g *memGateway) CreateComment(ctx context.Context, c *models.Comment) error {
	if err := g.enter(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	commentErr := g.commentErr
	_, ok := g.articles[c.ArticleID]
	g.mu.Unlock()
	if commentErr != nil {
		return commentErr
	}
	if !ok {
		return fmt.Errorf("%w: foreign key", gateway.ErrNotFound)
	}
	*c = *g.addComment(*c)
	return nil
}

func (g *memGateway) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.comments[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (g *memGateway) ListComments(ctx context.Context, articleID string) ([]models.Comment, error) {
	if err := g.enter(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	var list []models.Comment
	for _, c := range g.comments {
		if c.ArticleID == articleID {
			list = append(list, *c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (g *memGateway) DeleteComment(ctx context.Context, commentID, requesterID string) (int64, error) {
	if err := g.enter(ctx); err != nil {
		return 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteCalls++
	if g.deleteErr != nil {
		return 0, g.deleteErr
	}
	if g.deleteZero {
		return 0, nil
	}
	if g.vanishOnDelete {
		delete(g.comments, commentID)
		return 0, nil
	}
	c, ok := g.comments[commentID]
	if !ok {
		return 0, nil
	}
	a := g.articles[c.ArticleID]
	if c.UserID != requesterID && (a == nil || a.AuthorID != requesterID) {
		return 0, nil
	}
	delete(g.comments, commentID)
	g.bump(c.ArticleID, models.CommentCount, -1)
	return 1, nil
}

func (g *memGateway) ToggleExists(ctx context.Context, kind models.ToggleKind, articleID, userID string) (bool, error) {
	if err := g.enter(ctx); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.existsErr != nil {
		return false, g.existsErr
	}
	return g.toggles[toggleKey(kind, articleID, userID)], nil
}

func (g *memGateway) CreateToggle(ctx context.Context, kind models.ToggleKind, articleID, userID string) error {
	if err := g.enter(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	if g.createErr != nil {
		g.mu.Unlock()
		return g.createErr
	}
	if _, ok := g.articles[articleID]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: foreign key", gateway.ErrNotFound)
	}
	key := toggleKey(kind, articleID, userID)
	if g.toggles[key] {
		g.mu.Unlock()
		return fmt.Errorf("%w: duplicate key", gateway.ErrConflict)
	}
	g.toggles[key] = true
	g.bump(articleID, kind.Counter(), 1)
	after := g.afterCreate
	g.mu.Unlock()
	if after != nil {
		after(g)
	}
	return nil
}

func (g *memGateway) DeleteToggle(ctx context.Context, kind models.ToggleKind, articleID, userID string) error {
	if err := g.enter(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	key := toggleKey(kind, articleID, userID)
	if g.toggles[key] {
		delete(g.toggles, key)
		g.bump(articleID, kind.Counter(), -1)
	}
	return nil
}

func (g *memGateway) GetUser(ctx context.Context, id string) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.users[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return u, nil
}

func (g *memGateway) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, u := range g.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (g *memGateway) CreateUser(ctx context.Context, u *models.User) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	g.users[u.ID] = u
	return nil
}

func (g *memGateway) UpdateUser(ctx context.Context, u *models.User, columns ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[u.ID] = u
	return nil
}

type recordingRanker struct {
	mu    sync.Mutex
	likes map[string]int64
}

func (r *recordingRanker) SetLikes(_ context.Context, id string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.likes == nil {
		r.likes = map[string]int64{}
	}
	r.likes[id] = n
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type starFilter struct{}

func (starFilter) Replace(s string) string { return strings.ReplaceAll(s, "垃圾", "**") }

var (
	alice  = &Identity{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"}
	bob    = &Identity{ID: "bob", Email: "bob@example.com"}
	carol  = &Identity{ID: "carol", Email: "carol@example.com"}
	author = &Identity{ID: "author", Email: "author@example.com", DisplayName: "Author"}
)

func newTestEngine(opts Options) (*Engine, *memGateway) {
	g := newMemGateway()
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}
	return New(g, opts), g
}
