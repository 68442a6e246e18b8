// Package engine 是互动与一致性引擎：点赞/收藏开关、评论生命周期、计数回读、浏览量累加、
// 单次页面浏览的互动状态，以及搜索和 feed 的降级。计数的唯一写入者是数据库触发器，
// 这里只在变更成功之后回读权威值。
package engine

import (
	"context"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/utils"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

// Identity 当前登录用户，nil 表示匿名
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Username 评论里保存的作者名快照
func (i *Identity) Username() string {
	return utils.DefaultUsername(i.DisplayName, i.Email)
}

// LikeRanker 接收点赞数的权威值
type LikeRanker interface {
	SetLikes(ctx context.Context, articleID string, likes int64) error
}

// ContentFilter 评论内容过滤
type ContentFilter interface {
	Replace(content string) string
}

type Options struct {
	Timeout         time.Duration
	RetryRefresh    bool
	FallbackOnEmpty bool
	Publisher       events.Publisher
	Ranker          LikeRanker
	Filter          ContentFilter
	Logger          *zap.Logger
}

type Engine struct {
	gw   gateway.Gateway
	opts Options
	log  *zap.Logger
}

func New(gw gateway.Gateway, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{gw: gw, opts: opts, log: opts.Logger}
}

// call 每次网关调用单独计时，超时后由网关返回 context.DeadlineExceeded
func (e *Engine) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	return fn(ctx)
}

// publish 事件投递失败只记日志
func (e *Engine) publish(ctx context.Context, ev events.Event) {
	ev.At = time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	if err := e.opts.Publisher.Publish(ctx, ev); err != nil {
		e.log.Warn("publish interaction event",
			zap.String("type", string(ev.Type)),
			zap.String("article_id", ev.ArticleID),
			zap.Error(err))
	}
}
