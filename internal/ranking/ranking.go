// Package ranking 维护点赞排行榜（Redis ZSET）。
// 分数总是写入权威点赞数，而不是自增，这样重放或乱序不会造成漂移。
package ranking

import (
	"context"

	"github.com/go-redis/redis/v8"
)

const LikesKey = "rank:article:likes"

type Entry struct {
	ArticleID string `json:"id"`
	Likes     int64  `json:"score"`
	Rank      int    `json:"rank"`
}

type Ranker interface {
	SetLikes(ctx context.Context, articleID string, likes int64) error
	Top(ctx context.Context, n int) ([]Entry, error)
}

type RedisRanker struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *RedisRanker {
	return &RedisRanker{rdb: rdb}
}

// Dial 按地址创建客户端，不主动 Ping
func Dial(addr, password string, db int) *RedisRanker {
	return NewRedis(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func (r *RedisRanker) SetLikes(ctx context.Context, articleID string, likes int64) error {
	if likes <= 0 {
		return r.rdb.ZRem(ctx, LikesKey, articleID).Err()
	}
	return r.rdb.ZAdd(ctx, LikesKey, &redis.Z{Score: float64(likes), Member: articleID}).Err()
}

func (r *RedisRanker) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}
	zres, err := r.rdb.ZRevRangeWithScores(ctx, LikesKey, 0, int64(n-1)).Result()
	if err == redis.Nil {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	list := make([]Entry, 0, len(zres))
	for i, z := range zres {
		member, _ := z.Member.(string)
		list = append(list, Entry{ArticleID: member, Likes: int64(z.Score), Rank: i + 1})
	}
	return list, nil
}

func (r *RedisRanker) Close() error {
	return r.rdb.Close()
}

// Noop 未配置 Redis 时使用
type Noop struct{}

func (Noop) SetLikes(context.Context, string, int64) error { return nil }

func (Noop) Top(context.Context, int) ([]Entry, error) { return []Entry{}, nil }
