package services

import (
	"context"
	"sync"
	"time"

	"inkwell/internal/logger"

	"go.uber.org/zap"
)

// ViewIncrementer 原子地给 view_count 加 n
type ViewIncrementer interface {
	IncrementViews(ctx context.Context, articleID string, n int64) error
}

// ViewAccrual 页面浏览量的异步累加：请求只入队，后台合并同一篇文章的多次浏览，
// 定时用一条 view_count = view_count + n 写回。失败只记日志，不影响页面。
type ViewAccrual struct {
	store    ViewIncrementer
	queue    chan string
	pending  map[string]int64
	mu       sync.Mutex
	interval time.Duration
	timeout  time.Duration

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newViewAccrual(store ViewIncrementer, queueSize int, interval time.Duration) *ViewAccrual {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &ViewAccrual{
		store:    store,
		queue:    make(chan string, queueSize),
		pending:  make(map[string]int64),
		interval: interval,
		timeout:  5 * time.Second,
		done:     make(chan struct{}),
	}
}

// NewViewAccrual 创建并启动后台 worker
func NewViewAccrual(store ViewIncrementer, queueSize int, interval time.Duration) *ViewAccrual {
	s := newViewAccrual(store, queueSize, interval)
	s.wg.Add(1)
	go s.worker()
	return s
}

// Schedule 非阻塞入队，队列满或已关闭时丢弃并返回 false
func (s *ViewAccrual) Schedule(articleID string) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.queue <- articleID:
		return true
	default:
		logger.Warn("浏览量队列已满，丢弃一次浏览", zap.String("article_id", articleID))
		return false
	}
}

func (s *ViewAccrual) worker() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case id := <-s.queue:
			s.add(id)
		case <-ticker.C:
			s.Flush(context.Background())
		case <-s.done:
			// 把队列里剩下的处理完
			for {
				select {
				case id := <-s.queue:
					s.add(id)
				default:
					s.Flush(context.Background())
					return
				}
			}
		}
	}
}

func (s *ViewAccrual) add(id string) {
	s.mu.Lock()
	s.pending[id]++
	s.mu.Unlock()
}

// Flush 立即写回当前累计的浏览量
func (s *ViewAccrual) Flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[string]int64, len(batch))
	s.mu.Unlock()

	for id, n := range batch {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.store.IncrementViews(callCtx, id, n)
		cancel()
		if err != nil {
			logger.Warn("累加浏览量失败", zap.String("article_id", id), zap.Int64("views", n), zap.Error(err))
		}
	}
}

// Close 停止接收新的浏览并写回剩余数据，可重复调用
func (s *ViewAccrual) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
