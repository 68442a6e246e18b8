package services

import (
	"context"
	"time"

	"inkwell/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CalibrateFunc 按实际行数重算计数，返回被更新的文章数
type CalibrateFunc func(ctx context.Context) (int64, error)

// Calibration 定时校准点赞、收藏、评论计数，修复触发器之外的漂移（手工改库、恢复备份等）
type Calibration struct {
	cron    *cron.Cron
	run     CalibrateFunc
	timeout time.Duration
}

func NewCalibration(run CalibrateFunc) *Calibration {
	return &Calibration{
		cron:    cron.New(),
		run:     run,
		timeout: 10 * time.Minute,
	}
}

// Start 按 cron 表达式调度，默认每天凌晨 3 点
func (c *Calibration) Start(expr string) error {
	if expr == "" {
		expr = "0 3 * * *"
	}
	if _, err := c.cron.AddFunc(expr, func() { c.RunOnce(context.Background()) }); err != nil {
		return err
	}
	c.cron.Start()
	logger.Info("计数校准任务已启动", zap.String("cron", expr))
	return nil
}

// RunOnce 立即执行一次
func (c *Calibration) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	n, err := c.run(ctx)
	if err != nil {
		logger.Error("计数校准失败", zap.Error(err))
		return 0, err
	}
	logger.Info("计数校准完成", zap.Int64("articles", n), zap.Duration("elapsed", time.Since(start)))
	return n, nil
}

// Stop 等待正在执行的校准结束
func (c *Calibration) Stop() {
	<-c.cron.Stop().Done()
}
