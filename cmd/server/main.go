package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/engine"
	"inkwell/internal/events"
	"inkwell/internal/gateway"
	"inkwell/internal/handlers"
	"inkwell/internal/logger"
	"inkwell/internal/moderation"
	"inkwell/internal/ranking"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"go.uber.org/zap"
)

func main() {
	calibrateOnly := flag.Bool("calibrate", false, "recompute article counters from rows and exit")
	flag.Parse()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// Initialize Database
	if err := db.Init(cfg.Database); err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	calibration := services.NewCalibration(func(ctx context.Context) (int64, error) {
		return db.Calibrate(ctx, db.DB)
	})
	if *calibrateOnly {
		n, err := calibration.RunOnce(context.Background())
		if err != nil {
			logger.Fatal("calibrate", zap.Error(err))
		}
		logger.Info("calibrated", zap.Int64("rows", n))
		return
	}

	gw := gateway.New(db.DB)

	var ranker ranking.Ranker = ranking.Noop{}
	if cfg.Redis.Addr != "" {
		rr := ranking.Dial(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rr.Close()
		ranker = rr
	}

	notifications := services.NewNotificationService(gw, cfg.Engine.GatewayTimeout).
		WithMailer(services.NewMailService(cfg.Mail, cfg.SiteURL))
	publisher := events.Fanout{notifications}
	if cfg.RabbitMQ.URL != "" {
		rp, err := events.DialRabbit(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			// 事件只是旁路通知，连不上不影响主流程
			logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			defer rp.Close()
			publisher = append(publisher, rp)
		}
	}

	filter := moderation.New(cfg.Moderation.BlockedWords)
	if cfg.Moderation.WordsFile != "" {
		if err := filter.LoadFile(cfg.Moderation.WordsFile); err != nil {
			logger.Warn("load blocked words", zap.String("file", cfg.Moderation.WordsFile), zap.Error(err))
		}
	}

	eng := engine.New(gw, engine.Options{
		Timeout:         cfg.Engine.GatewayTimeout,
		RetryRefresh:    cfg.Engine.RetryRefresh,
		FallbackOnEmpty: cfg.Engine.FallbackOnEmpty,
		Publisher:       publisher,
		Ranker:          ranker,
		Filter:          filter,
		Logger:          logger.L(),
	})

	cache := utils.GetCache()
	views := services.NewViewAccrual(eng, cfg.Views.QueueSize, cfg.Views.FlushInterval)

	if err := calibration.Start(cfg.Calibration.Cron); err != nil {
		logger.Fatal("start calibration", zap.Error(err))
	}

	r := router.New(router.Options{
		SessionSecret: cfg.SessionSecret,
		CORSOrigins:   cfg.CORS.Origins,
		TemplatesDir:  "./web/templates",
		StaticDir:     "./web/static",
	}, handlers.Deps{
		Engine:        eng,
		Articles:      services.NewArticleService(gw, cache, cfg.Engine.GatewayTimeout),
		Accounts:      services.NewAccountService(gw, cfg.Engine.GatewayTimeout),
		Notifications: notifications,
		Views:         views,
		Ranker:        ranker,
		Cache:         cache,
		SiteURL:       cfg.SiteURL,
	}, logger.L())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logger.Info("Inkwell server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	calibration.Stop()
	// 排空浏览量队列
	views.Close()
}
