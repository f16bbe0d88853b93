package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Charangandrothu/SpotMySeat/internal/api"
	"github.com/Charangandrothu/SpotMySeat/internal/api/handler"
	apimiddleware "github.com/Charangandrothu/SpotMySeat/internal/api/middleware"
	"github.com/Charangandrothu/SpotMySeat/internal/application"
	"github.com/Charangandrothu/SpotMySeat/internal/config"
	"github.com/Charangandrothu/SpotMySeat/internal/infrastructure/memory"
	"github.com/Charangandrothu/SpotMySeat/internal/infrastructure/postgres"
	redisinfra "github.com/Charangandrothu/SpotMySeat/internal/infrastructure/redis"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/logger"
	"github.com/Charangandrothu/SpotMySeat/internal/pkg/metrics"
	"github.com/Charangandrothu/SpotMySeat/internal/worker"
)

func main() {
	// .env があれば読み込む（本番では環境変数が優先）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Server.Env))
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := postgres.RunMigrations(db.DB, path); err != nil {
			logger.Fatal("マイグレーションに失敗", zap.Error(err))
		}
	}

	// Redis接続（未接続時はプロセス内通知にフォールバック）
	var (
		notifier      application.FeedNotifier
		lockManager   *redisinfra.LockManager
		snapshotCache *redisinfra.SnapshotCache
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis未接続のためプロセス内通知で起動します", zap.Error(err))
		notifier = memory.NewNotifier()
	} else {
		defer redisClient.Close()
		notifier = redisinfra.NewFeedNotifier(redisClient)
		lockManager = redisinfra.NewLockManager(redisClient)
		snapshotCache = redisinfra.NewSnapshotCache(redisClient)
	}

	// リポジトリとサービス
	lockRepo := postgres.NewSeatLockRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	lockService := application.NewLockService(lockRepo, notifier, m, cfg.Lock.TTL)
	bookingService := application.NewBookingService(txManager, lockRepo, bookingRepo, lockManager, notifier, m)
	availabilityService := application.NewAvailabilityService(lockRepo, bookingRepo, notifier, snapshotCache, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := availabilityService.Start(ctx); err != nil {
		logger.Fatal("空席状況フィードの開始に失敗", zap.Error(err))
	}
	defer availabilityService.Stop()

	// 期限切れロック掃除ワーカー
	if cfg.Sweeper.Enabled {
		sweeper := worker.NewExpiredLockSweeper(lockRepo, cfg.Sweeper.Interval, m)
		go sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	// Echoサーバー
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	lockHandler := handler.NewLockHandler(lockService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	healthHandler := handler.NewHealthHandler()

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.POST("/shows/:showID/locks", lockHandler.Acquire)
	v1.DELETE("/shows/:showID/locks/:seatLabel", lockHandler.Release)
	v1.POST("/shows/:showID/bookings", bookingHandler.Confirm)
	v1.GET("/shows/:showID/availability", availabilityHandler.Snapshot)
	v1.GET("/shows/:showID/availability/ws", availabilityHandler.Watch)
	v1.GET("/bookings", bookingHandler.ListMine)
	v1.GET("/bookings/:id", bookingHandler.GetByID)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()),
		apimiddleware.MetricsBasicAuth(cfg.Server.MetricsUser, cfg.Server.MetricsPassword))

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
