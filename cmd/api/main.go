package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-ticketing/internal/api"
	"github.com/sanosuguru/go-cinema-ticketing/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-cinema-ticketing/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-ticketing/internal/application"
	"github.com/sanosuguru/go-cinema-ticketing/internal/config"
	"github.com/sanosuguru/go-cinema-ticketing/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-cinema-ticketing/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/metrics"
	"github.com/sanosuguru/go-cinema-ticketing/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL 接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーション失敗", zap.Error(err))
	}

	// Redis 接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		cancelPing()
		logger.Fatal("Redis接続失敗", zap.Error(err))
	}
	cancelPing()

	// リポジトリ
	movieRepo := postgres.NewMovieRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	programmingRepo := postgres.NewProgrammingRepository(db)

	// インフラ
	txManager := postgres.NewTxManager(db)
	lockManager := redisinfra.NewLockManager(redisClient)
	seatCache := redisinfra.NewSeatCache(redisClient)

	// アプリケーションサービス
	publisher := application.NewLoggingPublisher()
	movieService := application.NewMovieService(movieRepo)
	sessionService := application.NewSessionService(txManager, sessionRepo, movieRepo, seatCache)
	purchaseService := application.NewPurchaseService(
		txManager, purchaseRepo, ticketRepo, sessionRepo, paymentRepo,
		lockManager, seatCache, publisher,
	)
	ticketService := application.NewTicketService(
		txManager, ticketRepo, sessionRepo, movieRepo, seatCache,
		application.NewDuplicateScanCheck(),
	)
	programmingService := application.NewProgrammingService(programmingRepo, sessionRepo, movieRepo)

	// 期限切れチケットスイーパー起動
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	sweeper := worker.NewTicketExpirySweeper(ticketService, cfg.Sweeper.Interval)
	go sweeper.Start(sweeperCtx)

	// Echo インスタンス作成
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	// ミドルウェア設定
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	movieHandler := handler.NewMovieHandler(movieService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	programmingHandler := handler.NewProgrammingHandler(programmingService)

	// ルーティング
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/movies", movieHandler.Create)
	v1.GET("/movies", movieHandler.List)
	v1.GET("/movies/:id", movieHandler.GetByID)
	v1.POST("/movies/:id/stop", movieHandler.StopScreening)

	v1.POST("/sessions", sessionHandler.Create)
	v1.GET("/sessions", sessionHandler.List)
	v1.GET("/sessions/:id", sessionHandler.GetByID)
	v1.POST("/sessions/:id/seats/reserve", sessionHandler.ReserveSeat)
	v1.POST("/sessions/:id/seats/release", sessionHandler.ReleaseSeat)
	v1.POST("/sessions/:id/sold-out", sessionHandler.MarkSoldOut)
	v1.POST("/sessions/:id/cancel", sessionHandler.Cancel)
	v1.GET("/sessions/:id/available-seats", sessionHandler.CountAvailableSeats)
	v1.POST("/sessions/:id/tickets/expire", ticketHandler.ExpireSession)

	v1.POST("/purchases", purchaseHandler.Initiate)
	v1.GET("/purchases", purchaseHandler.ListByCustomer)
	v1.GET("/purchases/:id", purchaseHandler.GetByID)
	v1.POST("/purchases/:id/confirm", purchaseHandler.Confirm)
	v1.POST("/purchases/:id/cancel", purchaseHandler.Cancel)

	v1.POST("/tickets/validate", ticketHandler.Validate)
	v1.GET("/tickets", ticketHandler.ListActive)
	v1.GET("/tickets/:id", ticketHandler.GetByID)
	v1.POST("/tickets/:id/use", ticketHandler.Use)
	v1.POST("/tickets/:id/rebook", ticketHandler.Rebook)

	v1.POST("/programmings", programmingHandler.Create)
	v1.GET("/programmings", programmingHandler.List)
	v1.GET("/programmings/:id", programmingHandler.GetByID)

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

	// スイーパー停止
	cancelSweeper()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
