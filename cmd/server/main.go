package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Pistatapp/fieldgazer/internal/analytics"
	"github.com/Pistatapp/fieldgazer/internal/api/handlers"
	"github.com/Pistatapp/fieldgazer/internal/attendance"
	"github.com/Pistatapp/fieldgazer/internal/cache"
	"github.com/Pistatapp/fieldgazer/internal/config"
	"github.com/Pistatapp/fieldgazer/internal/repository"
	"github.com/Pistatapp/fieldgazer/internal/service"
	"github.com/Pistatapp/fieldgazer/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting Fieldgazer", zap.String("port", cfg.ServerPort))

	// 创建 context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接数据库
	db, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	defer db.Close()

	// 执行数据库迁移
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migrated successfully")

	// 创建 Repository
	subjectRepo := repository.NewSubjectRepository(db)
	zoneRepo := repository.NewZoneRepository(db)
	reportRepo := repository.NewReportRepository(db)
	sessionRepo := repository.NewAttendanceRepository(db)

	// 创建 WebSocket Hub, 新连接先收到对象列表和最新位置快照
	wsHub := ws.NewHub(logger)
	wsHub.SetInitDataProvider(func() *ws.InitData {
		snapCtx, snapCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer snapCancel()

		subjects, err := subjectRepo.ListAll(snapCtx)
		if err != nil {
			logger.Warn("Failed to load subjects for init data", zap.Error(err))
			return nil
		}
		positions, err := reportRepo.LatestAll(snapCtx)
		if err != nil {
			logger.Warn("Failed to load positions for init data", zap.Error(err))
			return nil
		}
		return &ws.InitData{Subjects: subjects, Positions: positions}
	})
	go wsHub.Run()

	// 创建考勤跟踪器与活跃对象索引
	tracker := attendance.NewTracker(attendance.Config{ExitDebounce: cfg.ExitDebounce}, logger)
	activeIndex := service.NewActiveIndex(logger, cache.NewMemory(), subjectRepo, reportRepo)

	// 创建遥测与指标服务
	telemetry := service.NewTelemetryService(
		cfg,
		logger,
		subjectRepo,
		zoneRepo,
		reportRepo,
		sessionRepo,
		tracker,
		activeIndex,
		wsHub,
	)
	analyticsCfg := analytics.Config{
		StoppageThreshold:    cfg.StoppageThreshold,
		MovementConfirmCount: cfg.MovementConfirmCount,
	}
	metrics := service.NewMetricsService(logger, analyticsCfg, zoneRepo, reportRepo)

	// 恢复重启前的考勤跟踪状态
	if err := telemetry.RestoreSessions(ctx); err != nil {
		logger.Error("Failed to restore open sessions", zap.Error(err))
	}

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(
		logger,
		subjectRepo,
		zoneRepo,
		reportRepo,
		sessionRepo,
		telemetry,
		metrics,
		activeIndex,
		cfg.ActiveWindow,
		wsHub,
	)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// 注册路由
	handler.RegisterRoutes(router)

	// 启动 HTTP 服务器
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
