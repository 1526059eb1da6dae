package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ingredient-canonicalizer/internal/api"
	"ingredient-canonicalizer/internal/core/batch"
	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/infrastructure/config"
	"ingredient-canonicalizer/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（內含 .env 加載）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("mode", cfg.App.Mode),
		zap.String("reference_base", cfg.Reference.Base),
		zap.String("pipeline_today", cfg.Pipeline.Today),
	)

	// 載入參照資料快照並建索引
	snapshot, err := reference.LoadSnapshot(cfg.Reference)
	if err != nil {
		common.LogFatal("Failed to load reference snapshot", zap.Error(err))
	}
	repo, err := reference.NewRepository(snapshot)
	if err != nil {
		common.LogFatal("Failed to build reference repository", zap.Error(err))
	}
	stats := repo.Stats()
	common.LogInfo("參照資料載入完成",
		zap.Int("ingredients", stats.Ingredients),
		zap.Int("forms", stats.Forms),
		zap.Int("densities", stats.Densities),
	)

	switch cfg.App.Mode {
	case "batch":
		runBatch(cfg, repo)
	case "serve":
		runServe(cfg, repo)
	default:
		common.LogFatal("Unknown app mode", zap.String("mode", cfg.App.Mode))
	}
}

// runBatch 批次模式：處理完輸入檔後退出
func runBatch(cfg *config.Config, repo *reference.Repository) {
	store, err := batch.NewIdempotencyStore(&cfg.Idempotency)
	if err != nil {
		common.LogFatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor := batch.NewProcessor(cfg, repo, store)
	if err := processor.Run(ctx); err != nil {
		common.LogError("批次處理失敗", zap.Error(err))
		os.Exit(1)
	}
}

// runServe 服務模式：常駐 HTTP API
func runServe(cfg *config.Config, repo *reference.Repository) {
	router, err := api.SetupRouter(cfg, repo)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
