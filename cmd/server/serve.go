package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/epidash-backend-go/internal/api"
	"github.com/jengzang/epidash-backend-go/internal/cache"
	"github.com/jengzang/epidash-backend-go/internal/config"
	"github.com/jengzang/epidash-backend-go/internal/database"
	"github.com/jengzang/epidash-backend-go/internal/handler"
	"github.com/jengzang/epidash-backend-go/internal/logging"
	"github.com/jengzang/epidash-backend-go/internal/middleware"
	"github.com/jengzang/epidash-backend-go/internal/repository"
	"github.com/jengzang/epidash-backend-go/internal/service"
	"github.com/jengzang/epidash-backend-go/internal/spatial"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", "", "listen address, e.g. :8080 (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 加载配置
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if debug {
		cfg.LogLevel = "debug"
		cfg.GinMode = gin.DebugMode
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Open(database.Config{DSN: cfg.DatabaseDSN}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	coords, err := spatial.LoadCoordinates(cfg.CoordinatesFile)
	if err != nil {
		return err
	}
	logger.Info("Coordinate table loaded",
		zap.Int("countries", coords.Len()),
		zap.String("file", cfg.CoordinatesFile))

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	svc := service.NewDashboardService(cache.New(cfg.CacheEntries), repository.NewDatasetRepository(db), coords, logger)

	// 初始化路由
	router := api.SetupRouter(handler.NewDashboardHandler(svc, cfg.MaxUploadBytes, logger), logger, limiter)
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		// 启动服务器
		logger.Info("Server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
