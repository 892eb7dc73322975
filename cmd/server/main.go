package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JobHunter-2025/skill-assessment-service/internal/cache"
	"github.com/JobHunter-2025/skill-assessment-service/internal/config"
	"github.com/JobHunter-2025/skill-assessment-service/internal/handlers"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories/postgres"
	"github.com/JobHunter-2025/skill-assessment-service/internal/services"
	"github.com/JobHunter-2025/skill-assessment-service/internal/utils"
	"github.com/JobHunter-2025/skill-assessment-service/internal/validator"
	"github.com/JobHunter-2025/skill-assessment-service/pkg"
	"github.com/gin-gonic/gin"
)

// timeoutSweepInterval bounds how stale an expired attempt can stay
// in_progress when no request touches it.
const timeoutSweepInterval = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
		gin.SetMode(gin.DebugMode)
	} else {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	activeCache := cache.NewRedisAttemptCache(redisClient)

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	serviceManager := services.NewServiceManager(repo, activeCache, publisher, utils.ToSlogLogger(logger), v)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, v, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background sweep expires overdue attempts that no request touched.
	go runTimeoutSweep(ctx, serviceManager.Attempt(), logger)

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server failed")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Server shutdown failed")
	}
}

func runTimeoutSweep(ctx context.Context, attempts services.AttemptService, logger utils.Logger) {
	ticker := time.NewTicker(timeoutSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			expired, err := attempts.HandleTimeouts(ctx, now)
			if err != nil {
				logger.LogError(err, "Timeout sweep failed")
				continue
			}
			if expired > 0 {
				logger.Info("Expired overdue attempts", "count", expired)
			}
		}
	}
}
