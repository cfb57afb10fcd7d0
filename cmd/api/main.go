package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/sift-profiler/internal/agent"
	"github.com/octobees/sift-profiler/internal/auth"
	"github.com/octobees/sift-profiler/internal/config"
	"github.com/octobees/sift-profiler/internal/database"
	"github.com/octobees/sift-profiler/internal/handler"
	"github.com/octobees/sift-profiler/internal/llm"
	"github.com/octobees/sift-profiler/internal/logger"
	middlewarepkg "github.com/octobees/sift-profiler/internal/middleware"
	"github.com/octobees/sift-profiler/internal/repository"
	"github.com/octobees/sift-profiler/internal/router"
	"github.com/octobees/sift-profiler/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolOptions{
		MinConns: cfg.Database.MinConns,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(pool, zl); err != nil {
			zl.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool, cfg.Database.QueryTimeout)
	profilesRepo := repository.NewPGXProfilesRepository(pool, cfg.Database.QueryTimeout)

	runner, err := agent.NewHTTPRunner(context.Background(), cfg.Automation.BaseURL, agent.WithTimeout(cfg.Automation.Timeout))
	if err != nil {
		zl.Fatal("failed to build automation client", zap.Error(err))
	}

	var generator llm.Client
	if provider, err := llm.NewClient(context.Background(), cfg.LLM); err != nil {
		zl.Warn("generative provider unavailable, intelligence will use fallbacks",
			zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	} else {
		if closer, ok := provider.(io.Closer); ok {
			defer closer.Close()
		}
		generator = llm.NewBreaker(provider, cfg.LLM.BreakerThreshold, cfg.LLM.BreakerCooldown)
	}

	sanitizer := service.NewProfileSanitizer(cfg.ContactPhoneRegion)
	orchestrator := service.NewProfileOrchestrator(
		agent.NewInvoker(runner, zl),
		service.NewIntelligenceEnricher(generator, cfg.LLM.Temperature, zl).WithSanitizer(sanitizer),
		profilesRepo,
		sanitizer,
		service.NewHeartbeatNarrator(cfg.HeartbeatInterval),
		service.OrchestratorConfig{
			StepBudget:        cfg.Automation.StepBudget,
			Attempts:          cfg.Automation.Attempts,
			MaxConcurrentRuns: cfg.MaxConcurrentRuns,
			StreamTimeout:     cfg.StreamTimeout,
		},
		zl,
	)

	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(pool),
		Auth:     handler.NewAuthHandler(service.NewAuthService(usersRepo, jwtManager), service.NewUserService(usersRepo)),
		Profiles: handler.NewProfilesHandler(orchestrator, service.NewProfilesService(profilesRepo), zl),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zl))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
		return
	}

	// Streaming runs may outlive this window; their request contexts are
	// cancelled when the server closes.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Warn("graceful shutdown failed", zap.Error(err))
	}
}
