package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-serving-service/internal/adapters/primary/http/handlers"
	"model-serving-service/internal/adapters/primary/http/middleware"
	"model-serving-service/internal/adapters/secondary/filestore"
	"model-serving-service/internal/adapters/secondary/postgres"
	"model-serving-service/internal/adapters/secondary/s3store"
	"model-serving-service/internal/config"
	"model-serving-service/internal/core/domain"
	"model-serving-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	if err := cfg.Model.Validate(); err != nil {
		log.Fatalf("invalid model config: %v", err)
	}

	// ============================================================================
	// Startup: everything below must succeed before the listener starts
	// ============================================================================

	device, err := domain.ParseDevice(cfg.Model.Device)
	if err != nil {
		log.Fatalf("resolve device: %v", err)
	}
	log.WithField("device", device).Info("device resolved")

	normalizer, err := services.NewTextNormalizer(cfg.Model.Language)
	if err != nil {
		log.Fatalf("load stop words: %v", err)
	}

	s3Store, err := s3store.NewS3Store(context.Background(), &cfg.Storage)
	if err != nil {
		log.Fatalf("create s3 store: %v", err)
	}
	loader := services.NewArtifactLoader(filestore.NewFileStore(), s3Store)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Model.LoadTimeout)
	artifact, err := loader.Load(loadCtx, cfg.Model.URI)
	cancelLoad()
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	predictor, err := services.NewPredictor(artifact, normalizer, services.PredictorOptions{
		Device:    device,
		MaxLength: cfg.Model.MaxLength,
		MaxItems:  cfg.Model.MaxItems,
	})
	if err != nil {
		log.Fatalf("create predictor: %v", err)
	}

	if cfg.Model.ValidateOnStartup {
		if err := predictor.SelfCheck(context.Background()); err != nil {
			log.Fatalf("startup validation: %v", err)
		}
		log.Info("startup validation passed")
	}

	healthSvc := services.NewHealthService(predictor, cfg.Model.StrictReadiness)

	// Feedback storage (Optional - based on config)
	var feedbackSvc *services.FeedbackService
	if cfg.Database.Enabled {
		pool, err := newPool(cfg.Database)
		if err != nil {
			log.Fatalf("connect feedback database: %v", err)
		}
		defer pool.Close()

		repo := postgres.NewFeedbackRepository(pool)
		if cfg.Database.AutoMigrate {
			if err := repo.EnsureSchema(context.Background()); err != nil {
				log.Fatalf("migrate feedback database: %v", err)
			}
		}
		feedbackSvc = services.NewFeedbackService(repo)
		log.Info("feedback storage initialized")
	} else {
		log.Info("feedback storage disabled")
	}

	h := handlers.New(predictor, healthSvc, feedbackSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())
	h.RegisterRoutes(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newPool(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
