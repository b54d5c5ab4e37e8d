package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/api"
	"github.com/andresuchdata/supplychain-brain/internal/cache"
	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/drive"
	"github.com/andresuchdata/supplychain-brain/internal/llm"
	"github.com/andresuchdata/supplychain-brain/internal/repository/postgres"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/andresuchdata/supplychain-brain/internal/storage"
	"github.com/andresuchdata/supplychain-brain/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger.Configure(cfg.Server.Mode, cfg.Server.LogFormat)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analytics cache unavailable, continuing without it")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	var opts []service.DatasetOption

	if cfg.Storage.Enabled {
		objects, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to configure object storage")
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage bucket check failed")
		}
		opts = append(opts, service.WithObjectStorage(objects))
	}

	if cfg.Drive.Enabled {
		driveService, err := drive.NewServiceFromConfig(ctx, cfg.Drive)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to configure Google Drive")
		}
		opts = append(opts, service.WithDrive(driveService))
	}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		repo := postgres.NewDatasetRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to migrate dataset library")
		}
		opts = append(opts, service.WithLibrary(repo))
	}

	client := llm.New(cfg.LLM)
	logger.Log.Info().Str("provider", client.Name()).Msg("LLM client configured")

	sessions := session.NewStore(cfg.Session.MaxChatTurns)
	janitor, err := sessions.StartJanitor(cfg.Session.JanitorSpec, cfg.Session.IdleTTL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to start session janitor")
	}

	chat := service.NewChatService(client, cfg.Session.ChatTimeout)

	services := &api.Services{
		Sessions:    sessions,
		Datasets:    service.NewDatasetService(cfg.App.DataDir, cfg.App.DefaultDataset, opts...),
		Analytics:   service.NewAnalyticsService(analyticsCache),
		Planning:    service.NewPlanningService(cfg.Session),
		Chat:        chat,
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(services, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		<-janitor.Stop().Done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		chat.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}

	logger.Log.Info().Msg("Server exiting")
}
