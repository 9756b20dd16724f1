package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	httpapi "github.com/steppet/steppet-engine/internal/api/http"
	"github.com/steppet/steppet-engine/internal/config"
	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/provider/healthgw"
	"github.com/steppet/steppet-engine/internal/render"
	"github.com/steppet/steppet-engine/internal/repository/postgres"
	"github.com/steppet/steppet-engine/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	clock := model.SystemClock{}

	profileRepo := postgres.NewProfileRepository(db)
	profile, err := bootstrapProfile(ctx, profileRepo, clock, logger)
	if err != nil {
		logger.Fatal("failed to bootstrap profile", "error", err)
	}

	progressRepo := postgres.NewProgressRepository(db)
	progressService, err := service.NewProgress(ctx, progressRepo, profile, clock, logger)
	if err != nil {
		logger.Fatal("failed to initialize progress", "error", err)
	}

	entitlementRepo := postgres.NewEntitlementRepository(db)
	entitlementService, err := service.NewEntitlement(ctx, entitlementRepo, profile, clock, logger)
	if err != nil {
		logger.Fatal("failed to initialize entitlements", "error", err)
	}

	provider := healthgw.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout, logger.WithComponent("healthgw"))
	cache := service.NewStepCache(provider, clock, cfg.Cache.TTL, logger.WithComponent("stepcache"))
	bus := render.NewBus()

	syncer := service.NewSyncer(service.SyncerParams{
		Cache:         cache,
		Progress:      progressService,
		Entitlement:   entitlementService,
		Provider:      provider,
		Bus:           bus,
		Clock:         clock,
		PollInterval:  cfg.Sync.PollInterval,
		Baseline:      profile.CreatedAt,
		Frames:        cfg.Animation.Frames,
		FrameInterval: cfg.Animation.FrameInterval,
		Logger:        logger.WithComponent("syncer"),
	})

	handler := httpapi.NewHandler(syncer, progressService, entitlementService, profileRepo, profile.ID, bus, logger.WithComponent("http"))
	server := httpapi.NewServer(fmt.Sprintf(":%s", cfg.HTTP.Port), httpapi.NewRouter(handler), logger)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		syncer.Run(ctx)
	}()

	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", server.Address())
		if err := server.Start(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", server.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// bootstrapProfile loads the single profile, creating a default one on first
// run. The creation instant is the baseline all cumulative totals count from.
func bootstrapProfile(ctx context.Context, store model.ProfileStore, clock model.Clock, logger *logger.Logger) (model.UserProfile, error) {
	profile, err := store.Load(ctx)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.UserProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	profile = model.UserProfile{
		ID:           uuid.New(),
		Gender:       model.GenderUnspecified,
		StarterStyle: model.StarterStyleSunny,
		CreatedAt:    clock.Now(),
	}
	saved, err := store.Create(ctx, profile)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to create profile: %w", err)
	}

	logger.Info("created profile", "id", saved.ID, "baseline", saved.CreatedAt)
	return saved, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
