package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/config"
	"github.com/bondastefana/farm-management-app/internal/domain/suitability"
	"github.com/bondastefana/farm-management-app/internal/metrics"
	"github.com/bondastefana/farm-management-app/internal/repository/mongodb"
	"github.com/bondastefana/farm-management-app/internal/repository/sheets"
	"github.com/bondastefana/farm-management-app/internal/scheduler"
	"github.com/bondastefana/farm-management-app/internal/server/handlers"
	"github.com/bondastefana/farm-management-app/internal/server/router"
	feedsvc "github.com/bondastefana/farm-management-app/internal/service/feed"
	locationsvc "github.com/bondastefana/farm-management-app/internal/service/location"
	reportingsvc "github.com/bondastefana/farm-management-app/internal/service/reporting"
	soilsvc "github.com/bondastefana/farm-management-app/internal/service/soil"
	"github.com/bondastefana/farm-management-app/pkg/clients/geodata"
	"github.com/bondastefana/farm-management-app/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	appMetrics, err := metrics.New()
	if err != nil {
		baseLogger.Fatal("failed to init metrics", zap.Error(err))
	}

	catalog := suitability.DefaultCatalog()
	if cfg.Agronomy.CropCatalogPath != "" {
		catalog, err = suitability.LoadCatalog(cfg.Agronomy.CropCatalogPath)
		if err != nil {
			baseLogger.Fatal("failed to load crop catalog", zap.String("path", cfg.Agronomy.CropCatalogPath), zap.Error(err))
		}
	}
	baseLogger.Info("crop catalog loaded", zap.Int("crops", len(catalog)))

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, balance export disabled")
	}

	geoClient := geodata.NewClient(cfg.GeoData, baseLogger.Named("client.geodata"))

	locationSvc := locationsvc.NewService(mongoRepo, geoClient, catalog, cfg.Agronomy.RecommendationCacheTTL, appMetrics, baseLogger.Named("svc.location"))
	soilSvc := soilsvc.NewService(mongoRepo, locationSvc, baseLogger.Named("svc.soil"))
	feedSvc := feedsvc.NewService(mongoRepo, baseLogger.Named("svc.feed"))
	reportingSvc := reportingsvc.NewService(feedSvc, mongoRepo, sheetsRepo, appMetrics, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Soil:       handlers.NewSoilHandler(soilSvc, baseLogger.Named("handlers.soil")),
		Conditions: handlers.NewConditionsHandler(locationSvc, baseLogger.Named("handlers.conditions")),
		Feed:       handlers.NewFeedHandler(feedSvc, reportingSvc, baseLogger.Named("handlers.feed")),
	}, appMetrics.Handler(), baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, locationSvc, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.GeoData.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
