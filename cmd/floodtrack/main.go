package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oancholarevelo/floodtrack/internal/adapter/geoapify"
	"github.com/oancholarevelo/floodtrack/internal/adapter/httpapi"
	kafkaadapter "github.com/oancholarevelo/floodtrack/internal/adapter/kafka"
	"github.com/oancholarevelo/floodtrack/internal/adapter/weatherapi"
	"github.com/oancholarevelo/floodtrack/internal/config"
	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/feed"
	"github.com/oancholarevelo/floodtrack/internal/observability"
	"github.com/oancholarevelo/floodtrack/internal/service"
	fsstore "github.com/oancholarevelo/floodtrack/internal/store/firestore"
	"github.com/oancholarevelo/floodtrack/internal/sweeper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := fsstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials, logger)
	if err != nil {
		logger.Error("failed to connect to firestore", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Reverse geocoding (feature-flagged via GEOAPIFY_ENABLED / GEOAPIFY_KEY).
	var geocoder domain.Geocoder
	if cfg.GeoapifyEnabled {
		client := geoapify.NewClient(cfg.GeoapifyKey, cfg.GeoapifyTimeout, logger, metrics)
		geocoder = geoapify.NewCachedGeocoder(client, cfg.GeoapifyCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("geoapify reverse geocoding enabled", "cache_size", cfg.GeoapifyCacheSize, "timeout", cfg.GeoapifyTimeout)
	} else {
		logger.Info("geoapify reverse geocoding disabled")
	}

	var weather httpapi.WeatherProvider
	if cfg.WeatherEnabled {
		weather = weatherapi.NewClient(cfg.WeatherKey, cfg.WeatherTimeout, logger)
		logger.Info("weather forecasts enabled")
	}

	var alerts service.AlertPublisher
	if cfg.AlertsEnabled {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		defer publisher.Close()
		alerts = publisher
		logger.Info("sos alert fan-out enabled", "topic", cfg.KafkaAlertTopic)
	}

	svc := service.New(store, geocoder, alerts, logger, metrics)

	feeds := httpapi.Feeds{
		Reports:     feed.NewCache(store.WatchFloodReports(ctx), domain.CollectionFloodReports, logger, metrics),
		SafeAreas:   feed.NewCache(store.WatchSafeAreas(ctx), domain.CollectionSafeAreas, logger, metrics),
		AidRequests: feed.NewCache(store.WatchAidPosts(ctx, domain.CollectionAidRequests), domain.CollectionAidRequests, logger, metrics),
		AidOffers:   feed.NewCache(store.WatchAidPosts(ctx, domain.CollectionAidOffers), domain.CollectionAidOffers, logger, metrics),
	}

	sw := sweeper.New(store, logger, metrics, nil, cfg.SweepInterval)

	auth := httpapi.NewAdminAuth(cfg.AdminPassword, cfg.JWTSecret, cfg.JWTTTL)
	srv := httpapi.NewServer(cfg.HTTPAddr, svc, feeds, weather, auth, sw, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start stale-content sweeper.
	go func() {
		if err := sw.Run(ctx); err != nil {
			logger.Error("sweeper error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	feeds.Reports.Close()
	feeds.SafeAreas.Close()
	feeds.AidRequests.Close()
	feeds.AidOffers.Close()

	logger.Info("shutdown complete")
}
