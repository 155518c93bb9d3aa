package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pandorascan/weather-scanner/internal/cache"
	"github.com/pandorascan/weather-scanner/internal/client"
	"github.com/pandorascan/weather-scanner/internal/config"
	httphandler "github.com/pandorascan/weather-scanner/internal/http"
	"github.com/pandorascan/weather-scanner/internal/lifecycle"
	"github.com/pandorascan/weather-scanner/internal/observability"
	"github.com/pandorascan/weather-scanner/internal/registry"
	"github.com/pandorascan/weather-scanner/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		logger.Fatal("registry", zap.Error(err))
	}
	logger.Info("registry loaded", zap.Strings("locations", reg.Keys()))

	forecastClient, err := client.NewOpenMeteoClient(cfg.ForecastAPIURL, cfg.ForecastAPITimeout)
	if err != nil {
		logger.Fatal("forecast client", zap.Error(err))
	}

	var cacheSvc cache.Cache
	var cachePing func() error
	var cacheCloser interface{ Close() error }
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		cacheSvc = mc
		cachePing = mc.Ping
		cacheCloser = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	case "redis":
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis cache", zap.Error(err))
		}
		cacheSvc = rc
		cachePing = rc.Ping
		cacheCloser = rc
		logger.Info("cache backend: redis", zap.String("addr", cfg.RedisAddr))
	default:
		cacheSvc = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory", zap.Duration("ttl", cfg.CacheTTL))
	}

	weatherService := service.NewWeatherService(reg, forecastClient, cacheSvc, cfg.CacheTTL)
	observability.SetTrackedLocations(reg.Keys())

	if cfg.WarmCache {
		warmer := cache.NewCacheWarmer(weatherService, logger)
		warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := warmer.Warm(warmCtx, reg.Keys()); err != nil {
			logger.Warn("cache warming failed", zap.Error(err))
		}
		warmCancel()
		if cfg.WarmInterval > 0 {
			go func() {
				if err := warmer.WarmPeriodic(context.Background(), reg.Keys(), cfg.WarmInterval); err != nil && err != context.Canceled {
					logger.Error("periodic cache warming stopped", zap.Error(err))
				}
			}()
		}
	}

	pages, err := httphandler.NewPageRenderer(reg, logger)
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	handler := httphandler.NewHandler(weatherService, pages, logger, cachePing)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.RecoveryMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/", pages.Home).Methods("GET")
	router.HandleFunc("/wiki", pages.Wiki).Methods("GET")
	router.HandleFunc("/map", pages.Map).Methods("GET")
	router.HandleFunc("/character/{name}", pages.Character).Methods("GET")
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	weatherRouter := router.PathPrefix("/get_weather").Subrouter()
	weatherRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	weatherRouter.HandleFunc("/{location}", handler.GetWeather).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if cacheCloser != nil {
		if err := cacheCloser.Close(); err != nil {
			logger.Error("cache close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
