package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pandorascan/weather-scanner/internal/cache"
	"github.com/pandorascan/weather-scanner/internal/client"
	"github.com/pandorascan/weather-scanner/internal/models"
	"github.com/pandorascan/weather-scanner/internal/observability"
	"github.com/pandorascan/weather-scanner/internal/registry"
)

// ErrUnknownLocation is returned when a key is not in the static registry.
// Handlers map it to 404.
var ErrUnknownLocation = errors.New("unknown location")

// WeatherService runs the weather pipeline for one location key:
// validate against the registry, check the cache, fetch the forecast,
// transform, cache, respond.
type WeatherService struct {
	registry *registry.Registry
	client   client.ForecastClient
	cache    cache.Cache
	ttl      time.Duration
}

// NewWeatherService creates a WeatherService. ttl is the cache validity
// window for weather reports.
func NewWeatherService(reg *registry.Registry, forecast client.ForecastClient, c cache.Cache, ttl time.Duration) *WeatherService {
	return &WeatherService{
		registry: reg,
		client:   forecast,
		cache:    c,
		ttl:      ttl,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetWeather returns the weather report for a location key. Unknown keys fail
// with ErrUnknownLocation before any cache or upstream activity. On a cache
// hit within the TTL the stored report is returned without touching the
// upstream; on a miss the forecast is fetched, transformed, cached, and
// returned. Upstream failures are logged distinctly per cause and wrapped.
func (s *WeatherService) GetWeather(ctx context.Context, key string) (models.WeatherReport, error) {
	key = normalizeKey(key)
	logger := loggerFromContext(ctx)

	loc, ok := s.registry.Location(key)
	if !ok {
		if logger != nil {
			logger.Warn("invalid location key requested", zap.String("location", key))
		}
		return models.WeatherReport{}, fmt.Errorf("%w: %s", ErrUnknownLocation, key)
	}

	observability.RecordWeatherQuery(key)
	if logger != nil {
		logger.Info("processing weather request", zap.String("location", loc.Name))
	}

	cached, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get", categorizeCacheError(err)).Inc()
		if logger != nil {
			logger.Warn("cache get failed", zap.String("location", key), zap.Error(err))
		}
	} else if hit {
		observability.CacheHitsTotal.WithLabelValues("weather").Inc()
		if logger != nil {
			logger.Info("returning cached weather data", zap.String("location", key))
		}
		return cached, nil
	}

	forecast, err := s.client.GetForecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		s.logUpstreamFailure(logger, loc, err)
		return models.WeatherReport{}, fmt.Errorf("fetch weather for %s: %w", key, err)
	}

	report := buildReport(loc, forecast)

	if setErr := s.cache.Set(ctx, key, report, s.ttl); setErr != nil {
		observability.CacheErrorsTotal.WithLabelValues("set", categorizeCacheError(setErr)).Inc()
		if logger != nil {
			logger.Warn("cache set failed", zap.String("location", key), zap.Error(setErr))
		}
	} else if logger != nil {
		logger.Info("cached weather data", zap.String("location", key))
	}

	return report, nil
}

// LocationName returns the display name for a location key, or the key itself
// when unknown. Used by handlers to build error responses.
func (s *WeatherService) LocationName(key string) string {
	if loc, ok := s.registry.Location(normalizeKey(key)); ok {
		return loc.Name
	}
	return key
}

// logUpstreamFailure logs each upstream failure cause distinctly. All causes
// collapse into the same client-visible error.
func (s *WeatherService) logUpstreamFailure(logger *zap.Logger, loc registry.Location, err error) {
	if logger == nil {
		return
	}
	fields := []zap.Field{
		zap.Float64("lat", loc.Lat),
		zap.Float64("lon", loc.Lon),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, client.ErrUpstreamTimeout):
		logger.Error("forecast API request timed out", fields...)
	case errors.Is(err, client.ErrMalformedResponse):
		logger.Error("failed to parse forecast API response", fields...)
	default:
		logger.Error("forecast API request failed", fields...)
	}
}

// buildReport merges the forecast with the location's static fields. Humidity
// and pressure come from the first hourly sample when the series is
// non-empty; pressure is rounded to 2 decimals.
func buildReport(loc registry.Location, f models.Forecast) models.WeatherReport {
	report := models.WeatherReport{
		Location:      loc.Name,
		Temp:          f.CurrentWeather.Temperature,
		Wind:          f.CurrentWeather.WindSpeed,
		WindDirection: f.CurrentWeather.WindDirection,
		WeatherCode:   f.CurrentWeather.WeatherCode,
		Image:         loc.Image,
		Status:        loc.Status,
		StatusColor:   loc.StatusColor,
	}
	if len(f.Hourly.RelativeHumidity) > 0 {
		h := f.Hourly.RelativeHumidity[0]
		report.Humidity = &h
	}
	if len(f.Hourly.PressureMSL) > 0 {
		p := math.Round(f.Hourly.PressureMSL[0]*100) / 100
		report.Pressure = &p
	}
	return report
}

// categorizeCacheError returns a stable label for cache error metrics
// (timeout, connection, unknown).
func categorizeCacheError(err error) string {
	if err == nil {
		return "unknown"
	}
	errStr := err.Error()
	if strings.Contains(errStr, "timeout") {
		return "timeout"
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") {
		return "connection"
	}
	return "unknown"
}

// normalizeKey normalizes location keys by trimming whitespace and converting
// to lowercase. Ensures consistent registry and cache keys regardless of
// input format.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
