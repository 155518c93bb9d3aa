package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pandorascan/weather-scanner/internal/lifecycle"
	"github.com/pandorascan/weather-scanner/internal/service"
)

// maxKeyLength bounds location and character keys taken from the URL path.
const maxKeyLength = 64

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weather *service.WeatherService
	pages   *PageRenderer
	logger  *zap.Logger
	// cachePing, when set, is called by the health handler to check cache
	// reachability. Set for memcached and redis backends.
	cachePing func() error
	startTime time.Time
}

// NewHandler returns a new Handler. cachePing may be nil for the in-memory backend.
func NewHandler(weather *service.WeatherService, pages *PageRenderer, logger *zap.Logger, cachePing func() error) *Handler {
	return &Handler{
		weather:   weather,
		pages:     pages,
		logger:    logger,
		cachePing: cachePing,
		startTime: time.Now(),
	}
}

// GetWeather handles GET /get_weather/{location}. Response shapes:
// 200 with the weather report, 404 for unknown keys, 500 when the upstream
// is unavailable (including the location's display name).
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["location"]

	result, err := h.weather.GetWeather(r.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrUnknownLocation) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":   "Invalid location",
				"message": fmt.Sprintf("Location '%s' not found", key),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":    "Weather service unavailable",
			"message":  "Failed to fetch weather data. Please try again later.",
			"location": h.weather.LocationName(key),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	if lifecycle.IsShuttingDown() {
		status = "shutting-down"
		statusCode = http.StatusServiceUnavailable
	}

	checks := make(map[string]string)
	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
			if status == "healthy" {
				status = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}
	}

	resp := map[string]interface{}{
		"status":    status,
		"service":   "pandora-weather-scanner",
		"version":   "dev",
		"uptime":    time.Since(h.startTime).Truncate(time.Second).String(),
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
