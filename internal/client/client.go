package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pandorascan/weather-scanner/internal/models"
	"github.com/pandorascan/weather-scanner/internal/observability"
)

// ForecastClient fetches a forecast for a coordinate pair.
type ForecastClient interface {
	GetForecast(ctx context.Context, lat, lon float64) (models.Forecast, error)
}

// Failure taxonomy for upstream calls. Callers log each cause distinctly but
// collapse all of them into the same client-visible error response.
var (
	ErrUpstreamTimeout   = errors.New("forecast request timed out")
	ErrUpstreamFailure   = errors.New("forecast upstream failure")
	ErrMalformedResponse = errors.New("malformed forecast response")
)

// OpenMeteoClient calls the Open-Meteo forecast endpoint. The API is keyless;
// requests carry latitude/longitude plus the current-weather and hourly
// humidity/pressure parameters. Each call is bounded by the configured
// timeout. No retries: a failed call is reported immediately.
type OpenMeteoClient struct {
	apiURL  string
	timeout time.Duration
	client  *http.Client
}

// NewOpenMeteoClient creates a client for the given forecast endpoint URL.
func NewOpenMeteoClient(apiURL string, timeout time.Duration) (*OpenMeteoClient, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, errors.New("forecast API URL is required")
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("invalid forecast API URL %q: %w", apiURL, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OpenMeteoClient{
		apiURL:  apiURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GetForecast fetches current weather and hourly humidity/pressure series for
// the coordinate pair. Returns one of the sentinel errors on failure.
func (c *OpenMeteoClient) GetForecast(ctx context.Context, lat, lon float64) (models.Forecast, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, lat, lon)
	if err != nil {
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		return models.Forecast{}, fmt.Errorf("%w: build request: %v", ErrUpstreamFailure, err)
	}

	corrID := extractCorrelationID(ctx)
	if corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.ForecastAPICallsTotal.WithLabelValues("error").Inc()
		observability.ForecastAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return models.Forecast{}, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return models.Forecast{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.ForecastAPICallsTotal.WithLabelValues(status).Inc()
	observability.ForecastAPIDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Forecast{}, fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("%w: read response body: %v", ErrUpstreamFailure, err)
	}

	var forecast models.Forecast
	if err := json.Unmarshal(body, &forecast); err != nil {
		return models.Forecast{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return forecast, nil
}

func (c *OpenMeteoClient) buildRequest(ctx context.Context, lat, lon float64) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("hourly", "relativehumidity_2m,pressure_msl")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// isClientTimeout reports whether a transport error was caused by a timeout
// (net.Error deadline or http.Client.Timeout).
func isClientTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
