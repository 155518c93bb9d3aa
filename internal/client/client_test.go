package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const forecastBody = `{
	"latitude": 29.13,
	"longitude": 110.48,
	"current_weather": {
		"temperature": 21.4,
		"windspeed": 14.2,
		"winddirection": 230,
		"weathercode": 3
	},
	"hourly": {
		"relativehumidity_2m": [81, 80, 78],
		"pressure_msl": [1012.3456, 1012.1]
	}
}`

// TestOpenMeteoClient_GetForecast_Success verifies that a well-formed response
// is parsed into current weather and hourly series, and that the request
// carries the expected query parameters.
func TestOpenMeteoClient_GetForecast_Success(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"latitude":        q.Get("latitude"),
			"longitude":       q.Get("longitude"),
			"current_weather": q.Get("current_weather"),
			"hourly":          q.Get("hourly"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	c, err := NewOpenMeteoClient(server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewOpenMeteoClient() error = %v", err)
	}

	forecast, err := c.GetForecast(context.Background(), 29.13, 110.48)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	if gotQuery["latitude"] != "29.13" || gotQuery["longitude"] != "110.48" {
		t.Errorf("coords query = %v, want latitude=29.13 longitude=110.48", gotQuery)
	}
	if gotQuery["current_weather"] != "true" {
		t.Errorf("current_weather = %q, want true", gotQuery["current_weather"])
	}
	if gotQuery["hourly"] != "relativehumidity_2m,pressure_msl" {
		t.Errorf("hourly = %q, want relativehumidity_2m,pressure_msl", gotQuery["hourly"])
	}

	cw := forecast.CurrentWeather
	if cw.Temperature != 21.4 || cw.WindSpeed != 14.2 || cw.WindDirection != 230 || cw.WeatherCode != 3 {
		t.Errorf("CurrentWeather = %+v, want temp=21.4 wind=14.2 dir=230 code=3", cw)
	}
	if len(forecast.Hourly.RelativeHumidity) != 3 || forecast.Hourly.RelativeHumidity[0] != 81 {
		t.Errorf("RelativeHumidity = %v, want first sample 81", forecast.Hourly.RelativeHumidity)
	}
	if len(forecast.Hourly.PressureMSL) != 2 || forecast.Hourly.PressureMSL[0] != 1012.3456 {
		t.Errorf("PressureMSL = %v, want first sample 1012.3456", forecast.Hourly.PressureMSL)
	}
}

// TestOpenMeteoClient_GetForecast_MissingHourly verifies that a response
// without the hourly block parses with empty series rather than failing.
func TestOpenMeteoClient_GetForecast_MissingHourly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current_weather": {"temperature": 5}}`))
	}))
	defer server.Close()

	c, _ := NewOpenMeteoClient(server.URL, 2*time.Second)
	forecast, err := c.GetForecast(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if len(forecast.Hourly.RelativeHumidity) != 0 || len(forecast.Hourly.PressureMSL) != 0 {
		t.Errorf("Hourly = %+v, want empty series", forecast.Hourly)
	}
}

// TestOpenMeteoClient_GetForecast_Timeout verifies that a slow upstream
// surfaces as ErrUpstreamTimeout.
func TestOpenMeteoClient_GetForecast_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c, _ := NewOpenMeteoClient(server.URL, 50*time.Millisecond)
	_, err := c.GetForecast(context.Background(), 1, 2)
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Errorf("GetForecast() error = %v, want ErrUpstreamTimeout", err)
	}
}

// TestOpenMeteoClient_GetForecast_ServerError verifies that non-2xx responses
// surface as ErrUpstreamFailure.
func TestOpenMeteoClient_GetForecast_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, _ := NewOpenMeteoClient(server.URL, 2*time.Second)
	_, err := c.GetForecast(context.Background(), 1, 2)
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Errorf("GetForecast() error = %v, want ErrUpstreamFailure", err)
	}
}

// TestOpenMeteoClient_GetForecast_TransportError verifies that a connection
// failure surfaces as ErrUpstreamFailure.
func TestOpenMeteoClient_GetForecast_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	c, _ := NewOpenMeteoClient(server.URL, 2*time.Second)
	_, err := c.GetForecast(context.Background(), 1, 2)
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Errorf("GetForecast() error = %v, want ErrUpstreamFailure", err)
	}
}

// TestOpenMeteoClient_GetForecast_MalformedJSON verifies that an invalid body
// surfaces as ErrMalformedResponse.
func TestOpenMeteoClient_GetForecast_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	c, _ := NewOpenMeteoClient(server.URL, 2*time.Second)
	_, err := c.GetForecast(context.Background(), 1, 2)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("GetForecast() error = %v, want ErrMalformedResponse", err)
	}
}

// TestOpenMeteoClient_GetForecast_CorrelationID verifies that a correlation ID
// from the request context is forwarded as a header.
func TestOpenMeteoClient_GetForecast_CorrelationID(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Correlation-ID")
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	c, _ := NewOpenMeteoClient(server.URL, 2*time.Second)
	ctx := context.WithValue(context.Background(), "correlation_id", "corr-123")
	if _, err := c.GetForecast(ctx, 1, 2); err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if gotHeader != "corr-123" {
		t.Errorf("X-Correlation-ID = %q, want corr-123", gotHeader)
	}
}

// TestNewOpenMeteoClient_EmptyURL verifies that an empty URL is rejected.
func TestNewOpenMeteoClient_EmptyURL(t *testing.T) {
	if _, err := NewOpenMeteoClient("", time.Second); err == nil {
		t.Error("NewOpenMeteoClient(\"\") error = nil, want error")
	}
}

// TestStatusLabel verifies the metric status label mapping.
func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{204, "success"},
		{404, "client_error"},
		{429, "client_error"},
		{500, "server_error"},
		{302, "error"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.code); got != tt.want {
			t.Errorf("statusLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
