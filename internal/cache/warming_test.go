package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pandorascan/weather-scanner/internal/models"
)

type mockFetcher struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
}

func (m *mockFetcher) GetWeather(ctx context.Context, key string) (models.WeatherReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, key)
	if err, ok := m.failFor[key]; ok {
		return models.WeatherReport{}, err
	}
	return models.WeatherReport{Location: key}, nil
}

// TestCacheWarmer_Warm verifies that every key is fetched once and no error
// is returned when all fetches succeed.
func TestCacheWarmer_Warm(t *testing.T) {
	fetcher := &mockFetcher{}
	warmer := NewCacheWarmer(fetcher, zap.NewNop())

	keys := []string{"hallelujah_mountains", "eastern_sea"}
	if err := warmer.Warm(context.Background(), keys); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}

	if len(fetcher.calls) != len(keys) {
		t.Errorf("fetch calls = %d, want %d", len(fetcher.calls), len(keys))
	}
}

// TestCacheWarmer_Warm_PartialFailure verifies that failures are aggregated
// into the returned error while other keys still warm.
func TestCacheWarmer_Warm_PartialFailure(t *testing.T) {
	fetcher := &mockFetcher{failFor: map[string]error{
		"eastern_sea": errors.New("upstream down"),
	}}
	warmer := NewCacheWarmer(fetcher, zap.NewNop())

	err := warmer.Warm(context.Background(), []string{"hallelujah_mountains", "eastern_sea"})
	if err == nil {
		t.Fatal("Warm() error = nil, want aggregated error")
	}
	if len(fetcher.calls) != 2 {
		t.Errorf("fetch calls = %d, want 2 (failure must not stop other keys)", len(fetcher.calls))
	}
}

// TestCacheWarmer_WarmPeriodic_StopsOnCancel verifies that WarmPeriodic
// returns once the context is cancelled.
func TestCacheWarmer_WarmPeriodic_StopsOnCancel(t *testing.T) {
	fetcher := &mockFetcher{}
	warmer := NewCacheWarmer(fetcher, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- warmer.WarmPeriodic(ctx, []string{"eastern_sea"}, 10*time.Millisecond)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WarmPeriodic() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WarmPeriodic did not stop after cancel")
	}
}
