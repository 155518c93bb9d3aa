//go:build integration
// +build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pandorascan/weather-scanner/internal/models"
)

// TestMemcachedCache_GetSet_Integration verifies that MemcachedCache stores
// and retrieves reports when a memcached server is available.
func TestMemcachedCache_GetSet_Integration(t *testing.T) {
	c, err := NewMemcachedCache("localhost:11211", 500*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("NewMemcachedCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	val := models.WeatherReport{Location: "Hallelujah Mountains", Temp: 21.4}
	if err := c.Set(ctx, "hallelujah_mountains", val, time.Minute); err != nil {
		t.Skipf("Set failed (memcached may not be running): %v", err)
	}

	got, ok, err := c.Get(ctx, "hallelujah_mountains")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.Location != val.Location || got.Temp != val.Temp {
		t.Errorf("Get() = %+v, want %+v", got, val)
	}
}

// TestRedisCache_GetSet_Integration verifies that RedisCache stores and
// retrieves reports, and that an unknown key is a miss, when a redis server
// is available.
func TestRedisCache_GetSet_Integration(t *testing.T) {
	c, err := NewRedisCache("localhost:6379", "", 0)
	if err != nil {
		t.Skipf("NewRedisCache() error (redis may not be running): %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	val := models.WeatherReport{Location: "Eastern Sea", Temp: 27.9}
	if err := c.Set(ctx, "eastern_sea", val, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, "eastern_sea")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.Location != val.Location || got.Temp != val.Temp {
		t.Errorf("Get() = %+v, want %+v", got, val)
	}

	_, ok, err = c.Get(ctx, "no_such_location")
	if err != nil {
		t.Fatalf("Get(miss) error = %v", err)
	}
	if ok {
		t.Error("Get(miss) ok = true, want false")
	}
}
