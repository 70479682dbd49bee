package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"advisory-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneCallBody = `{"current":{"temp":31.2,"humidity":60,"wind_speed":5,"uvi":7,
"weather":[{"main":"Clear","description":"clear sky"}],"rain":{"1h":2.5}}}`

func weatherConfig(baseURL string) config.WeatherConfig {
	return config.WeatherConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Lat:             "30.9",
		Lon:             "75.85",
		Location:        "Ludhiana, Punjab",
		BreakerFailures: 2,
		BreakerOpenFor:  time.Minute,
	}
}

// ============================================================================
// WEATHER
// ============================================================================

func TestWeatherService_NoKeyServesStatic(t *testing.T) {
	svc := NewWeatherService(config.WeatherConfig{}, nil)

	current := svc.CurrentWeather(context.Background())
	assert.Equal(t, staticWeather, current)
}

func TestWeatherService_LiveReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/onecall", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "30.9", r.URL.Query().Get("lat"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(oneCallBody))
	}))
	defer server.Close()

	svc := NewWeatherService(weatherConfig(server.URL), server.Client())
	current := svc.CurrentWeather(context.Background())

	assert.Equal(t, WeatherSourceLive, current.Source)
	assert.Equal(t, "Ludhiana, Punjab", current.Location)
	assert.Equal(t, 31.2, current.Temperature)
	assert.Equal(t, 60.0, current.Humidity)
	assert.InDelta(t, 18.0, current.WindSpeed, 1e-9)
	assert.Equal(t, "Clear", current.Condition)
	assert.Equal(t, 2.5, current.Rainfall)
	assert.Equal(t, 7.0, current.UVIndex)
}

func TestWeatherService_UpstreamErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	current := NewWeatherService(weatherConfig(server.URL), server.Client()).CurrentWeather(context.Background())
	assert.Equal(t, WeatherSourceStatic, current.Source)
	assert.Equal(t, "Ludhiana, Punjab", current.Location)
	assert.Equal(t, 28.0, current.Temperature)
}

func TestWeatherService_BreakerStopsCallingUpstream(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewWeatherService(weatherConfig(server.URL), server.Client())
	for range 5 {
		current := svc.CurrentWeather(context.Background())
		require.Equal(t, WeatherSourceStatic, current.Source)
	}

	assert.Equal(t, int32(2), hits.Load(), "the breaker opens after two consecutive failures")
}
