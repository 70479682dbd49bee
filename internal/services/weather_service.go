package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"advisory-service/internal/config"
	"advisory-service/internal/metrics"
	"advisory-service/internal/models"

	"github.com/sony/gobreaker"
)

const (
	WeatherSourceStatic = "static"
	WeatherSourceLive   = "live"
)

// staticWeather is shown whenever live weather is unavailable.
var staticWeather = models.CurrentWeather{
	Location:    "Punjab, India",
	Temperature: 28,
	Humidity:    75,
	WindSpeed:   12,
	Condition:   "Partly Cloudy",
	Rainfall:    15,
	UVIndex:     6,
	Source:      WeatherSourceStatic,
}

type IWeatherService interface {
	// CurrentWeather never fails: on any upstream problem it returns the static reading.
	CurrentWeather(ctx context.Context) models.CurrentWeather
}

type WeatherService struct {
	cfg     config.WeatherConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewWeatherService(cfg config.WeatherConfig, client *http.Client) IWeatherService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeatherService{
		cfg:     cfg,
		client:  client,
		breaker: newBreaker("openweather", cfg.BreakerFailures, cfg.BreakerOpenFor),
	}
}

func newBreaker(name string, fails int, openFor time.Duration) *gobreaker.CircuitBreaker {
	if fails < 1 {
		fails = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

func (w *WeatherService) CurrentWeather(ctx context.Context) models.CurrentWeather {
	fallback := staticWeather
	if w.cfg.Location != "" {
		fallback.Location = w.cfg.Location
	}
	if w.cfg.APIKey == "" {
		return fallback
	}

	result, err := w.breaker.Execute(func() (any, error) {
		return w.fetchCurrent(ctx)
	})
	if err != nil {
		log.Printf("live weather unavailable, serving static reading: %v", err)
		metrics.FallbacksUsed.WithLabelValues("openweather").Inc()
		return fallback
	}

	current := result.(models.CurrentWeather)
	current.Location = fallback.Location
	return current
}

type oneCallResponse struct {
	Current struct {
		Temp      float64 `json:"temp"`
		Humidity  float64 `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		UVI       float64 `json:"uvi"`
		Weather   []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Rain *struct {
			OneHour float64 `json:"1h"`
		} `json:"rain,omitempty"`
	} `json:"current"`
}

func (w *WeatherService) fetchCurrent(ctx context.Context) (models.CurrentWeather, error) {
	query := url.Values{}
	query.Set("lat", w.cfg.Lat)
	query.Set("lon", w.cfg.Lon)
	query.Set("exclude", "minutely,hourly,daily,alerts")
	query.Set("units", "metric")
	query.Set("appid", w.cfg.APIKey)
	endpoint := fmt.Sprintf("%s/onecall?%s", w.cfg.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.CurrentWeather{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return models.CurrentWeather{}, fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.CurrentWeather{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.CurrentWeather{}, fmt.Errorf("API 3rd party error: status %d", resp.StatusCode)
	}

	var payload oneCallResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.CurrentWeather{}, fmt.Errorf("failed to parse weather response: %w", err)
	}

	current := models.CurrentWeather{
		Temperature: payload.Current.Temp,
		Humidity:    payload.Current.Humidity,
		WindSpeed:   payload.Current.WindSpeed * 3.6, // m/s to km/h
		UVIndex:     payload.Current.UVI,
		Condition:   staticWeather.Condition,
		Source:      WeatherSourceLive,
	}
	if len(payload.Current.Weather) > 0 {
		current.Condition = payload.Current.Weather[0].Main
	}
	if payload.Current.Rain != nil {
		current.Rainfall = payload.Current.Rain.OneHour
	}
	return current, nil
}
