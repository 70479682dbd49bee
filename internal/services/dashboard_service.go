package services

import (
	"context"
	"log"
	"math"
	"slices"
	"time"

	"advisory-service/internal/models"
	"advisory-service/internal/repository"
)

const (
	DefaultForecastDays = 7
	maxForecastDays     = 14
)

var dashboardCrops = []models.DashboardCrop{
	{Crop: "Rice", Suitability: 95, Season: "Kharif", Status: "Optimal"},
	{Crop: "Cotton", Suitability: 85, Season: "Kharif", Status: "Good"},
	{Crop: "Wheat", Suitability: 70, Season: "Rabi", Status: "Moderate"},
}

var soilChart = []models.ChartPoint{
	{Label: "Nitrogen", Value: 75},
	{Label: "Phosphorus", Value: 60},
	{Label: "Potassium", Value: 80},
	{Label: "pH", Value: 6.5},
	{Label: "Organic Matter", Value: 3.2},
}

var yieldChart = []models.YieldPoint{
	{Month: "Jan", Actual: 100, Predicted: 105},
	{Month: "Feb", Actual: 120, Predicted: 115},
	{Month: "Mar", Actual: 110, Predicted: 125},
	{Month: "Apr", Actual: 130, Predicted: 135},
	{Month: "May", Actual: 140, Predicted: 145},
	{Month: "Jun", Actual: 150, Predicted: 155},
}

// forecastSwing is added to the current reading day by day; it repeats after a week.
var forecastSwing = []struct{ temp, rainFactor, humidity float64 }{
	{0, 1, 0},
	{1.5, 0.6, -3},
	{-1, 1.8, 6},
	{2, 0.4, -5},
	{0.5, 1.2, 2},
	{-1.5, 2.2, 8},
	{1, 0.8, -2},
}

type IDashboardService interface {
	GetDashboard(ctx context.Context, forecastDays int) (*models.Dashboard, error)
}

type DashboardService struct {
	weather IWeatherService
	content repository.ContentRepository
	now     func() time.Time
}

func NewDashboardService(weather IWeatherService, content repository.ContentRepository) IDashboardService {
	return &DashboardService{weather: weather, content: content, now: time.Now}
}

func (s *DashboardService) GetDashboard(ctx context.Context, forecastDays int) (*models.Dashboard, error) {
	if forecastDays <= 0 {
		forecastDays = DefaultForecastDays
	}
	if forecastDays > maxForecastDays {
		return nil, models.NewInvalidInput("days", "forecast covers at most 14 days")
	}

	current := s.weather.CurrentWeather(ctx)

	alerts, err := s.content.GetAlerts(ctx)
	if err != nil {
		log.Printf("failed to load alerts, using defaults: %v", err)
		alerts = slices.Clone(repository.DefaultAlerts)
	}
	tasks, err := s.content.GetTasks(ctx)
	if err != nil {
		log.Printf("failed to load tasks, using defaults: %v", err)
		tasks = slices.Clone(repository.DefaultTasks)
	}

	crops := make([]models.DashboardCrop, 0, len(dashboardCrops))
	for _, crop := range dashboardCrops {
		crop.Tone = models.SuitabilityTone(crop.Suitability, 70)
		crops = append(crops, crop)
	}

	return &models.Dashboard{
		Weather:             current,
		CropRecommendations: crops,
		Alerts:              alerts,
		Tasks:               tasks,
		Stats: models.QuickStats{
			ActiveCrops: len(crops),
			SoilHealth:  "85%",
			Alerts:      len(alerts),
		},
		Forecast:   Forecast(current, s.now(), forecastDays),
		SoilChart:  slices.Clone(soilChart),
		YieldChart: slices.Clone(yieldChart),
	}, nil
}

// Forecast derives a deterministic outlook from the current reading.
func Forecast(current models.CurrentWeather, start time.Time, days int) []models.ForecastDay {
	forecast := make([]models.ForecastDay, 0, days)
	for i := range days {
		swing := forecastSwing[i%len(forecastSwing)]
		forecast = append(forecast, models.ForecastDay{
			Date:        start.AddDate(0, 0, i).Format("2006-01-02"),
			Temperature: round1(current.Temperature + swing.temp),
			Rainfall:    round1(current.Rainfall * swing.rainFactor),
			Humidity:    round1(math.Min(100, math.Max(0, current.Humidity+swing.humidity))),
		})
	}
	return forecast
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
