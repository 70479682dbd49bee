package services

import (
	"slices"
	"time"

	"advisory-service/internal/models"
	"advisory-service/internal/utils"
)

var cropSuggestions = []models.CropSuggestion{
	{
		Crop:        "Rice",
		Suitability: 95,
		Season:      "Kharif",
		Yield:       "4-6 tons/hectare",
		Reasons:     []string{"Optimal pH range", "High humidity suitable", "Good water availability"},
	},
	{
		Crop:        "Wheat",
		Suitability: 78,
		Season:      "Rabi",
		Yield:       "3-4 tons/hectare",
		Reasons:     []string{"Moderate pH suitable", "Temperature range good", "Lower water requirement"},
	},
	{
		Crop:        "Cotton",
		Suitability: 85,
		Season:      "Kharif",
		Yield:       "2-3 tons/hectare",
		Reasons:     []string{"Soil type excellent", "Climate conditions favorable", "Market demand high"},
	},
}

// cropProfiles is the reference table for the rule-based recommender, in table order.
var cropProfiles = []struct {
	name    string
	profile models.CropProfile
}{
	{"Rice", models.CropProfile{Season: "Kharif", WaterRequirement: "High", SoilType: "Clay loam", Yield: "4-6 tons/ha"}},
	{"Wheat", models.CropProfile{Season: "Rabi", WaterRequirement: "Medium", SoilType: "Loam", Yield: "3-4 tons/ha"}},
	{"Maize", models.CropProfile{Season: "Kharif", WaterRequirement: "Medium", SoilType: "Sandy loam", Yield: "2.5-3.5 tons/ha"}},
	{"Cotton", models.CropProfile{Season: "Kharif", WaterRequirement: "Low", SoilType: "Black soil", Yield: "1.5-2.5 tons/ha"}},
	{"Sugarcane", models.CropProfile{Season: "Year-round", WaterRequirement: "Very High", SoilType: "Deep loam", Yield: "70-80 tons/ha"}},
}

var (
	recommenderSoilTypes = []string{"Clay loam", "Loam", "Sandy loam", "Black soil", "Deep loam", "Red soil"}
	recommenderSeasons   = []string{"Kharif", "Rabi", "Zaid", "Year-round"}
	waterLevels          = []string{"Low", "Medium", "High"}
	loamFamily           = []string{"Loam", "Clay loam"}
)

const maxRecommendations = 3

type ICropService interface {
	ViewFlow() ViewFlow[models.CropSuggestionRequest, models.CropSuggestionResult]
	Recommend(req models.CropRecommendationRequest) ([]models.CropRecommendation, error)
	Options() models.CropOptions
}

type CropService struct {
	analysisDelay time.Duration
}

func NewCropService(analysisDelay time.Duration) ICropService {
	return &CropService{analysisDelay: analysisDelay}
}

func (s *CropService) ViewFlow() ViewFlow[models.CropSuggestionRequest, models.CropSuggestionResult] {
	return ViewFlow[models.CropSuggestionRequest, models.CropSuggestionResult]{
		Page:    PageCropSuggestion,
		Delay:   s.analysisDelay,
		Prepare: PrepareCropSuggestion,
		Compute: SuggestCrops,
		Summarize: func(result models.CropSuggestionResult) map[string]any {
			crops := make([]string, 0, len(result.Suggestions))
			for _, suggestion := range result.Suggestions {
				crops = append(crops, suggestion.Crop)
			}
			return map[string]any{"location": result.Location, "crops": crops}
		},
	}
}

// PrepareCropSuggestion trims the form and requires a location; nothing else is mandatory.
func PrepareCropSuggestion(req models.CropSuggestionRequest) (models.CropSuggestionRequest, error) {
	req = utils.TrimAllStringFields(req)
	if req.Location == "" {
		return req, models.NewInvalidInput("location", "location is required")
	}
	if req.SoilType != "" && !slices.ContainsFunc(models.SoilTypeOptions, func(o models.Option) bool { return o.Value == req.SoilType }) {
		return req, models.NewInvalidInput("soilType", "unknown soil type")
	}
	return req, nil
}

// SuggestCrops returns the fixed suggestion list with the submitted conditions echoed back.
func SuggestCrops(req models.CropSuggestionRequest) models.CropSuggestionResult {
	suggestions := make([]models.CropSuggestion, 0, len(cropSuggestions))
	for _, suggestion := range cropSuggestions {
		suggestion.Reasons = slices.Clone(suggestion.Reasons)
		suggestion.Tone = models.SuitabilityTone(suggestion.Suitability, 80)
		suggestions = append(suggestions, suggestion)
	}
	return models.CropSuggestionResult{
		Location: req.Location,
		Summary: models.EnvironmentalSummary{
			Temperature: utils.OrPlaceholder(req.Temperature),
			Humidity:    utils.OrPlaceholder(req.Humidity),
			SoilType:    utils.OrPlaceholder(req.SoilType),
		},
		Suggestions: suggestions,
	}
}

func (s *CropService) Recommend(req models.CropRecommendationRequest) ([]models.CropRecommendation, error) {
	req = utils.TrimAllStringFields(req)
	if !slices.Contains(recommenderSoilTypes, req.SoilType) {
		return nil, models.NewInvalidInput("soil_type", "unknown soil type")
	}
	if !slices.Contains(recommenderSeasons, req.Season) {
		return nil, models.NewInvalidInput("season", "unknown season")
	}
	if !slices.Contains(waterLevels, req.WaterAvailability) {
		return nil, models.NewInvalidInput("water_availability", "must be Low, Medium or High")
	}
	return RecommendCrops(req), nil
}

// RecommendCrops scores every crop profile against the conditions and returns the best three.
// Ties keep table order.
func RecommendCrops(req models.CropRecommendationRequest) []models.CropRecommendation {
	var recommendations []models.CropRecommendation
	for _, entry := range cropProfiles {
		score := cropScore(entry.profile, req)
		if score > 0 {
			recommendations = append(recommendations, models.CropRecommendation{
				Crop:    entry.name,
				Score:   score,
				Details: entry.profile,
			})
		}
	}

	slices.SortStableFunc(recommendations, func(a, b models.CropRecommendation) int {
		return b.Score - a.Score
	})
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

func cropScore(profile models.CropProfile, req models.CropRecommendationRequest) int {
	score := 0

	switch {
	case profile.SoilType == req.SoilType:
		score += 30
	case slices.Contains(loamFamily, profile.SoilType) && slices.Contains(loamFamily, req.SoilType):
		score += 20
	}

	if profile.Season == req.Season || profile.Season == "Year-round" {
		score += 25
	}

	switch req.WaterAvailability {
	case "High":
		if profile.WaterRequirement == "High" || profile.WaterRequirement == "Very High" {
			score += 20
		}
	case "Medium", "Low":
		if profile.WaterRequirement == req.WaterAvailability {
			score += 20
		}
	}

	switch t := req.Temperature; {
	case t >= 20 && t <= 35:
		score += 15
	case t >= 15 && t <= 40:
		score += 10
	}

	switch r := req.Rainfall; {
	case r >= 100 && r <= 200:
		score += 10
	case r >= 50 && r <= 300:
		score += 5
	}

	return score
}

func (s *CropService) Options() models.CropOptions {
	return models.CropOptions{
		SoilTypes:          slices.Clone(recommenderSoilTypes),
		Seasons:            slices.Clone(recommenderSeasons),
		WaterAvailability:  slices.Clone(waterLevels),
		SuggestionSoilType: slices.Clone(models.SoilTypeOptions),
	}
}
