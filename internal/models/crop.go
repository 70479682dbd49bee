package models

type CropSuggestionRequest struct {
	Location    string `json:"location" form:"location"`
	SoilType    string `json:"soilType" form:"soilType"`
	PH          string `json:"ph" form:"ph"`
	Nitrogen    string `json:"nitrogen" form:"nitrogen"`
	Phosphorus  string `json:"phosphorus" form:"phosphorus"`
	Potassium   string `json:"potassium" form:"potassium"`
	Temperature string `json:"temperature" form:"temperature"`
	Humidity    string `json:"humidity" form:"humidity"`
	Rainfall    string `json:"rainfall" form:"rainfall"`
}

type CropSuggestion struct {
	Crop        string   `json:"crop"`
	Suitability int      `json:"suitability"`
	Season      string   `json:"season"`
	Yield       string   `json:"yield"`
	Reasons     []string `json:"reasons"`
	Tone        Tone     `json:"tone"`
}

// EnvironmentalSummary echoes the conditions the suggestions were made for.
type EnvironmentalSummary struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	SoilType    string `json:"soilType"`
}

type CropSuggestionResult struct {
	Location    string               `json:"location"`
	Summary     EnvironmentalSummary `json:"summary"`
	Suggestions []CropSuggestion     `json:"suggestions"`
}

// SoilTypeOptions are the choices offered by the crop suggestion form.
var SoilTypeOptions = []Option{
	{Value: "sandy", Label: "Sandy"},
	{Value: "clay", Label: "Clay"},
	{Value: "loamy", Label: "Loamy"},
	{Value: "silty", Label: "Silty"},
	{Value: "peaty", Label: "Peaty"},
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CropProfile describes a crop for the rule-based recommender.
type CropProfile struct {
	Season           string `json:"season"`
	WaterRequirement string `json:"water_requirement"`
	SoilType         string `json:"soil_type"`
	Yield            string `json:"yield"`
}

type CropRecommendationRequest struct {
	SoilType          string  `json:"soil_type" form:"soil_type" binding:"required"`
	Season            string  `json:"season" form:"season" binding:"required"`
	WaterAvailability string  `json:"water_availability" form:"water_availability" binding:"required"`
	Temperature       float64 `json:"temperature" form:"temperature"`
	Rainfall          float64 `json:"rainfall" form:"rainfall"`
}

type CropRecommendation struct {
	Crop    string      `json:"crop"`
	Score   int         `json:"score"`
	Details CropProfile `json:"details"`
}

type CropOptions struct {
	SoilTypes          []string `json:"soil_types"`
	Seasons            []string `json:"seasons"`
	WaterAvailability  []string `json:"water_availability"`
	SuggestionSoilType []Option `json:"suggestion_soil_types"`
}
