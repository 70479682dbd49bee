package models

type CurrentWeather struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
	Rainfall    float64 `json:"rainfall"`
	UVIndex     float64 `json:"uvIndex"`
	Source      string  `json:"source"` // static | live
}

type DashboardCrop struct {
	Crop        string `json:"crop"`
	Suitability int    `json:"suitability"`
	Season      string `json:"season"`
	Status      string `json:"status"`
	Tone        Tone   `json:"tone"`
}

type Alert struct {
	Type     string `json:"type" db:"alert_type"`
	Message  string `json:"message" db:"message"`
	Priority string `json:"priority" db:"priority"`
}

type FarmingTask struct {
	Task    string `json:"task" db:"task"`
	Crop    string `json:"crop" db:"crop"`
	DueDate string `json:"dueDate" db:"due_date"`
	Status  string `json:"status" db:"status"`
}

type QuickStats struct {
	ActiveCrops int    `json:"activeCrops"`
	SoilHealth  string `json:"soilHealth"`
	Alerts      int    `json:"alerts"`
}

type ForecastDay struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	Humidity    float64 `json:"humidity"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type YieldPoint struct {
	Month     string  `json:"month"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

type Dashboard struct {
	Weather             CurrentWeather  `json:"weather"`
	CropRecommendations []DashboardCrop `json:"cropRecommendations"`
	Alerts              []Alert         `json:"alerts"`
	Tasks               []FarmingTask   `json:"tasks"`
	Stats               QuickStats      `json:"stats"`
	Forecast            []ForecastDay   `json:"forecast"`
	SoilChart           []ChartPoint    `json:"soilChart"`
	YieldChart          []YieldPoint    `json:"yieldChart"`
}
