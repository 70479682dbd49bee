package models

// SoilForm is the soil-test form as typed by the farmer. Every field is free text.
type SoilForm struct {
	PH            string `json:"ph" form:"ph"`
	Nitrogen      string `json:"nitrogen" form:"nitrogen"`
	Phosphorus    string `json:"phosphorus" form:"phosphorus"`
	Potassium     string `json:"potassium" form:"potassium"`
	OrganicMatter string `json:"organicMatter" form:"organicMatter"`
	Moisture      string `json:"moisture" form:"moisture"`
	Temperature   string `json:"temperature" form:"temperature"`
	EC            string `json:"ec" form:"ec"`
}

// SoilSample holds one plot's readings after defaults have been applied.
type SoilSample struct {
	PH            float64 `json:"ph"`
	Nitrogen      float64 `json:"nitrogen"`      // kg/ha
	Phosphorus    float64 `json:"phosphorus"`    // kg/ha
	Potassium     float64 `json:"potassium"`     // kg/ha
	OrganicMatter float64 `json:"organicMatter"` // %
	Moisture      float64 `json:"moisture"`      // %
	Temperature   float64 `json:"temperature"`   // °C
	EC            float64 `json:"ec"`            // dS/m
}

type NutrientStatus string

const (
	StatusOptimal  NutrientStatus = "optimal"
	StatusAcidic   NutrientStatus = "acidic"
	StatusAlkaline NutrientStatus = "alkaline"
	StatusHigh     NutrientStatus = "high"
	StatusMedium   NutrientStatus = "medium"
	StatusLow      NutrientStatus = "low"
)

// Tone is how a status is presented: good, caution, alert or info.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneCaution Tone = "caution"
	ToneAlert   Tone = "alert"
	ToneInfo    Tone = "info"
)

func StatusTone(status NutrientStatus) Tone {
	switch status {
	case StatusOptimal, StatusHigh:
		return ToneGood
	case StatusMedium:
		return ToneCaution
	case StatusLow, StatusAcidic, StatusAlkaline:
		return ToneAlert
	default:
		return ToneInfo
	}
}

// HealthBand describes an overall soil health score in words.
func HealthBand(score float64) string {
	switch {
	case score >= 80:
		return "Excellent soil health"
	case score >= 60:
		return "Good soil health"
	case score >= 40:
		return "Fair soil health"
	default:
		return "Poor soil health - needs attention"
	}
}

// SuitabilityTone grades a 0-100 match score: good from 90, caution from cautionAt, info below.
func SuitabilityTone(score, cautionAt int) Tone {
	switch {
	case score >= 90:
		return ToneGood
	case score >= cautionAt:
		return ToneCaution
	default:
		return ToneInfo
	}
}

const (
	NutrientPH         = "ph"
	NutrientNitrogen   = "nitrogen"
	NutrientPhosphorus = "phosphorus"
	NutrientPotassium  = "potassium"
)

// TrackedNutrients lists the nutrient keys of a report in display order.
var TrackedNutrients = []string{NutrientPH, NutrientNitrogen, NutrientPhosphorus, NutrientPotassium}

type NutrientAssessment struct {
	Value          float64        `json:"value"`
	Status         NutrientStatus `json:"status"`
	Recommendation string         `json:"recommendation"`
}

type SoilHealthReport struct {
	OverallHealth   float64                       `json:"overallHealth"`
	HealthBand      string                        `json:"healthBand"`
	Nutrients       map[string]NutrientAssessment `json:"nutrients"`
	Recommendations []string                      `json:"recommendations"`
}

// ReportUploadResult is what the upload flow hands back to the form.
type ReportUploadResult struct {
	FileName  string   `json:"fileName"`
	ObjectKey string   `json:"objectKey,omitempty"`
	ReportURL string   `json:"reportUrl,omitempty"`
	Source    string   `json:"source"` // ai | sample
	Form      SoilForm `json:"form"`
	Notices   []Notice `json:"notices"`
}

// Notice is a short title/description pair, shown the way the UI shows toasts.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
