package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"advisory-service/internal/models"
)

const (
	defaultPH       = 7.0
	defaultReading  = 0.0
	minOverallScore = 20.0
	maxOverallScore = 100.0
)

var generalSoilRecommendations = []string{
	"Apply organic compost to improve soil structure",
	"Consider crop rotation with legumes to fix nitrogen",
	"Regular soil testing every 6 months recommended",
	"Maintain proper irrigation to prevent nutrient leaching",
}

// ParseSoilForm turns the free-text form into a sample. Each entry is read by its leading number,
// so "45 kg/ha" is 45 and "2.8%" is 2.8. Entries with no leading number, or whose number is zero,
// take their default (pH 7, everything else 0). It never fails.
func ParseSoilForm(form models.SoilForm) models.SoilSample {
	return models.SoilSample{
		PH:            parseReading(form.PH, defaultPH),
		Nitrogen:      parseReading(form.Nitrogen, defaultReading),
		Phosphorus:    parseReading(form.Phosphorus, defaultReading),
		Potassium:     parseReading(form.Potassium, defaultReading),
		OrganicMatter: parseReading(form.OrganicMatter, defaultReading),
		Moisture:      parseReading(form.Moisture, defaultReading),
		Temperature:   parseReading(form.Temperature, defaultReading),
		EC:            parseReading(form.EC, defaultReading),
	}
}

func parseReading(raw string, fallback float64) float64 {
	value, ok := leadingNumber(raw)
	if !ok || value == 0 {
		return fallback
	}
	return value
}

// leadingNumber reads the longest decimal prefix of s after leading whitespace.
// "Infinity" and overflowing exponents saturate to ±MaxFloat64 so reports stay JSON-encodable.
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	sign := 1.0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return sign * math.MaxFloat64, true
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i

	// exponent only counts when at least one digit follows
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, false
		}
	}
	if math.IsInf(value, 0) {
		value = math.Copysign(math.MaxFloat64, value)
	}
	return value, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatSoilSample renders a sample back into form text, e.g. to prefill the form after extraction.
func FormatSoilSample(sample models.SoilSample) models.SoilForm {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return models.SoilForm{
		PH:            format(sample.PH),
		Nitrogen:      format(sample.Nitrogen),
		Phosphorus:    format(sample.Phosphorus),
		Potassium:     format(sample.Potassium),
		OrganicMatter: format(sample.OrganicMatter),
		Moisture:      format(sample.Moisture),
		Temperature:   format(sample.Temperature),
		EC:            format(sample.EC),
	}
}

// EvaluateSoil scores a sample. Only pH, N, P, K and organic matter are read.
func EvaluateSoil(sample models.SoilSample) models.SoilHealthReport {
	ph, n, p, k, om := sample.PH, sample.Nitrogen, sample.Phosphorus, sample.Potassium, sample.OrganicMatter

	total := phScore(ph) +
		tieredScore(n, 40, 20) +
		tieredScore(p, 30, 15) +
		tieredScore(k, 20, 10) +
		tieredScore(om, 2, 1)
	overall := math.Min(maxOverallScore, math.Max(minOverallScore, total/5))

	return models.SoilHealthReport{
		OverallHealth: overall,
		HealthBand:    models.HealthBand(overall),
		Nutrients: map[string]models.NutrientAssessment{
			models.NutrientPH: {
				Value:          ph,
				Status:         phStatus(ph),
				Recommendation: phRecommendation(ph),
			},
			models.NutrientNitrogen: {
				Value:          n,
				Status:         tieredStatus(n, 40, 20),
				Recommendation: belowOr(n, 40, "Apply nitrogen-rich fertilizer", "Maintain current nitrogen level"),
			},
			models.NutrientPhosphorus: {
				Value:          p,
				Status:         tieredStatus(p, 30, 15),
				Recommendation: belowOr(p, 30, "Apply phosphate fertilizer", "Maintain current phosphorus level"),
			},
			models.NutrientPotassium: {
				Value:          k,
				Status:         tieredStatus(k, 20, 10),
				Recommendation: belowOr(k, 20, "Apply potash fertilizer", "Maintain current potassium level"),
			},
		},
		Recommendations: append([]string(nil), generalSoilRecommendations...),
	}
}

func phInRange(ph float64) bool {
	return ph >= 6 && ph <= 7.5
}

func phScore(ph float64) float64 {
	if phInRange(ph) {
		return 85
	}
	return 60
}

func phStatus(ph float64) models.NutrientStatus {
	switch {
	case phInRange(ph):
		return models.StatusOptimal
	case ph < 6:
		return models.StatusAcidic
	default:
		return models.StatusAlkaline
	}
}

func phRecommendation(ph float64) string {
	switch {
	case ph < 6:
		return "Add lime to increase pH"
	case ph > 7.5:
		return "Add sulfur to reduce pH"
	default:
		return "Maintain current pH level"
	}
}

func tieredScore(value, high, medium float64) float64 {
	switch {
	case value >= high:
		return 85
	case value >= medium:
		return 70
	default:
		return 50
	}
}

func tieredStatus(value, high, medium float64) models.NutrientStatus {
	switch {
	case value >= high:
		return models.StatusHigh
	case value >= medium:
		return models.StatusMedium
	default:
		return models.StatusLow
	}
}

func belowOr(value, threshold float64, below, otherwise string) string {
	if value < threshold {
		return below
	}
	return otherwise
}

type readingRange struct {
	field    string
	value    func(models.SoilSample) float64
	min, max float64
}

var soilRanges = []readingRange{
	{"ph", func(s models.SoilSample) float64 { return s.PH }, 0, 14},
	{"nitrogen", func(s models.SoilSample) float64 { return s.Nitrogen }, 0, math.Inf(1)},
	{"phosphorus", func(s models.SoilSample) float64 { return s.Phosphorus }, 0, math.Inf(1)},
	{"potassium", func(s models.SoilSample) float64 { return s.Potassium }, 0, math.Inf(1)},
	{"organicMatter", func(s models.SoilSample) float64 { return s.OrganicMatter }, 0, 100},
	{"moisture", func(s models.SoilSample) float64 { return s.Moisture }, 0, 100},
	{"temperature", func(s models.SoilSample) float64 { return s.Temperature }, -50, 70},
	{"ec", func(s models.SoilSample) float64 { return s.EC }, 0, math.Inf(1)},
}

// ValidateSoilSample reports out-of-range readings. EvaluateSoil does not call it; strict callers do.
func ValidateSoilSample(sample models.SoilSample) error {
	var errs models.ValidationErrors
	for _, r := range soilRanges {
		v := r.value(sample)
		if v >= r.min && v <= r.max {
			continue
		}
		msg := fmt.Sprintf("must be between %g and %g", r.min, r.max)
		if math.IsInf(r.max, 1) {
			msg = fmt.Sprintf("must be at least %g", r.min)
		}
		errs = append(errs, models.ValidationError{Field: r.field, Message: msg})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
