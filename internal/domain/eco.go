package domain

import "math"

// Per-page savings attributed to a digital submission in lieu of printing.
// These constants are the single source of truth for impact math.
const (
	WaterSavedPerPageL    = 1.62
	CO2PreventedPerPageKg = 0.009

	// FallbackPageCount is used when a document cannot be parsed.
	FallbackPageCount = 1

	// MaxIntegrityScore bounds the simulated similarity score (inclusive).
	MaxIntegrityScore = 15
)

// EcoImpact is the derived impact triple for one submission.
type EcoImpact struct {
	Pages          int     `json:"pages"`
	WaterSavedL    float64 `json:"water_saved"`
	CO2PreventedKg float64 `json:"co2_prevented"`
}

// ComputeImpact derives the impact triple from a page count. It is pure and
// total for any non-negative input; water is rounded to 2 decimal places,
// CO2 to 3. Negative input is a programmer error.
func ComputeImpact(pages int) EcoImpact {
	return EcoImpact{
		Pages:          pages,
		WaterSavedL:    math.Round(float64(pages)*WaterSavedPerPageL*100) / 100,
		CO2PreventedKg: math.Round(float64(pages)*CO2PreventedPerPageKg*1000) / 1000,
	}
}
