package persona

import (
	"github.com/data4good/donorscope/internal/util"
	"github.com/data4good/donorscope/logger"
)

// Thresholds parameterize the segmentation rules.
type Thresholds struct {
	AmountThreshold  float64 // high-value boundary on total donations
	DormancyMaxYears int     // active if dormant for at most this many years
}

// Persona names and their color groups. Each persona is one cell of the
// active/dormant × regular/one-time × high/low-value cube.
const (
	PersonaGary   = "Gary"   // Gold: high value, regular donor, active
	PersonaYara   = "Yara"   // Yellow: low value, regular donor, active
	PersonaRyan   = "Ryan"   // Red: high value, young account
	PersonaLaura  = "Laura"  // Light Green: low value, young account
	PersonaPeter  = "Peter"  // Purple: high value, regular donor, dormant
	PersonaBeth   = "Beth"   // Blue: high value, one-time, dormant
	PersonaOlivia = "Olivia" // Orange: low value, regular, dormant
	PersonaOliver = "Oliver" // Orange: low value, one-time, dormant
)

// ColorGroup maps a persona name to its color group.
var ColorGroup = map[string]string{
	PersonaGary:   "Gold",
	PersonaYara:   "Yellow",
	PersonaRyan:   "Red",
	PersonaLaura:  "Light Green",
	PersonaPeter:  "Purple",
	PersonaBeth:   "Blue",
	PersonaOlivia: "Orange",
	PersonaOliver: "Orange",
}

// Classify assigns a persona to one donor's aggregates. Accounts with no
// positive giving total have no persona; they are volunteer/potential
// accounts, reported separately, and ok reports false for them.
func Classify(s Stats, th Thresholds) (persona string, ok bool) {
	if s.AmountTotal <= 0 {
		return "", false
	}

	active := s.DormancyYears <= th.DormancyMaxYears
	regular := s.NonZeroCount > 1
	highValue := s.AmountTotal >= th.AmountThreshold

	switch {
	case active && regular && highValue:
		return PersonaGary, true
	case active && regular && !highValue:
		return PersonaYara, true
	case active && !regular && highValue:
		return PersonaRyan, true
	case active && !regular && !highValue:
		return PersonaLaura, true
	case !active && regular && highValue:
		return PersonaPeter, true
	case !active && !regular && highValue:
		return PersonaBeth, true
	case !active && regular && !highValue:
		return PersonaOlivia, true
	default:
		return PersonaOliver, true
	}
}

// BuildTable classifies every account and returns the persona lookup table
// keyed by normalized account identifier.
func BuildTable(stats []Stats, th Thresholds) map[string]string {
	table := make(map[string]string, len(stats))
	for _, s := range stats {
		if persona, ok := Classify(s, th); ok {
			table[s.AccountID] = persona
		}
	}
	logger.Infow("Persona table built", "rows", len(table))
	return table
}

// QuantilePoints are the probe points of the stat summary, matching the
// historical summary output.
var QuantilePoints = []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 1.0}

// StatSummary holds quantiles of the three classification dimensions over
// donating accounts.
type StatSummary struct {
	AmountTotal   map[float64]float64
	NonZeroCounts map[float64]float64
	DormancyYears map[float64]float64
}

// Summarize computes the quantile summary over accounts with positive totals.
func Summarize(stats []Stats) StatSummary {
	var amounts, counts, dormancy []float64
	for _, s := range stats {
		if s.AmountTotal <= 0 {
			continue
		}
		amounts = append(amounts, s.AmountTotal)
		counts = append(counts, float64(s.NonZeroCount))
		dormancy = append(dormancy, float64(s.DormancyYears))
	}

	summary := StatSummary{
		AmountTotal:   make(map[float64]float64, len(QuantilePoints)),
		NonZeroCounts: make(map[float64]float64, len(QuantilePoints)),
		DormancyYears: make(map[float64]float64, len(QuantilePoints)),
	}
	for _, q := range QuantilePoints {
		summary.AmountTotal[q] = util.Quantile(amounts, q)
		summary.NonZeroCounts[q] = util.Quantile(counts, q)
		summary.DormancyYears[q] = util.Quantile(dormancy, q)
	}
	return summary
}
