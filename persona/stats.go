// Package persona computes per-donor giving statistics from the opportunity
// table and classifies each donor into a persona segment. The resulting
// lookup table (account identifier → persona label) is consumed read-only by
// the join attacher; nothing downstream recomputes it.
package persona

import (
	"strconv"
	"strings"
	"time"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/ident"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/relation"
)

// Stats holds the per-account aggregates the classification rules run on.
type Stats struct {
	AccountID string // normalized account identifier

	AmountMin   float64
	AmountMax   float64
	AmountMean  float64
	AmountTotal float64

	StartYear  int
	LatestYear int

	NonZeroCount int // donations with a positive amount

	AccountAge    int // reference year - first donation year
	DormancyYears int // reference year - latest donation year
}

// Opportunity table column names after loading.
const (
	colAmount    = "Amount"
	colAccountID = "AccountId"
	colCloseDate = "CloseDate"
)

// Aggregate computes per-account statistics from the opportunity relation.
// Accounts are emitted in order of first appearance so repeated runs produce
// identical output. Rows with an unnormalizable account ID or an unparsable
// close date are skipped; they carry no usable signal for segmentation.
func Aggregate(opportunities *relation.Relation, referenceYear int) ([]Stats, error) {
	for _, col := range []string{colAmount, colAccountID, colCloseDate} {
		if !opportunities.HasColumn(col) {
			return nil, errors.NewSchemaError(opportunities.Name, col)
		}
	}

	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	ns := ident.Namespace{Name: "account-id"}

	type accum struct {
		min, max, total float64
		count           int
		nonZero         int
		startYear       int
		latestYear      int
	}

	byAccount := make(map[string]*accum)
	var order []string
	skipped := 0

	for i := 0; i < opportunities.Len(); i++ {
		rawID, _ := opportunities.Value(i, colAccountID)
		id, err := ns.Normalize(rawID)
		if err != nil {
			skipped++
			continue
		}

		rawAmount, _ := opportunities.Value(i, colAmount)
		amount, err := ParseAmount(rawAmount)
		if err != nil {
			skipped++
			continue
		}

		rawDate, _ := opportunities.Value(i, colCloseDate)
		year, err := parseYear(rawDate)
		if err != nil {
			skipped++
			continue
		}

		acc, ok := byAccount[id]
		if !ok {
			acc = &accum{min: amount, max: amount, startYear: year, latestYear: year}
			byAccount[id] = acc
			order = append(order, id)
		}

		if amount < acc.min {
			acc.min = amount
		}
		if amount > acc.max {
			acc.max = amount
		}
		acc.total += amount
		acc.count++
		if amount > 0 {
			acc.nonZero++
		}
		if year < acc.startYear {
			acc.startYear = year
		}
		if year > acc.latestYear {
			acc.latestYear = year
		}
	}

	stats := make([]Stats, 0, len(order))
	for _, id := range order {
		acc := byAccount[id]
		s := Stats{
			AccountID:     id,
			AmountMin:     acc.min,
			AmountMax:     acc.max,
			AmountTotal:   acc.total,
			StartYear:     acc.startYear,
			LatestYear:    acc.latestYear,
			NonZeroCount:  acc.nonZero,
			AccountAge:    referenceYear - acc.startYear,
			DormancyYears: referenceYear - acc.latestYear,
		}
		if acc.count > 0 {
			s.AmountMean = acc.total / float64(acc.count)
		}
		stats = append(stats, s)
	}

	if skipped > 0 {
		logger.Warnw("Skipped opportunity rows during aggregation", "rows", skipped)
	}
	logger.Infow("Aggregated donor statistics", "rows", len(stats))

	return stats, nil
}

// ParseAmount reads a donation amount that may carry currency decoration
// ("$1,200.00") or be plain numeric.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if s == "" {
		return 0, errors.Newf("amount %q has no numeric content", raw)
	}
	return strconv.ParseFloat(s, 64)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
}

// ParseCloseDate reads a close date in any of the export layouts.
func ParseCloseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("empty close date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unparsable close date %q", raw)
}

// parseYear extracts the calendar year from a close date string.
func parseYear(raw string) (int, error) {
	t, err := ParseCloseDate(raw)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}
