// Package trends computes giving trend aggregates that compare religious
// institution accounts against the rest of the donor base: donors gained per
// year, and closed donation amounts by year and by month.
//
// The columns the analysis needs (account record type, first gift year, close
// probability) are not part of the core export schemas, so everything here is
// optional: Compute returns nil when they are absent and the rest of the
// pipeline is unaffected.
package trends

import (
	"strconv"
	"strings"
	"time"

	"github.com/data4good/donorscope/ident"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/persona"
	"github.com/data4good/donorscope/relation"
)

// Column names as they appear in the CRM exports.
const (
	colRecordType = "Account Record Type"
	colFirstGift  = "First_Gift_Year__c"
	colAccountID  = "Id"

	colOppAccount  = "AccountId"
	colOppAmount   = "Amount"
	colOppClose    = "CloseDate"
	colProbability = "Probability"
)

// closedProbability marks an opportunity the CRM considers closed won. Only
// those count as donations received.
const closedProbability = "100%"

// Record types the CRM uses for religious institutions.
var churchRecordTypes = map[string]bool{
	"church":                true,
	"temple":                true,
	"religious institution": true,
}

// Account is the slice of the account export the trend analysis reads.
type Account struct {
	ID            string // normalized account identifier
	IsChurch      bool
	FirstGiftYear int // 0 when the export has no first gift year
}

// Donation is one closed won opportunity.
type Donation struct {
	AccountID string
	Amount    float64
	Year      int
	Month     int // 1..12
}

// YearCount is one year's donor tally, split by institution type.
type YearCount struct {
	Year   int
	Total  int
	Church int
	Other  int
}

// YearAmount is one year's closed donation total, split by institution type.
type YearAmount struct {
	Year   int
	Total  float64
	Church float64
	Other  float64
}

// MonthAmount is one month's closed donation total, split by institution type.
type MonthAmount struct {
	Year   int
	Month  int
	Total  float64
	Church float64
	Other  float64
}

// Analysis bundles the three trend aggregates.
type Analysis struct {
	DonorsGained     []YearCount
	DonationsByYear  []YearAmount
	DonationsByMonth []MonthAmount
}

// recentYears is how far back the monthly breakdown reaches from the
// reference year.
const recentYears = 2

// Compute derives the trend aggregates from the accounts and opportunities
// relations. Returns nil when either relation lacks the columns the analysis
// needs. The monthly breakdown covers donations closed in the reference year
// and the two years before it; a zero reference year means the current year.
func Compute(accounts, opportunities *relation.Relation, referenceYear int) *Analysis {
	accts, ok := loadAccounts(accounts)
	if !ok {
		return nil
	}
	donations, ok := loadClosedDonations(opportunities)
	if !ok {
		return nil
	}
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	church := make(map[string]bool, len(accts))
	for _, a := range accts {
		church[a.ID] = a.IsChurch
	}

	analysis := &Analysis{
		DonorsGained:     donorsGainedPerYear(accts),
		DonationsByYear:  donationsByYear(donations, church),
		DonationsByMonth: donationsByMonth(donations, church, referenceYear-recentYears),
	}
	logger.Infow("Computed giving trends",
		"accounts", len(accts),
		"closed_donations", len(donations),
	)
	return analysis
}

func isChurch(recordType string) bool {
	return churchRecordTypes[strings.ToLower(strings.TrimSpace(recordType))]
}

func loadAccounts(rel *relation.Relation) ([]Account, bool) {
	if rel == nil || !rel.HasColumn(colRecordType) || !rel.HasColumn(colFirstGift) || !rel.HasColumn(colAccountID) {
		return nil, false
	}

	ns := ident.Namespace{Name: "account-id"}
	out := make([]Account, 0, rel.Len())
	for i := 0; i < rel.Len(); i++ {
		rawID, _ := rel.Value(i, colAccountID)
		id, err := ns.Normalize(rawID)
		if err != nil {
			continue
		}

		recordType, _ := rel.Value(i, colRecordType)
		a := Account{ID: id, IsChurch: isChurch(recordType)}

		// First gift years pass through a float dtype in some exports, so
		// "2015.0" is as common as "2015".
		if raw, _ := rel.Value(i, colFirstGift); strings.TrimSpace(raw) != "" {
			if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				a.FirstGiftYear = int(f)
			}
		}
		out = append(out, a)
	}
	return out, true
}

func loadClosedDonations(rel *relation.Relation) ([]Donation, bool) {
	if rel == nil {
		return nil, false
	}
	for _, col := range []string{colOppAccount, colOppAmount, colOppClose, colProbability} {
		if !rel.HasColumn(col) {
			return nil, false
		}
	}

	ns := ident.Namespace{Name: "account-id"}
	var out []Donation
	for i := 0; i < rel.Len(); i++ {
		if prob, _ := rel.Value(i, colProbability); strings.TrimSpace(prob) != closedProbability {
			continue
		}

		rawID, _ := rel.Value(i, colOppAccount)
		id, err := ns.Normalize(rawID)
		if err != nil {
			continue
		}
		rawAmount, _ := rel.Value(i, colOppAmount)
		amount, err := persona.ParseAmount(rawAmount)
		if err != nil {
			continue
		}
		rawDate, _ := rel.Value(i, colOppClose)
		closed, err := persona.ParseCloseDate(rawDate)
		if err != nil {
			continue
		}

		out = append(out, Donation{
			AccountID: id,
			Amount:    amount,
			Year:      closed.Year(),
			Month:     int(closed.Month()),
		})
	}
	return out, true
}

// donorsGainedPerYear tallies accounts by their first gift year over the
// continuous year range, so a year nobody started giving still appears with
// zero counts.
func donorsGainedPerYear(accounts []Account) []YearCount {
	byYear := make(map[int]YearCount)
	minYear, maxYear := 0, 0
	for _, a := range accounts {
		if a.FirstGiftYear == 0 {
			continue
		}
		if minYear == 0 || a.FirstGiftYear < minYear {
			minYear = a.FirstGiftYear
		}
		if a.FirstGiftYear > maxYear {
			maxYear = a.FirstGiftYear
		}
		c := byYear[a.FirstGiftYear]
		c.Total++
		if a.IsChurch {
			c.Church++
		} else {
			c.Other++
		}
		byYear[a.FirstGiftYear] = c
	}
	if minYear == 0 {
		return nil
	}

	out := make([]YearCount, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		c := byYear[y]
		c.Year = y
		out = append(out, c)
	}
	return out
}

// donationsByYear sums closed donation amounts per year over the continuous
// year range.
func donationsByYear(donations []Donation, church map[string]bool) []YearAmount {
	byYear := make(map[int]YearAmount)
	minYear, maxYear := 0, 0
	for _, d := range donations {
		if minYear == 0 || d.Year < minYear {
			minYear = d.Year
		}
		if d.Year > maxYear {
			maxYear = d.Year
		}
		a := byYear[d.Year]
		a.Total += d.Amount
		if church[d.AccountID] {
			a.Church += d.Amount
		} else {
			a.Other += d.Amount
		}
		byYear[d.Year] = a
	}
	if minYear == 0 {
		return nil
	}

	out := make([]YearAmount, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		a := byYear[y]
		a.Year = y
		out = append(out, a)
	}
	return out
}

// donationsByMonth sums closed donation amounts per calendar month for
// donations from sinceYear onward, over the continuous month range.
func donationsByMonth(donations []Donation, church map[string]bool, sinceYear int) []MonthAmount {
	// Months index as year*12+month-1 so the range arithmetic stays flat.
	byMonth := make(map[int]MonthAmount)
	minIdx, maxIdx := -1, -1
	for _, d := range donations {
		if d.Year < sinceYear {
			continue
		}
		idx := d.Year*12 + d.Month - 1
		if minIdx < 0 || idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
		a := byMonth[idx]
		a.Total += d.Amount
		if church[d.AccountID] {
			a.Church += d.Amount
		} else {
			a.Other += d.Amount
		}
		byMonth[idx] = a
	}
	if minIdx < 0 {
		return nil
	}

	out := make([]MonthAmount, 0, maxIdx-minIdx+1)
	for idx := minIdx; idx <= maxIdx; idx++ {
		a := byMonth[idx]
		a.Year = idx / 12
		a.Month = idx%12 + 1
		out = append(out, a)
	}
	return out
}
