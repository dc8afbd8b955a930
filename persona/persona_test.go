package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data4good/donorscope/relation"
)

func opportunityRelation(t *testing.T, rows [][]string) *relation.Relation {
	t.Helper()
	rel := relation.New("opportunities", []string{"AccountId", "Amount", "CloseDate"})
	for _, row := range rows {
		require.NoError(t, rel.Append(row))
	}
	return rel
}

func TestAggregate(t *testing.T) {
	rel := opportunityRelation(t, [][]string{
		{"XJ29Q", "500", "2023-03-01"},
		{"XJ29Q", "700", "2024-11-15"},
		{"XJ29Q", "0", "2022-01-01"},
		{"KL77M", "$1,200.00", "2019-06-30"},
	})

	stats, err := Aggregate(rel, 2025)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// First appearance order is preserved.
	xj := stats[0]
	assert.Equal(t, "XJ29Q", xj.AccountID)
	assert.Equal(t, 1200.0, xj.AmountTotal)
	assert.Equal(t, 2, xj.NonZeroCount)
	assert.Equal(t, 2022, xj.StartYear)
	assert.Equal(t, 2024, xj.LatestYear)
	assert.Equal(t, 1, xj.DormancyYears)
	assert.Equal(t, 3, xj.AccountAge)
	assert.InDelta(t, 400.0, xj.AmountMean, 1e-9)

	kl := stats[1]
	assert.Equal(t, "KL77M", kl.AccountID)
	assert.Equal(t, 1200.0, kl.AmountTotal)
	assert.Equal(t, 1, kl.NonZeroCount)
	assert.Equal(t, 6, kl.DormancyYears)
}

func TestAggregateSkipsUnusableRows(t *testing.T) {
	rel := opportunityRelation(t, [][]string{
		{"", "100", "2023-01-01"},      // no account
		{"XJ29Q", "", "2023-01-01"},    // no amount
		{"XJ29Q", "100", "not-a-date"}, // bad date
		{"XJ29Q", "100", "2023-05-05"}, // usable
	})

	stats, err := Aggregate(rel, 2025)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 100.0, stats[0].AmountTotal)
}

func TestAggregateSchemaError(t *testing.T) {
	rel := relation.New("opportunities", []string{"AccountId", "Amount"})
	_, err := Aggregate(rel, 2025)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CloseDate")
}

func TestClassifyAllCells(t *testing.T) {
	th := Thresholds{AmountThreshold: 1000, DormancyMaxYears: 2}

	tests := []struct {
		name    string
		stats   Stats
		persona string
	}{
		{"active regular high", Stats{AmountTotal: 1500, NonZeroCount: 3, DormancyYears: 1}, PersonaGary},
		{"active regular low", Stats{AmountTotal: 200, NonZeroCount: 3, DormancyYears: 1}, PersonaYara},
		{"active onetime high", Stats{AmountTotal: 2000, NonZeroCount: 1, DormancyYears: 0}, PersonaRyan},
		{"active onetime low", Stats{AmountTotal: 50, NonZeroCount: 1, DormancyYears: 2}, PersonaLaura},
		{"dormant regular high", Stats{AmountTotal: 5000, NonZeroCount: 4, DormancyYears: 5}, PersonaPeter},
		{"dormant onetime high", Stats{AmountTotal: 1000, NonZeroCount: 1, DormancyYears: 3}, PersonaBeth},
		{"dormant regular low", Stats{AmountTotal: 300, NonZeroCount: 2, DormancyYears: 4}, PersonaOlivia},
		{"dormant onetime low", Stats{AmountTotal: 10, NonZeroCount: 1, DormancyYears: 9}, PersonaOliver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persona, ok := Classify(tt.stats, th)
			require.True(t, ok)
			assert.Equal(t, tt.persona, persona)
		})
	}
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	th := Thresholds{AmountThreshold: 1000, DormancyMaxYears: 2}

	// Exactly at the amount threshold counts as high value.
	p, ok := Classify(Stats{AmountTotal: 1000, NonZeroCount: 1, DormancyYears: 0}, th)
	require.True(t, ok)
	assert.Equal(t, PersonaRyan, p)

	// Exactly at the dormancy boundary still counts as active.
	p, _ = Classify(Stats{AmountTotal: 1000, NonZeroCount: 1, DormancyYears: 2}, th)
	assert.Equal(t, PersonaRyan, p)

	p, _ = Classify(Stats{AmountTotal: 1000, NonZeroCount: 1, DormancyYears: 3}, th)
	assert.Equal(t, PersonaBeth, p)
}

func TestClassifyNonDonorHasNoPersona(t *testing.T) {
	_, ok := Classify(Stats{AmountTotal: 0, NonZeroCount: 0}, Thresholds{AmountThreshold: 1000, DormancyMaxYears: 2})
	assert.False(t, ok)
}

func TestBuildTable(t *testing.T) {
	th := Thresholds{AmountThreshold: 1000, DormancyMaxYears: 2}
	stats := []Stats{
		{AccountID: "XJ29Q", AmountTotal: 1500, NonZeroCount: 3, DormancyYears: 1},
		{AccountID: "KL77M", AmountTotal: 0},
	}

	table := BuildTable(stats, th)
	assert.Equal(t, map[string]string{"XJ29Q": PersonaGary}, table)
}

func TestColorGroupCoversAllPersonas(t *testing.T) {
	for _, p := range []string{PersonaGary, PersonaYara, PersonaRyan, PersonaLaura, PersonaPeter, PersonaBeth, PersonaOlivia, PersonaOliver} {
		assert.NotEmpty(t, ColorGroup[p], p)
	}
}

func TestSummarizeQuantiles(t *testing.T) {
	stats := []Stats{
		{AccountID: "a", AmountTotal: 100, NonZeroCount: 1, DormancyYears: 0},
		{AccountID: "b", AmountTotal: 200, NonZeroCount: 2, DormancyYears: 1},
		{AccountID: "c", AmountTotal: 300, NonZeroCount: 3, DormancyYears: 2},
		{AccountID: "d", AmountTotal: 0}, // non-donor excluded
	}

	summary := Summarize(stats)
	assert.Equal(t, 200.0, summary.AmountTotal[0.5])
	assert.Equal(t, 300.0, summary.AmountTotal[1.0])
	assert.InDelta(t, 1.0, summary.NonZeroCounts[0.01], 0.05, "lowest quantile near minimum")
}
