package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/db"
	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/join"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// testConfig builds a small but complete pipeline: campaign tracking rows
// resolved through contacts to accounts, with an opportunity history that
// classifies one account as Gary and one as Oliver.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	inDir := t.TempDir()

	writeFile(t, inDir, "tracking.csv", strings.Join([]string{
		"CAMPAIGN_ID,CONTACT",
		"CMP1,C1",
		"CMP1,C2",
		"CMP2,C1",
		"CMP2,C9",
		"CMP3,",
	}, "\n"))
	writeFile(t, inDir, "contacts.csv", strings.Join([]string{
		"ID,ACCOUNT_ID",
		"C1,XJ29Q",
		"C2,KL77M",
	}, "\n"))
	writeFile(t, inDir, "accounts.csv", strings.Join([]string{
		"Id",
		"XJ29Q",
		"KL77M",
	}, "\n"))
	writeFile(t, inDir, "opportunities.csv", strings.Join([]string{
		"AccountId,Amount,CloseDate",
		"XJ29Q,500,2024-02-01",
		"XJ29Q,500,2025-06-01",
		"XJ29Q,500,2025-09-01",
		"KL77M,100,2019-03-15",
	}, "\n"))
	writeFile(t, inDir, "addresses.csv", strings.Join([]string{
		"npsp__Household_Account__c,STATE,CITY",
		"XJ29Q,VIC,Melbourne",
		"KL77M,VIC,Melbourne",
		"QQ41B,NSW,Sydney",
	}, "\n"))

	return &config.Config{
		Input: config.InputConfig{
			Dir: inDir,
			Sources: map[string]config.SourceConfig{
				config.SourceTracking:      {File: "tracking.csv", Required: []string{"CAMPAIGN_ID", "CONTACT"}},
				config.SourceContacts:      {File: "contacts.csv", Required: []string{"ID", "ACCOUNT_ID"}},
				config.SourceAccounts:      {File: "accounts.csv", Required: []string{"Id"}},
				config.SourceOpportunities: {File: "opportunities.csv", Required: []string{"AccountId", "Amount", "CloseDate"}},
				config.SourceAddresses:     {File: "addresses.csv", Required: []string{"npsp__Household_Account__c", "STATE", "CITY"}},
			},
		},
		Output: config.OutputConfig{Dir: filepath.Join(t.TempDir(), "out")},
		Pipeline: config.PipelineConfig{
			Source: config.SourceTracking,
			Hops: []config.HopConfig{
				{Left: config.SourceTracking, LeftKey: "CONTACT", Right: config.SourceContacts, RightKey: "ID"},
				{Left: config.SourceContacts, LeftKey: "ACCOUNT_ID", Right: config.SourceAccounts, RightKey: "Id"},
			},
			PersonaKey: "Id",
		},
		Persona: config.PersonaConfig{
			AmountThreshold:  1000,
			DormancyMaxYears: 2,
			ReferenceYear:    2026,
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	result, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, 5, result.SourceRows)
	assert.Equal(t, 3, result.ResolvedRows)
	assert.Equal(t, 2, result.UnresolvedRows)

	// XJ29Q gave 1500 across three recent donations, KL77M gave once long ago.
	assert.Equal(t, map[string]int{
		"Gary":          2,
		"Oliver":        1,
		join.Unresolved: 2,
	}, result.Personas)

	byReason := result.Report.ByReason()
	assert.Equal(t, 1, byReason[join.ReasonNoMatch])
	assert.Equal(t, 1, byReason[join.ReasonMissingKey])

	for _, path := range []string{
		result.Artifacts.ResolvedCSV,
		result.Artifacts.UnmatchedCSV,
		result.Artifacts.SummaryCSV,
		result.Artifacts.StatsCSV,
		result.Artifacts.AddressCSV,
	} {
		_, err := os.Stat(path)
		require.NoError(t, err, path)
	}
}

func TestRunEmitsAddressDistribution(t *testing.T) {
	cfg := testConfig(t)

	result, err := Run(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Artifacts.AddressCSV)

	content, err := os.ReadFile(result.Artifacts.AddressCSV)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"state,city,count",
		"NSW,Sydney,1",
		"VIC,Melbourne,2",
		"",
	}, "\n"), string(content))
}

func TestRunEmitsGivingTrends(t *testing.T) {
	cfg := testConfig(t)

	// Enriched exports carrying the optional trend columns.
	writeFile(t, cfg.Input.Dir, "accounts.csv", strings.Join([]string{
		"Id,Account Record Type,First_Gift_Year__c",
		"XJ29Q,Church,2019.0",
		"KL77M,Nonprofit,2019",
	}, "\n"))
	writeFile(t, cfg.Input.Dir, "opportunities.csv", strings.Join([]string{
		"AccountId,Amount,CloseDate,Probability",
		"XJ29Q,500,2024-02-01,100%",
		"XJ29Q,500,2025-06-01,100%",
		"XJ29Q,500,2025-09-01,10%",
		"KL77M,100,2019-03-15,100%",
	}, "\n"))

	result, err := Run(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Artifacts.DonorsGainedCSV)

	gained, err := os.ReadFile(result.Artifacts.DonorsGainedCSV)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"year,total,church,other",
		"2019,2,1,1",
		"",
	}, "\n"), string(gained))

	byYear, err := os.ReadFile(result.Artifacts.DonationsYearCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(byYear), "\n"), "\n")
	// 2019 through 2025 plus the header; the 10% opportunity never counts.
	require.Len(t, lines, 8)
	assert.Equal(t, "2019,100.00,0.00,100.00", lines[1])
	assert.Equal(t, "2024,500.00,500.00,0.00", lines[6])
	assert.Equal(t, "2025,500.00,500.00,0.00", lines[7])
}

func TestRunWithoutTrendColumns(t *testing.T) {
	cfg := testConfig(t)

	result, err := Run(cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Artifacts.DonorsGainedCSV)
}

func TestRunWithoutAddresses(t *testing.T) {
	cfg := testConfig(t)
	delete(cfg.Input.Sources, config.SourceAddresses)

	result, err := Run(cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Artifacts.AddressCSV)
}

func TestRunRecordsAudit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Path = filepath.Join(t.TempDir(), "audit.db")

	result, err := Run(cfg)
	require.NoError(t, err)

	d, err := db.Open(cfg.Database.Path, nil)
	require.NoError(t, err)
	defer d.Close()

	runs, err := db.RecentRuns(d, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, 5, runs[0].SourceRows)
	assert.Equal(t, 2, runs[0].UnresolvedRows)

	unmatched, err := db.UnmatchedForRun(d, result.RunID)
	require.NoError(t, err)
	assert.Len(t, unmatched, 2)
}

func TestRunMissingSource(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Input.Dir, "contacts.csv")))

	_, err := Run(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsMissingSource(err))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.Hops = nil

	_, err := Run(cfg)
	require.Error(t, err)
}

func TestRunWithoutOpportunities(t *testing.T) {
	cfg := testConfig(t)
	delete(cfg.Input.Sources, config.SourceOpportunities)

	result, err := Run(cfg)
	require.NoError(t, err)

	// Without an opportunity history nothing classifies.
	assert.Equal(t, 5, result.Personas[join.Unresolved])
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := testConfig(t)

	first, err := Run(cfg)
	require.NoError(t, err)
	second, err := Run(cfg)
	require.NoError(t, err)

	firstCSV, err := os.ReadFile(first.Artifacts.ResolvedCSV)
	require.NoError(t, err)
	secondCSV, err := os.ReadFile(second.Artifacts.ResolvedCSV)
	require.NoError(t, err)
	assert.Equal(t, string(firstCSV), string(secondCSV))
}
