// Package report turns a finished resolution pass into operator-facing
// artifacts: output CSVs, distribution charts, a PDF digest, and the console
// summary.
package report

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/join"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/persona"
	"github.com/data4good/donorscope/relation"
	"github.com/data4good/donorscope/trends"
)

// Inputs collects everything a report is built from.
type Inputs struct {
	Resolved *relation.Relation // final relation with persona column attached
	Report   *join.Report
	Stats    []persona.Stats
	Summary  persona.StatSummary

	// CampaignColumn groups the campaign activity aggregate. Defaults to
	// DefaultCampaignColumn; the aggregate is skipped when the resolved
	// relation has no such column.
	CampaignColumn string

	// Addresses feeds the state distribution aggregate. Optional; the
	// aggregate is skipped when nil or when the state and city columns are
	// absent.
	Addresses *relation.Relation

	// Trends carries the giving trend aggregates. Optional; nil skips the
	// trend CSVs and charts.
	Trends *trends.Analysis

	PDFReport bool
}

// DefaultCampaignColumn is the campaign grouping column of the tracking export.
const DefaultCampaignColumn = "CAMPAIGN_ID"

// Grouping columns of the address export.
const (
	StateColumn = "STATE"
	CityColumn  = "CITY"
)

// CampaignActivity aggregates one campaign's tracking rows.
type CampaignActivity struct {
	Campaign string
	Rows     int
	Resolved int // rows that reached a persona label
}

// CampaignActivities tallies rows and resolved rows per campaign, in order of
// first appearance.
func CampaignActivities(resolved *relation.Relation, campaignCol string) []CampaignActivity {
	if resolved == nil || !resolved.HasColumn(campaignCol) {
		return nil
	}

	byCampaign := make(map[string]*CampaignActivity)
	var order []string
	for i := 0; i < resolved.Len(); i++ {
		campaign, _ := resolved.Value(i, campaignCol)
		act, ok := byCampaign[campaign]
		if !ok {
			act = &CampaignActivity{Campaign: campaign}
			byCampaign[campaign] = act
			order = append(order, campaign)
		}
		act.Rows++
		if p, _ := resolved.Value(i, join.PersonaColumn); p != join.Unresolved && p != "" {
			act.Resolved++
		}
	}

	out := make([]CampaignActivity, 0, len(order))
	for _, campaign := range order {
		out = append(out, *byCampaign[campaign])
	}
	return out
}

// StateCount tallies the address rows of one state and city pair.
type StateCount struct {
	State string
	City  string
	Count int
}

// StateDistribution tallies address rows per state and city, sorted by state
// then city so the output is stable across runs.
func StateDistribution(addresses *relation.Relation) []StateCount {
	if addresses == nil || !addresses.HasColumn(StateColumn) || !addresses.HasColumn(CityColumn) {
		return nil
	}

	type place struct{ state, city string }
	counts := make(map[place]int)
	for i := 0; i < addresses.Len(); i++ {
		state, _ := addresses.Value(i, StateColumn)
		city, _ := addresses.Value(i, CityColumn)
		counts[place{state, city}]++
	}

	out := make([]StateCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, StateCount{State: p.state, City: p.city, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].City < out[j].City
	})
	return out
}

// Artifacts lists the files a report run produced.
type Artifacts struct {
	ResolvedCSV  string
	UnmatchedCSV string
	SummaryCSV   string
	StatsCSV     string
	CampaignCSV  string
	AddressCSV   string

	DonorsGainedCSV   string
	DonationsYearCSV  string
	DonationsMonthCSV string

	ChartPNGs []string
	PDF       string
}

// Emit writes all report artifacts into outputDir, creating it if needed.
// CSVs always land; charts and the PDF are skipped when PDFReport is off.
func Emit(outputDir string, in Inputs) (*Artifacts, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", outputDir)
	}

	arts := &Artifacts{
		ResolvedCSV:  filepath.Join(outputDir, "resolved.csv"),
		UnmatchedCSV: filepath.Join(outputDir, "unmatched.csv"),
		SummaryCSV:   filepath.Join(outputDir, "stat_summary.csv"),
		StatsCSV:     filepath.Join(outputDir, "donor_stats.csv"),
	}

	if err := WriteRelationCSV(in.Resolved, arts.ResolvedCSV); err != nil {
		return nil, err
	}
	if err := WriteUnmatchedCSV(in.Report, arts.UnmatchedCSV); err != nil {
		return nil, err
	}
	if err := WriteStatSummaryCSV(in.Summary, arts.SummaryCSV); err != nil {
		return nil, err
	}
	if err := WriteDonorStatsCSV(in.Stats, arts.StatsCSV); err != nil {
		return nil, err
	}

	campaignCol := in.CampaignColumn
	if campaignCol == "" {
		campaignCol = DefaultCampaignColumn
	}
	if activities := CampaignActivities(in.Resolved, campaignCol); activities != nil {
		arts.CampaignCSV = filepath.Join(outputDir, "campaign_activity.csv")
		if err := WriteCampaignCSV(activities, arts.CampaignCSV); err != nil {
			return nil, err
		}
	}

	if dist := StateDistribution(in.Addresses); dist != nil {
		arts.AddressCSV = filepath.Join(outputDir, "address_state_distribution.csv")
		if err := WriteStateDistributionCSV(dist, arts.AddressCSV); err != nil {
			return nil, err
		}
	}

	if in.Trends != nil {
		arts.DonorsGainedCSV = filepath.Join(outputDir, "donors_gained_per_year.csv")
		if err := WriteDonorsGainedCSV(in.Trends.DonorsGained, arts.DonorsGainedCSV); err != nil {
			return nil, err
		}
		arts.DonationsYearCSV = filepath.Join(outputDir, "donations_by_year.csv")
		if err := WriteDonationsByYearCSV(in.Trends.DonationsByYear, arts.DonationsYearCSV); err != nil {
			return nil, err
		}
		arts.DonationsMonthCSV = filepath.Join(outputDir, "donations_by_month.csv")
		if err := WriteDonationsByMonthCSV(in.Trends.DonationsByMonth, arts.DonationsMonthCSV); err != nil {
			return nil, err
		}
	}

	if in.PDFReport {
		pngs, err := RenderCharts(outputDir, in.Stats, PersonaCounts(in.Resolved))
		if err != nil {
			return nil, err
		}
		if in.Trends != nil {
			trendPNGs, err := RenderTrendCharts(outputDir, in.Trends)
			if err != nil {
				return nil, err
			}
			pngs = append(pngs, trendPNGs...)
		}
		arts.ChartPNGs = pngs

		arts.PDF = filepath.Join(outputDir, "donor_report.pdf")
		if err := AssemblePDF(arts.PDF, pngs); err != nil {
			return nil, err
		}
	}

	logger.Infow("Report artifacts written", "source", outputDir)
	return arts, nil
}

// PersonaCounts tallies the persona column of the final relation. Records
// that never resolved count under their placeholder label.
func PersonaCounts(resolved *relation.Relation) map[string]int {
	counts := make(map[string]int)
	if resolved == nil || !resolved.HasColumn(join.PersonaColumn) {
		return counts
	}
	for i := 0; i < resolved.Len(); i++ {
		v, _ := resolved.Value(i, join.PersonaColumn)
		counts[v]++
	}
	return counts
}

// sortedKeys returns map keys in lexical order for deterministic output.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
