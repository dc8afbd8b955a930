package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/join"
	"github.com/data4good/donorscope/persona"
	"github.com/data4good/donorscope/relation"
	"github.com/data4good/donorscope/trends"
)

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return errors.Wrapf(err, "write header of %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return errors.Wrapf(err, "write row of %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// WriteRelationCSV writes a relation in its column and row order.
func WriteRelationCSV(rel *relation.Relation, path string) error {
	rows := make([][]string, 0, rel.Len())
	for i := 0; i < rel.Len(); i++ {
		rows = append(rows, rel.Row(i))
	}
	return writeCSV(path, rel.Columns, rows)
}

// WriteUnmatchedCSV writes the unmatched record report, one row per record
// that fell out of the join path, in source row order.
func WriteUnmatchedCSV(rep *join.Report, path string) error {
	rows := make([][]string, 0, len(rep.Records))
	for _, u := range rep.Records {
		rows = append(rows, []string{
			strconv.Itoa(u.SourceRow),
			strconv.Itoa(u.Hop),
			u.RawKey,
			string(u.Reason),
		})
	}
	return writeCSV(path, []string{"source_row", "hop", "raw_key", "reason"}, rows)
}

// WriteStatSummaryCSV writes the quantile summary, one row per probe point.
func WriteStatSummaryCSV(summary persona.StatSummary, path string) error {
	rows := make([][]string, 0, len(persona.QuantilePoints))
	for _, q := range persona.QuantilePoints {
		rows = append(rows, []string{
			strconv.FormatFloat(q, 'f', -1, 64),
			strconv.FormatFloat(summary.AmountTotal[q], 'f', 2, 64),
			strconv.FormatFloat(summary.NonZeroCounts[q], 'f', 2, 64),
			strconv.FormatFloat(summary.DormancyYears[q], 'f', 2, 64),
		})
	}
	return writeCSV(path, []string{"quantile", "amount_total", "non_zero_counts", "dormancy_years"}, rows)
}

// WriteCampaignCSV writes the per-campaign activity aggregate.
func WriteCampaignCSV(activities []CampaignActivity, path string) error {
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{
			a.Campaign,
			strconv.Itoa(a.Rows),
			strconv.Itoa(a.Resolved),
		})
	}
	return writeCSV(path, []string{"campaign", "rows", "resolved"}, rows)
}

// WriteStateDistributionCSV writes the address counts per state and city.
func WriteStateDistributionCSV(dist []StateCount, path string) error {
	rows := make([][]string, 0, len(dist))
	for _, d := range dist {
		rows = append(rows, []string{d.State, d.City, strconv.Itoa(d.Count)})
	}
	return writeCSV(path, []string{"state", "city", "count"}, rows)
}

// WriteDonorsGainedCSV writes the donors gained per year, split by
// institution type.
func WriteDonorsGainedCSV(points []trends.YearCount, path string) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Total),
			strconv.Itoa(p.Church),
			strconv.Itoa(p.Other),
		})
	}
	return writeCSV(path, []string{"year", "total", "church", "other"}, rows)
}

// WriteDonationsByYearCSV writes the closed donation totals per year, split
// by institution type.
func WriteDonationsByYearCSV(points []trends.YearAmount, path string) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			strconv.FormatFloat(p.Total, 'f', 2, 64),
			strconv.FormatFloat(p.Church, 'f', 2, 64),
			strconv.FormatFloat(p.Other, 'f', 2, 64),
		})
	}
	return writeCSV(path, []string{"year", "total", "church", "other"}, rows)
}

// WriteDonationsByMonthCSV writes the closed donation totals per month, split
// by institution type.
func WriteDonationsByMonthCSV(points []trends.MonthAmount, path string) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Month),
			strconv.FormatFloat(p.Total, 'f', 2, 64),
			strconv.FormatFloat(p.Church, 'f', 2, 64),
			strconv.FormatFloat(p.Other, 'f', 2, 64),
		})
	}
	return writeCSV(path, []string{"year", "month", "total", "church", "other"}, rows)
}

// WriteDonorStatsCSV writes the per-account aggregates, in first-appearance
// order, so downstream analysis can start from the computed values instead of
// the raw opportunity export.
func WriteDonorStatsCSV(stats []persona.Stats, path string) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.AccountID,
			strconv.FormatFloat(s.AmountTotal, 'f', 2, 64),
			strconv.FormatFloat(s.AmountMean, 'f', 2, 64),
			strconv.FormatFloat(s.AmountMin, 'f', 2, 64),
			strconv.FormatFloat(s.AmountMax, 'f', 2, 64),
			strconv.Itoa(s.NonZeroCount),
			strconv.Itoa(s.StartYear),
			strconv.Itoa(s.LatestYear),
			strconv.Itoa(s.AccountAge),
			strconv.Itoa(s.DormancyYears),
		})
	}
	header := []string{
		"account_id", "amount_total", "amount_mean", "amount_min", "amount_max",
		"non_zero_count", "start_year", "latest_year", "account_age", "dormancy_years",
	}
	return writeCSV(path, header, rows)
}
