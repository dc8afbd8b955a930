package report

import (
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/persona"
	"github.com/data4good/donorscope/trends"
)

const histogramBins = 16

// RenderCharts renders the distribution histograms and the persona bar chart
// as PNGs under outputDir and returns their paths in a fixed order.
func RenderCharts(outputDir string, stats []persona.Stats, personaCounts map[string]int) ([]string, error) {
	var amounts, counts, dormancy []float64
	for _, s := range stats {
		if s.AmountTotal <= 0 {
			continue
		}
		amounts = append(amounts, s.AmountTotal)
		counts = append(counts, float64(s.NonZeroCount))
		dormancy = append(dormancy, float64(s.DormancyYears))
	}

	var paths []string
	histograms := []struct {
		name   string
		title  string
		xlabel string
		values []float64
	}{
		{"amount_total.png", "Total Donations per Account", "amount", amounts},
		{"non_zero_counts.png", "Donation Counts per Account", "donations", counts},
		{"dormancy_years.png", "Years Since Last Donation", "years", dormancy},
	}
	for _, h := range histograms {
		path := filepath.Join(outputDir, h.name)
		if err := renderHistogram(path, h.title, h.xlabel, h.values); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	barPath := filepath.Join(outputDir, "personas.png")
	if err := renderPersonaBars(barPath, personaCounts); err != nil {
		return nil, err
	}
	paths = append(paths, barPath)

	return paths, nil
}

// RenderTrendCharts renders the church versus non-church trend lines as PNGs
// under outputDir and returns their paths in a fixed order.
func RenderTrendCharts(outputDir string, analysis *trends.Analysis) ([]string, error) {
	gained := make([]trendSeries, 3)
	for _, p := range analysis.DonorsGained {
		gained[0].add(float64(p.Year), float64(p.Total))
		gained[1].add(float64(p.Year), float64(p.Church))
		gained[2].add(float64(p.Year), float64(p.Other))
	}
	amounts := make([]trendSeries, 3)
	for _, p := range analysis.DonationsByYear {
		amounts[0].add(float64(p.Year), p.Total)
		amounts[1].add(float64(p.Year), p.Church)
		amounts[2].add(float64(p.Year), p.Other)
	}

	var paths []string
	charts := []struct {
		name   string
		title  string
		ylabel string
		series []trendSeries
	}{
		{"donors_gained.png", "Donors Gained per Year", "donors", gained},
		{"donations_by_year.png", "Closed Donations per Year", "amount", amounts},
	}
	for _, c := range charts {
		path := filepath.Join(outputDir, c.name)
		if err := renderTrendLines(path, c.title, c.ylabel, c.series); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type trendSeries struct {
	points plotter.XYs
}

func (s *trendSeries) add(x, y float64) {
	s.points = append(s.points, plotter.XY{X: x, Y: y})
}

var trendLineNames = []string{"total", "church", "other"}

var trendLineColors = []color.RGBA{
	{R: 79, G: 129, B: 189, A: 255},
	{R: 192, G: 80, B: 77, A: 255},
	{R: 155, G: 187, B: 89, A: 255},
}

func renderTrendLines(path, title, ylabel string, series []trendSeries) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "year"
	p.Y.Label.Text = ylabel

	for i, s := range series {
		if len(s.points) == 0 {
			continue
		}
		line, err := plotter.NewLine(s.points)
		if err != nil {
			return errors.Wrapf(err, "build trend line %s", trendLineNames[i])
		}
		line.Color = trendLineColors[i]
		p.Add(line)
		p.Legend.Add(trendLineNames[i], line)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save chart %s", path)
	}
	return nil
}

func renderHistogram(path, title, xlabel string, values []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "accounts"

	if len(values) > 0 {
		h, err := plotter.NewHist(plotter.Values(values), histogramBins)
		if err != nil {
			return errors.Wrapf(err, "build histogram %s", title)
		}
		h.FillColor = color.RGBA{R: 79, G: 129, B: 189, A: 255}
		p.Add(h)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save chart %s", path)
	}
	return nil
}

func renderPersonaBars(path string, personaCounts map[string]int) error {
	p := plot.New()
	p.Title.Text = "Accounts per Persona"
	p.Y.Label.Text = "accounts"

	names := sortedKeys(personaCounts)
	values := make(plotter.Values, len(names))
	for i, name := range names {
		values[i] = float64(personaCounts[name])
	}

	if len(values) > 0 {
		bars, err := plotter.NewBarChart(values, vg.Points(24))
		if err != nil {
			return errors.Wrap(err, "build persona bar chart")
		}
		bars.Color = color.RGBA{R: 155, G: 187, B: 89, A: 255}
		p.Add(bars)
		p.NominalX(names...)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save chart %s", path)
	}
	return nil
}
