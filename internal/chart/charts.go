// Package chart renders the three report charts directly from aggregator
// output. Counts flow from the pipeline into the chart values
// programmatically; nothing is transcribed by hand, and every percentage
// uses the same denominator.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"github.com/arkstack-labs/arklens/internal/dataset"
)

// Output file names under the charts directory.
const (
	RiskPieFile      = "risk_categories.png"
	TrendPieFile     = "population_trends.png"
	RiskTrendBarFile = "risk_by_trend.png"
)

const (
	pieSize   = 600
	barWidth  = 1024
	barHeight = 600
)

// Inputs carries the aggregated counts the charts are built from. Counts
// must be non-null groups only; Denominator is the single source count all
// percentages are derived from.
type Inputs struct {
	RiskCounts  []dataset.GroupCount
	TrendCounts []dataset.GroupCount
	RiskTrend   []dataset.GroupCount
	Denominator int
}

// RenderAll renders the risk pie, trend pie and risk-by-trend bar chart
// into dir, creating it if needed. The three charts render concurrently.
// Returns the paths of the written files.
func RenderAll(ctx context.Context, dir string, in Inputs) ([]string, error) {
	if in.Denominator <= 0 {
		return nil, fmt.Errorf("chart denominator must be positive, got %d", in.Denominator)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}

	paths := []string{
		filepath.Join(dir, RiskPieFile),
		filepath.Join(dir, TrendPieFile),
		filepath.Join(dir, RiskTrendBarFile),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return renderToFile(paths[0], func(f *os.File) error {
			return renderPie(f, "Extinction Risk Categories", in.RiskCounts, in.Denominator)
		})
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return renderToFile(paths[1], func(f *os.File) error {
			return renderPie(f, "Population Trends", in.TrendCounts, in.Denominator)
		})
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return renderToFile(paths[2], func(f *os.File) error {
			return renderRiskTrendBars(f, in.RiskTrend, in.Denominator)
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func renderToFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func renderPie(w *os.File, title string, counts []dataset.GroupCount, denom int) error {
	values := pieValues(counts, denom)
	if len(values) == 0 {
		return fmt.Errorf("no data for %q", title)
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

func renderRiskTrendBars(w *os.File, counts []dataset.GroupCount, denom int) error {
	values := barValues(counts, denom)
	if len(values) == 0 {
		return fmt.Errorf("no data for risk by trend chart")
	}

	bars := chart.BarChart{
		Title:      "Risk Category by Population Trend (% of assessed species)",
		Width:      barWidth,
		Height:     barHeight,
		BarWidth:   40,
		BarSpacing: 20,
		Background: chart.Style{Padding: chart.Box{Top: 48}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		Bars:       values,
	}
	return bars.Render(chart.PNG, w)
}

// pieValues maps group counts to pie slices labelled with the category and
// its share of the common denominator.
func pieValues(counts []dataset.GroupCount, denom int) []chart.Value {
	values := make([]chart.Value, 0, len(counts))
	for _, g := range counts {
		if g.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(g.Count),
			Label: fmt.Sprintf("%s (%.1f%%)", g.Label("?"), percent(g.Count, denom)),
		})
	}
	return values
}

// barValues maps risk/trend pair counts to bars whose heights are
// percentages of the common denominator, ordered by risk then trend
// severity rather than by count.
func barValues(counts []dataset.GroupCount, denom int) []chart.Value {
	ordered := append([]dataset.GroupCount(nil), counts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if len(a.Keys) < 2 || len(b.Keys) < 2 {
			return len(a.Keys) > len(b.Keys)
		}
		if ra, rb := dataset.RiskOrder(a.Keys[0].S), dataset.RiskOrder(b.Keys[0].S); ra != rb {
			return ra < rb
		}
		return dataset.TrendOrder(a.Keys[1].S) < dataset.TrendOrder(b.Keys[1].S)
	})

	values := make([]chart.Value, 0, len(ordered))
	for _, g := range ordered {
		if g.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: percent(g.Count, denom),
			Label: g.Label("?"),
		})
	}
	return values
}

func percent(count, denom int) float64 {
	return float64(count) / float64(denom) * 100
}
