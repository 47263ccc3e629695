// Package report renders collection completion as an interactive HTML chart.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/projection"
)

// ErrNoSets is returned when there is nothing to chart.
var ErrNoSets = errors.New("no sets to chart")

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string // e.g. "900px"
	Height   string
	Theme    string
	Colors   []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:    "Collection completion",
		Subtitle: "Unique printings owned per set",
		Width:    "900px",
		Height:   "500px",
		Theme:    "light",
		Colors:   []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#9A60B4"},
	}
}

// RenderCompletionChart writes a bar chart with one group per set: the
// overall completion percent, then the owned ratio of every rarity.
func RenderCompletionChart(stats []projection.SetStats, config ChartConfig, w io.Writer) error {
	if len(stats) == 0 {
		return ErrNoSets
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "%",
			Min:  0,
			Max:  100,
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	)

	labels := make([]string, len(stats))
	for i, s := range stats {
		labels[i] = s.SetName
		if labels[i] == "" {
			labels[i] = s.SetCode
		}
	}
	bar.SetXAxis(labels)

	completion := make([]opts.BarData, len(stats))
	for i, s := range stats {
		completion[i] = opts.BarData{Value: s.CompletionPercent}
	}
	bar.AddSeries("Completion", completion)

	for _, rarity := range catalog.Rarities {
		data, present := raritySeries(stats, rarity)
		if present {
			bar.AddSeries(string(rarity), data)
		}
	}

	bar.SetSeriesOptions(charts.WithLabelOpts(opts.Label{
		Show:     opts.Bool(true),
		Position: "top",
	}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// raritySeries returns the owned percent of rarity per set and whether any
// set prints that rarity.
func raritySeries(stats []projection.SetStats, rarity catalog.Rarity) ([]opts.BarData, bool) {
	data := make([]opts.BarData, len(stats))
	present := false
	for i, s := range stats {
		data[i] = opts.BarData{Value: 0}
		for _, rc := range s.ByRarity {
			if rc.Rarity == rarity {
				data[i] = opts.BarData{Value: projection.CompletionPercent(rc.Owned, rc.Total)}
				present = true
			}
		}
	}
	return data, present
}

// WriteCompletionChart renders the chart into an HTML file at path.
func WriteCompletionChart(stats []projection.SetStats, config ChartConfig, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := RenderCompletionChart(stats, config, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
