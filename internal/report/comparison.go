package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/stats"
)

const (
	colorLead  = "#00C853" // first platform ahead
	colorTrail = "#FF1744" // second platform ahead
)

// WriteComparison renders the two-panel platform comparison for a market
// key into <key>_comparison.html.
func (g *Generator) WriteComparison(key, title string, a, b model.MarketSeries, milestones []Milestone) (string, error) {
	return g.writeFile(key+"_comparison.html", func(w io.Writer) error {
		return g.RenderComparison(w, title, a, b, milestones)
	})
}

// RenderComparison writes a page with a price overlay line chart and a
// daily price-difference bar chart for the shared dates of two series.
func (g *Generator) RenderComparison(w io.Writer, title string, a, b model.MarketSeries, milestones []Milestone) error {
	al := stats.Align(a.Bars, b.Bars)
	if al.Len() == 0 {
		return fmt.Errorf("comparison %q: no overlapping dates", title)
	}

	pricesA, pricesB := al.Prices(100)
	diff := stats.Diffs(pricesA, pricesB)

	subtitle := fmt.Sprintf(
		"%d shared days | avg diff %+.1f pts | max %s lead %+.1f | max %s lead %+.1f",
		al.Len(), stats.Mean(diff),
		seriesName(a), stats.Max(diff),
		seriesName(b), -stats.Min(diff),
	)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "1100px",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Win Probability (%)"}),
	)

	line.SetXAxis(al.Dates).
		AddSeries(seriesName(a), lineData(pricesA)).
		AddSeries(seriesName(b), lineData(pricesB)).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false), ShowSymbol: opts.Bool(true)}),
			charts.WithMarkLineNameXAxisItemOpts(milestoneMarks(milestones, al.Dates)...),
		)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  g.echartsTheme(),
			Width:  "1100px",
			Height: "260px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Price Difference (%s - %s)", seriesName(a), seriesName(b)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Diff (pts)"}),
	)

	bar.SetXAxis(al.Dates).
		AddSeries("Difference", signedBarData(diff)).
		SetSeriesOptions(
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "parity", YAxis: 0}),
		)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(line, bar)
	return page.Render(w)
}

// WriteScatter renders the price-vs-price scatter into <key>_scatter.html.
func (g *Generator) WriteScatter(key, title string, a, b model.MarketSeries) (string, error) {
	return g.writeFile(key+"_scatter.html", func(w io.Writer) error {
		return g.RenderScatter(w, title, a, b)
	})
}

// RenderScatter writes a price correlation scatter with a parity line, a
// least-squares trendline, and the Pearson r in the subtitle.
func (g *Generator) RenderScatter(w io.Writer, title string, a, b model.MarketSeries) error {
	al := stats.Align(a.Bars, b.Bars)
	if al.Len() == 0 {
		return fmt.Errorf("scatter %q: no overlapping dates", title)
	}

	pricesA, pricesB := al.Prices(100)
	r := stats.Pearson(pricesA, pricesB)
	slope, intercept := stats.LinearFit(pricesB, pricesA)

	lo := stats.Min(append(append([]float64{}, pricesA...), pricesB...)) - 2
	hi := stats.Max(append(append([]float64{}, pricesA...), pricesB...)) + 2

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "760px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("Pearson r = %.3f over %d shared days. Above the parity line %s prices higher.", r, al.Len(), seriesName(a)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: seriesName(b) + " (%)", Type: "value", Min: lo, Max: hi}),
		charts.WithYAxisOpts(opts.YAxis{Name: seriesName(a) + " (%)", Type: "value", Min: lo, Max: hi}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "2%"}),
	)

	points := make([]opts.ScatterData, al.Len())
	for i := range al.Dates {
		points[i] = opts.ScatterData{
			Name:       al.Dates[i],
			Value:      []any{pricesB[i], pricesA[i]},
			SymbolSize: 10,
		}
	}
	scatter.AddSeries("Daily close", points)

	parity := charts.NewLine()
	parity.SetXAxis(nil).
		AddSeries("Parity", []opts.LineData{
			{Value: []any{lo, lo}},
			{Value: []any{hi, hi}},
		}).
		AddSeries("Trend", []opts.LineData{
			{Value: []any{lo, slope*lo + intercept}},
			{Value: []any{hi, slope*hi + intercept}},
		}).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Opacity: 0.6}),
		)

	scatter.Overlap(parity)
	return scatter.Render(w)
}

// WriteVolume renders the grouped daily volume bars into <key>_volume.html.
func (g *Generator) WriteVolume(key, title string, a, b model.MarketSeries) (string, error) {
	return g.writeFile(key+"_volume.html", func(w io.Writer) error {
		return g.RenderVolume(w, title, a, b)
	})
}

// RenderVolume writes grouped daily volume bars (millions USD) for the
// shared dates, with totals and the volume ratio in the subtitle.
func (g *Generator) RenderVolume(w io.Writer, title string, a, b model.MarketSeries) error {
	al := stats.Align(a.Bars, b.Bars)
	if al.Len() == 0 {
		return fmt.Errorf("volume %q: no overlapping dates", title)
	}

	volsA, volsB := al.Volumes(1e6)
	totalA := stats.Sum(volsA)
	totalB := stats.Sum(volsB)

	subtitle := fmt.Sprintf("%d days | %s $%.1fM | %s $%.1fM",
		al.Len(), seriesName(a), totalA, seriesName(b), totalB)
	if totalA > 0 {
		subtitle += fmt.Sprintf(" | ratio %.1fx", totalB/totalA)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "1100px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Daily Volume ($M)"}),
	)

	bar.SetXAxis(al.Dates).
		AddSeries(seriesName(a), barData(volsA)).
		AddSeries(seriesName(b), barData(volsB))

	return bar.Render(w)
}

// seriesName labels a series by platform, falling back to its key.
func seriesName(s model.MarketSeries) string {
	name := s.Platform
	if name == "" {
		name = s.Key
	}
	if name == "" {
		return "Series"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func lineData(xs []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i, x := range xs {
		out[i] = opts.LineData{Value: x}
	}
	return out
}

func barData(xs []float64) []opts.BarData {
	out := make([]opts.BarData, len(xs))
	for i, x := range xs {
		out[i] = opts.BarData{Value: x}
	}
	return out
}

// signedBarData colors positive bars green and negative bars red.
func signedBarData(xs []float64) []opts.BarData {
	out := make([]opts.BarData, len(xs))
	for i, x := range xs {
		color := colorLead
		if x < 0 {
			color = colorTrail
		}
		out[i] = opts.BarData{Value: x, ItemStyle: &opts.ItemStyle{Color: color}}
	}
	return out
}

// milestoneMarks builds vertical mark lines for milestones that fall
// inside the chart's date range.
func milestoneMarks(milestones []Milestone, dates []string) []opts.MarkLineNameXAxisItem {
	inRange := make(map[string]bool, len(dates))
	for _, d := range dates {
		inRange[d] = true
	}

	var marks []opts.MarkLineNameXAxisItem
	for _, m := range milestones {
		if inRange[m.Date] {
			marks = append(marks, opts.MarkLineNameXAxisItem{Name: m.Label, XAxis: m.Date})
		}
	}
	return marks
}
