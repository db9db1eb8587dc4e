package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/stats"
)

// trendWindow is the rolling-mean window for smoothed price overlays.
const trendWindow = 3

// WritePriceVolume renders the price/volume timeline page into
// <key>_price_volume.html.
func (g *Generator) WritePriceVolume(key, title string, s model.MarketSeries) (string, error) {
	return g.writeFile(key+"_price_volume.html", func(w io.Writer) error {
		return g.RenderPriceVolume(w, title, s)
	})
}

// RenderPriceVolume writes a single-market page: a dual-axis timeline
// (price line with a rolling-mean trend on the left axis, daily volume
// bars on the right) with the price/volume Pearson r in the subtitle,
// and a daily percentage-change bar panel below.
func (g *Generator) RenderPriceVolume(w io.Writer, title string, s model.MarketSeries) error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("price-volume %q: empty series", title)
	}

	dates, prices, volumes := stats.Bars(s.Bars)
	for i := range prices {
		prices[i] *= 100
	}
	for i := range volumes {
		volumes[i] /= 1e6
	}
	trend := stats.RollingMean(prices, trendWindow, 1)
	r := stats.Pearson(prices, volumes)

	first, last := s.DateRange()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "1100px",
			Height:    "550px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Subtitle: fmt.Sprintf("%s to %s | %d days | total volume $%.1fM | price/volume r = %.3f",
				first, last, len(s.Bars), s.TotalVolume/1e6, r),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price (%)"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Volume ($M)", Type: "value"})

	line.SetXAxis(dates).
		AddSeries("Price", lineData(prices)).
		AddSeries(fmt.Sprintf("%d-day avg", trendWindow), trendLineData(trend)).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)

	bar := charts.NewBar()
	bar.SetXAxis(dates).
		AddSeries("Volume", barData(volumes)).
		SetSeriesOptions(
			charts.WithBarChartOpts(opts.BarChart{YAxisIndex: 1}),
		)
	line.Overlap(bar)

	change := charts.NewBar()
	change.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  g.echartsTheme(),
			Width:  "1100px",
			Height: "260px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Daily Price Change"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Change (%)"}),
	)
	change.SetXAxis(dates).AddSeries("Change", signedBarData(stats.PctChanges(prices)))

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(line, change)
	return page.Render(w)
}

// WriteCombined renders the all-markets price overlay into combined_timeline.html.
func (g *Generator) WriteCombined(title string, series []model.MarketSeries) (string, error) {
	return g.writeFile("combined_timeline.html", func(w io.Writer) error {
		return g.RenderCombined(w, title, series)
	})
}

// RenderCombined writes one line chart overlaying the price history of
// every non-empty series on a shared date axis.
func (g *Generator) RenderCombined(w io.Writer, title string, series []model.MarketSeries) error {
	dateSet := make(map[string]bool)
	kept := series[:0:0]
	for _, s := range series {
		if len(s.Bars) == 0 {
			continue
		}
		kept = append(kept, s)
		for _, b := range s.Bars {
			dateSet[b.Date] = true
		}
	}
	if len(kept) == 0 {
		return fmt.Errorf("combined %q: no data", title)
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "1100px",
			Height:    "550px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d markets | %s to %s", len(kept), dates[0], dates[len(dates)-1]),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price (%)"}),
	)

	line.SetXAxis(dates)
	for _, s := range kept {
		byDate := make(map[string]float64, len(s.Bars))
		for _, b := range s.Bars {
			byDate[b.Date] = b.Price * 100
		}

		data := make([]opts.LineData, len(dates))
		for i, d := range dates {
			if p, ok := byDate[d]; ok {
				data[i] = opts.LineData{Value: p}
			} else {
				data[i] = opts.LineData{Value: nil}
			}
		}

		name := s.Title
		if name == "" {
			name = s.Key
		}
		line.AddSeries(name, data)
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), ConnectNulls: opts.Bool(true)}),
	)

	return line.Render(w)
}

// trendLineData drops NaN positions so the trend starts where the window
// has enough data.
func trendLineData(xs []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: x}
	}
	return out
}
