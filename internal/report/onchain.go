package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/oddsight/oddsight/internal/model"
	"github.com/oddsight/oddsight/internal/stats"
)

// WriteOnchainVolume renders the daily on-chain volume bars into
// onchain_volume.html.
func (g *Generator) WriteOnchainVolume(title string, rows []model.VolumeRow) (string, error) {
	return g.writeFile("onchain_volume.html", func(w io.Writer) error {
		return g.RenderOnchainVolume(w, title, rows)
	})
}

// RenderOnchainVolume writes aggregate exchange volume per day (millions
// USD) with a rolling-mean trend line.
func (g *Generator) RenderOnchainVolume(w io.Writer, title string, rows []model.VolumeRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("onchain volume %q: no rows", title)
	}

	// Cached rows carry no order guarantee; the rolling trend needs one.
	sorted := make([]model.VolumeRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	dates := make([]string, len(sorted))
	volumes := make([]float64, len(sorted))
	for i, r := range sorted {
		dates[i] = r.Date
		volumes[i] = r.VolumeUSD / 1e6
	}
	trend := stats.RollingMean(volumes, trendWindow, 1)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "1100px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Subtitle: fmt.Sprintf("%d days | total $%.1fM | daily avg $%.1fM",
				len(rows), stats.Sum(volumes), stats.Mean(volumes)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Volume ($M)"}),
	)
	bar.SetXAxis(dates).AddSeries("On-chain Volume", barData(volumes))

	line := charts.NewLine()
	line.SetXAxis(dates).
		AddSeries(fmt.Sprintf("%d-day avg", trendWindow), trendLineData(trend)).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)

	bar.Overlap(line)
	return bar.Render(w)
}
