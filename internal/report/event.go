package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/oddsight/oddsight/internal/model"
)

const (
	colorWinner    = "#2ECC71"
	colorCandidate = "#3498DB"
)

// WriteEvent renders the candidate breakdown page for a multi-outcome
// event into <key>_candidates.html.
func (g *Generator) WriteEvent(key string, event model.EventMarkets) (string, error) {
	return g.writeFile(key+"_candidates.html", func(w io.Writer) error {
		return g.RenderEvent(w, event)
	})
}

// RenderEvent writes a page with a per-candidate volume bar chart, a
// market-share donut, and a final-probability chart. Candidates are
// ordered by volume; the settled winner is highlighted.
func (g *Generator) RenderEvent(w io.Writer, event model.EventMarkets) error {
	if len(event.Candidates) == 0 {
		return fmt.Errorf("event %q: no candidates", event.Slug)
	}

	candidates := make([]model.CandidateMarket, len(event.Candidates))
	copy(candidates, event.Candidates)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Volume > candidates[j].Volume
	})

	total := event.TotalVolume()

	page := components.NewPage()
	page.PageTitle = event.Title
	page.AddCharts(
		g.candidateVolumeChart(event.Title, candidates, total),
		g.marketShareChart(event.Title, candidates, total),
		g.probabilityChart(event.Title, candidates),
	)
	return page.Render(w)
}

func (g *Generator) candidateVolumeChart(title string, candidates []model.CandidateMarket, total float64) *charts.Bar {
	names := make([]string, len(candidates))
	data := make([]opts.BarData, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
		color := colorCandidate
		if c.Winner() {
			color = colorWinner
		}
		data[i] = opts.BarData{
			Value:     c.Volume / 1e6,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     g.echartsTheme(),
			PageTitle: title,
			Width:     "1100px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title + ": Trading Volume by Candidate",
			Subtitle: fmt.Sprintf("%d candidates | total $%.1fM", len(candidates), total/1e6),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Volume ($M)"}),
	)
	bar.SetXAxis(names).AddSeries("Total Volume", data)
	return bar
}

func (g *Generator) marketShareChart(title string, candidates []model.CandidateMarket, total float64) *charts.Pie {
	data := make([]opts.PieData, len(candidates))
	for i, c := range candidates {
		data[i] = opts.PieData{Name: c.Name, Value: c.Volume / 1e6}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  g.echartsTheme(),
			Width:  "1100px",
			Height: "560px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title + ": Market Share by Volume",
			Subtitle: fmt.Sprintf("total $%.1fM", total/1e6),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "2%"}),
	)
	pie.AddSeries("Market Share", data).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		)
	return pie
}

func (g *Generator) probabilityChart(title string, candidates []model.CandidateMarket) *charts.Bar {
	names := make([]string, len(candidates))
	data := make([]opts.BarData, len(candidates))
	winner := ""
	for i, c := range candidates {
		names[i] = c.Name
		color := colorTrail
		if c.Winner() {
			color = colorWinner
			winner = c.Name
		}
		data[i] = opts.BarData{
			Value:     c.YesPrice * 100,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	subtitle := "Final YES probability per candidate"
	if winner != "" {
		subtitle = fmt.Sprintf("Winner: %s", winner)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  g.echartsTheme(),
			Width:  "1100px",
			Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title + ": Final Probabilities",
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Probability (%)", Max: 105}),
	)
	bar.SetXAxis(names).
		AddSeries("Final Probability", data).
		SetSeriesOptions(
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "50%", YAxis: 50}),
		)
	return bar
}
