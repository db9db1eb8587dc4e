package report

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/oddsight/oddsight/internal/model"
)

// WritePNGDashboard renders each market's price timeline as a PNG into
// <key>_dashboard.png. Markets with fewer than two bars are skipped.
// Returns the paths written.
func (g *Generator) WritePNGDashboard(series []model.MarketSeries) ([]string, error) {
	var paths []string
	for _, s := range series {
		if len(s.Bars) < 2 {
			g.logger.Warn("skipping png, not enough data", "key", s.Key, "bars", len(s.Bars))
			continue
		}

		path, err := g.writeFile(s.Key+"_dashboard.png", func(w io.Writer) error {
			return RenderPNGTimeline(w, s)
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// RenderPNGTimeline draws a single market's daily price as a PNG time
// series with a 50% reference line.
func RenderPNGTimeline(w io.Writer, s model.MarketSeries) error {
	if len(s.Bars) < 2 {
		return fmt.Errorf("png %q: need at least 2 bars", s.Key)
	}

	times := make([]time.Time, len(s.Bars))
	prices := make([]float64, len(s.Bars))
	halves := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		times[i] = b.Day()
		prices[i] = b.Price * 100
		halves[i] = 50
	}

	title := s.Title
	if title == "" {
		title = s.Key
	}

	ch := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 48},
		},
		XAxis: chart.XAxis{Name: "Date"},
		YAxis: chart.YAxis{
			Name:  "Price (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    seriesName(s),
				XValues: times,
				YValues: prices,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("7C4DFF"),
					StrokeWidth: 2.5,
				},
			},
			chart.TimeSeries{
				Name:    "50%",
				XValues: times,
				YValues: halves,
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("9E9E9E"),
					StrokeWidth:     1,
					StrokeDashArray: []float64{4, 4},
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}
