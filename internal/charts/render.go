package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"prediction-dashboard-service/internal/analytics"
)

// Default and maximum PNG size. Larger requests are clamped.
const (
	DefaultWidth  = 1024
	DefaultHeight = 350
	MaxWidth      = 4096
	MaxHeight     = 2048
)

// ErrNothingToRender is returned when a time series has no plottable point.
var ErrNothingToRender = errors.New("series has no plottable points")

// RenderPNG draws s as a PNG using the presentation in def.
func RenderPNG(w io.Writer, def Definition, s analytics.Series, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	width = min(width, MaxWidth)
	height = min(height, MaxHeight)

	switch s.Kind {
	case analytics.KindHistogram:
		return renderBars(w, def, s, width, height)
	case analytics.KindTimeSeries:
		return renderLine(w, def, s, width, height)
	default:
		return fmt.Errorf("render %s: unknown series kind %q", def.Name, s.Kind)
	}
}

func renderLine(w io.Writer, def Definition, s analytics.Series, width, height int) error {
	var xs []time.Time
	var ys []float64
	for _, p := range s.Points {
		// NaN points cannot be drawn
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		xs = append(xs, time.UnixMilli(int64(p.X)).UTC())
		ys = append(ys, p.Y)
	}
	if len(xs) == 0 {
		return fmt.Errorf("render %s: %w", def.Name, ErrNothingToRender)
	}
	// A single point has a zero x range; widen it by a second.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(time.Second))
		ys = append(ys, ys[0])
	}

	yAxis := chart.YAxis{Name: def.YAxisTitle}
	if lo, hi := minMax(ys); lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
	}

	graph := chart.Chart{
		Title:  def.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           def.XAxisTitle,
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04:05"),
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    s.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

func renderBars(w io.Writer, def Definition, s analytics.Series, width, height int) error {
	bars := make([]chart.Value, len(s.Counts))
	top := 0
	for i, c := range s.Counts {
		label := ""
		if i < len(s.Categories) {
			label = s.Categories[i]
		}
		bars[i] = chart.Value{Label: label, Value: float64(c)}
		if i < len(def.Colors) {
			color := drawing.ColorFromHex(strings.TrimPrefix(def.Colors[i], "#"))
			bars[i].Style = chart.Style{FillColor: color, StrokeColor: color}
		}
		if c > top {
			top = c
		}
	}
	if len(bars) == 0 {
		return fmt.Errorf("render %s: %w", def.Name, ErrNothingToRender)
	}
	if top == 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:    def.Title,
		Width:    width,
		Height:   height,
		BarWidth: width / (2 * len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  def.YAxisTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
