package analytics

import "context"

// ChartName identifies one dashboard chart.
type ChartName string

const (
	ChartScoreTimeSeries   ChartName = "timeSeries"
	ChartScoreDistribution ChartName = "distribution"
	ChartCleanProb         ChartName = "cleanProb"
	ChartMildGibberish     ChartName = "mildGibberish"
	ChartNoise             ChartName = "noise"
	ChartWordSalad         ChartName = "wordSalad"
	ChartLabelDistribution ChartName = "labelDistribution"
	ChartProcessingTime    ChartName = "processingTime"
)

// ChartNames lists every chart in dashboard order.
var ChartNames = []ChartName{
	ChartScoreTimeSeries,
	ChartScoreDistribution,
	ChartCleanProb,
	ChartMildGibberish,
	ChartNoise,
	ChartWordSalad,
	ChartLabelDistribution,
	ChartProcessingTime,
}

// Known reports whether n is one of ChartNames.
func (n ChartName) Known() bool {
	for _, c := range ChartNames {
		if c == n {
			return true
		}
	}
	return false
}

// SeriesKind distinguishes time series from category histograms.
type SeriesKind string

const (
	KindTimeSeries SeriesKind = "timeseries"
	KindHistogram  SeriesKind = "histogram"
)

// Series is the full replacement data for one chart.
type Series struct {
	Chart      ChartName  `json:"chart"`
	Name       string     `json:"name"`
	Kind       SeriesKind `json:"kind"`
	Points     []Point    `json:"points,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Counts     []int      `json:"counts,omitempty"`
}

// TimeSeries builds a line-chart series.
func TimeSeries(chart ChartName, name string, points []Point) Series {
	return Series{Chart: chart, Name: name, Kind: KindTimeSeries, Points: points}
}

// HistogramSeries builds a bar-chart series from h.
func HistogramSeries(chart ChartName, name string, h Histogram) Series {
	return Series{
		Chart:      chart,
		Name:       name,
		Kind:       KindHistogram,
		Categories: h.Categories,
		Counts:     h.Counts,
	}
}

// ChartHandle is the write side of a rendered chart. ReplaceSeries swaps the
// whole series; handles are never read back.
type ChartHandle interface {
	ReplaceSeries(ctx context.Context, s Series) error
}

// ChartHandleFunc adapts a function to ChartHandle.
type ChartHandleFunc func(ctx context.Context, s Series) error

// ReplaceSeries calls f.
func (f ChartHandleFunc) ReplaceSeries(ctx context.Context, s Series) error {
	return f(ctx, s)
}

// Registry holds the handles of the charts currently displayed. A missing or
// nil entry means the chart is not shown.
type Registry map[ChartName]ChartHandle
