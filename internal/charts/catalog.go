// Package charts holds the dashboard chart definitions and the chart handles
// that keep, render and fan out replaced series.
package charts

import "prediction-dashboard-service/internal/analytics"

// Kind is the rendering style of a chart.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Definition describes how a chart is presented.
type Definition struct {
	Name       analytics.ChartName `json:"name"`
	Title      string              `json:"title"`
	Kind       Kind                `json:"kind"`
	XAxisTitle string              `json:"xAxisTitle"`
	YAxisTitle string              `json:"yAxisTitle"`
	Categories []string            `json:"categories,omitempty"`
	Colors     []string            `json:"colors,omitempty"`
}

func lineChart(name analytics.ChartName, title, yAxis string) Definition {
	return Definition{
		Name:       name,
		Title:      title,
		Kind:       KindLine,
		XAxisTitle: "Time",
		YAxisTitle: yAxis,
	}
}

// Catalog lists every chart definition in dashboard order.
var Catalog = []Definition{
	lineChart(analytics.ChartScoreTimeSeries, "Vectara Scores Over Time", "Score"),
	{
		Name:       analytics.ChartScoreDistribution,
		Title:      "Score Distribution",
		Kind:       KindBar,
		XAxisTitle: "Score Range",
		YAxisTitle: "Count",
		Categories: analytics.ScoreRanges,
	},
	lineChart(analytics.ChartCleanProb, "Clean Probability Over Time", "Probability"),
	lineChart(analytics.ChartMildGibberish, "Mild Gibberish Probability Over Time", "Probability"),
	lineChart(analytics.ChartNoise, "Noise Probability Over Time", "Probability"),
	lineChart(analytics.ChartWordSalad, "Word Salad Probability Over Time", "Probability"),
	{
		Name:       analytics.ChartLabelDistribution,
		Title:      "Predicted Label Distribution",
		Kind:       KindBar,
		XAxisTitle: "Predicted Label",
		YAxisTitle: "Count",
		Categories: analytics.Labels,
		Colors:     []string{"#2ecc71", "#f1c40f", "#e67e22", "#e74c3c"},
	},
	lineChart(analytics.ChartProcessingTime, "Processing Time Over Time", "Processing Time (ms)"),
}

// Lookup returns the definition of name.
func Lookup(name analytics.ChartName) (Definition, bool) {
	for _, d := range Catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
