// Package projector derives presentation payloads (stat block, chart series,
// legend, tooltip) from the selection state and the feature store. Every
// function here is pure: the same store and state always yield the same
// output.
package projector

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display markers for missing values.
const (
	// NoData marks a view with no records to aggregate.
	NoData = "No data"
	// Placeholder stands in for a missing attribute.
	Placeholder = "—"
)

// RankedLimit is the number of neighborhoods in the ranked bar chart.
const RankedLimit = 8

// ChartName identifies one of the chart widgets.
type ChartName string

// Chart widgets.
const (
	ChartRanked    ChartName = "ranked"
	ChartTrend     ChartName = "trend"
	ChartBreakdown ChartName = "breakdown"
	ChartFeature   ChartName = "feature"
)

// Charts lists every chart widget.
var Charts = []ChartName{ChartRanked, ChartTrend, ChartBreakdown, ChartFeature}

// Point is one (category, value) pair.
type Point struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Series is a labeled list of points.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// Stat is the stat block.
type Stat struct {
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	SubLabel string   `json:"sub_label"`
	Number   *float64 `json:"number,omitempty"`
	NoData   bool     `json:"no_data"`
}

// LegendItem is one swatch of a legend.
type LegendItem struct {
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// Legend describes the active layer's color scale.
type Legend struct {
	Title string       `json:"title" yaml:"title"`
	Items []LegendItem `json:"items" yaml:"items"`
}

// TooltipRow is one label/value line of a tooltip.
type TooltipRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Tooltip is the hover tooltip content and its clamped screen position.
type Tooltip struct {
	Title string       `json:"title"`
	Rows  []TooltipRow `json:"rows"`
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
}

// Frame is the full derived view for one state.
type Frame struct {
	Stat    Stat                   `json:"stat"`
	Legend  Legend                 `json:"legend"`
	Charts  map[ChartName][]Series `json:"charts"`
	Tooltip *Tooltip               `json:"tooltip,omitempty"`
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

func formatRent(v float64) string {
	return printer().Sprintf("$%.0f", v)
}

func formatPercent(v float64) string {
	return printer().Sprintf("%.1f%%", v)
}

func formatCount(n int) string {
	return printer().Sprintf("%d", n)
}
