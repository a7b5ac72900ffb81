package projector

import (
	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

var placeholderLabels = map[ChartName][]string{
	ChartRanked:    {"Select a rent or burden layer"},
	ChartTrend:     {"Renter burden over time"},
	ChartBreakdown: {raceLabel, incomeLabel},
	ChartFeature:   {rentHistoryLabel, grapiLabel},
}

// PlaceholderSeries returns the labeled, empty series a chart shows before
// it has data.
func PlaceholderSeries(chart ChartName) []Series {
	labels := placeholderLabels[chart]
	out := make([]Series, 0, len(labels))
	for _, l := range labels {
		out = append(out, Series{Label: l, Points: []Point{}})
	}
	return out
}

// Projector derives views from a read-only store.
type Projector struct {
	store  *feature.Store
	layout TooltipLayout
}

// New returns a projector over store. A zero layout uses
// DefaultTooltipLayout.
func New(store *feature.Store, layout TooltipLayout) *Projector {
	if layout == (TooltipLayout{}) {
		layout = DefaultTooltipLayout
	}
	return &Projector{store: store, layout: layout}
}

// Store returns the projector's store.
func (p *Projector) Store() *feature.Store { return p.store }

// Stat computes the stat block.
func (p *Projector) Stat(s selection.State) Stat { return StatFor(p.store, s) }

// Legend returns the active layer's legend.
func (p *Projector) Legend(s selection.State) Legend { return LegendFor(s.Layer) }

// Tooltip computes the hover tooltip, or nil when nothing is hovered.
func (p *Projector) Tooltip(s selection.State, viewport Size) *Tooltip {
	return TooltipFor(p.store, s, viewport, p.layout)
}

// Chart computes one chart's series.
func (p *Projector) Chart(chart ChartName, s selection.State) []Series {
	switch chart {
	case ChartRanked:
		return RankedChart(p.store, s)
	case ChartTrend:
		return TrendChart(p.store, s.Threshold)
	case ChartBreakdown:
		return BreakdownChart(p.store, s.Year, s.Threshold)
	case ChartFeature:
		return FeatureChart(p.store, s.Selected)
	}
	return nil
}

// Project computes every view for s.
func (p *Projector) Project(s selection.State, viewport Size) Frame {
	charts := make(map[ChartName][]Series, len(Charts))
	for _, c := range Charts {
		charts[c] = p.Chart(c, s)
	}
	return Frame{
		Stat:    p.Stat(s),
		Legend:  p.Legend(s),
		Charts:  charts,
		Tooltip: p.Tooltip(s, viewport),
	}
}
