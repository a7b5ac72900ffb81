// Package render provides chart and panel adapters that retain the latest
// rendered output, so a headless session can be inspected or serialized.
package render

import (
	"sync"

	"github.com/sells-group/housing-dashboard/internal/projector"
)

// Charts records the latest series of each chart widget.
type Charts struct {
	mu      sync.RWMutex
	series  map[projector.ChartName][]projector.Series
	renders map[projector.ChartName]int
}

// NewCharts returns charts showing their placeholder series.
func NewCharts() *Charts {
	c := &Charts{
		series:  make(map[projector.ChartName][]projector.Series, len(projector.Charts)),
		renders: make(map[projector.ChartName]int, len(projector.Charts)),
	}
	for _, name := range projector.Charts {
		c.series[name] = projector.PlaceholderSeries(name)
	}
	return c
}

// ReplaceSeries swaps a chart's series.
func (c *Charts) ReplaceSeries(chart projector.ChartName, series []projector.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[chart] = series
	c.renders[chart]++
}

// Series returns a chart's current series.
func (c *Charts) Series(chart projector.ChartName) []projector.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.series[chart]
}

// Renders returns how many times a chart was replaced.
func (c *Charts) Renders(chart projector.ChartName) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renders[chart]
}

// All returns every chart's current series.
func (c *Charts) All() map[projector.ChartName][]projector.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[projector.ChartName][]projector.Series, len(c.series))
	for k, v := range c.series {
		out[k] = v
	}
	return out
}

// Panel records the latest legend, stat block and tooltip.
type Panel struct {
	mu      sync.RWMutex
	legend  projector.Legend
	stat    projector.Stat
	tooltip *projector.Tooltip
	renders int
}

// NewPanel returns an empty panel.
func NewPanel() *Panel { return &Panel{} }

// RenderLegend shows legend.
func (p *Panel) RenderLegend(legend projector.Legend) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.legend = legend
	p.renders++
}

// RenderStat shows stat.
func (p *Panel) RenderStat(stat projector.Stat) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stat = stat
	p.renders++
}

// ShowTooltip shows tooltip.
func (p *Panel) ShowTooltip(tooltip projector.Tooltip) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tooltip = &tooltip
	p.renders++
}

// HideTooltip hides the tooltip.
func (p *Panel) HideTooltip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tooltip = nil
	p.renders++
}

// Legend returns the shown legend.
func (p *Panel) Legend() projector.Legend {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.legend
}

// Stat returns the shown stat block.
func (p *Panel) Stat() projector.Stat {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stat
}

// Tooltip returns the shown tooltip, or nil when hidden.
func (p *Panel) Tooltip() *projector.Tooltip {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.tooltip == nil {
		return nil
	}
	t := *p.tooltip
	return &t
}

// Renders counts every panel render call.
func (p *Panel) Renders() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.renders
}
