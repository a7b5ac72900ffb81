package orchestrator

import (
	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// MapAdapter is the map rendering engine.
type MapAdapter interface {
	// RenderedFeatures returns the features of layer currently in view.
	RenderedFeatures(layer selection.Layer) []feature.Ref
	SetLayerVisibility(layer selection.Layer, visible bool)
	// HitTest returns the topmost visible feature under a screen point.
	HitTest(p selection.Point) (feature.Ref, bool)
	SetFeatureState(ref feature.Ref, hover bool)
	Viewport() projector.Size
}

// ChartAdapter is the charting engine. A chart keeps its prior series until
// they are replaced.
type ChartAdapter interface {
	ReplaceSeries(chart projector.ChartName, series []projector.Series)
}

// PanelAdapter renders the legend, stat block and tooltip.
type PanelAdapter interface {
	RenderLegend(legend projector.Legend)
	RenderStat(stat projector.Stat)
	ShowTooltip(tooltip projector.Tooltip)
	HideTooltip()
}
