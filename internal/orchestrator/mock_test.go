package orchestrator

import (
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// --- Map Mock ---

type mockMap struct {
	mock.Mock
}

func (m *mockMap) RenderedFeatures(layer selection.Layer) []feature.Ref {
	args := m.Called(layer)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]feature.Ref)
}

func (m *mockMap) SetLayerVisibility(layer selection.Layer, visible bool) {
	m.Called(layer, visible)
}

func (m *mockMap) HitTest(p selection.Point) (feature.Ref, bool) {
	args := m.Called(p)
	return args.Get(0).(feature.Ref), args.Bool(1)
}

func (m *mockMap) SetFeatureState(ref feature.Ref, hover bool) {
	m.Called(ref, hover)
}

func (m *mockMap) Viewport() projector.Size {
	args := m.Called()
	return args.Get(0).(projector.Size)
}

// --- Chart Mock ---

type mockCharts struct {
	mock.Mock
}

func (m *mockCharts) ReplaceSeries(chart projector.ChartName, series []projector.Series) {
	m.Called(chart, series)
}

// --- Panel Mock ---

type mockPanel struct {
	mock.Mock
}

func (m *mockPanel) RenderLegend(legend projector.Legend) { m.Called(legend) }

func (m *mockPanel) RenderStat(stat projector.Stat) { m.Called(stat) }

func (m *mockPanel) ShowTooltip(tooltip projector.Tooltip) { m.Called(tooltip) }

func (m *mockPanel) HideTooltip() { m.Called() }
