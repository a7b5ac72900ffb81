package render

import (
	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// Snapshot is everything a session currently shows.
type Snapshot struct {
	Revision      uint64                                     `json:"revision"`
	State         selection.State                            `json:"state"`
	VisibleLayers []selection.Layer                          `json:"visible_layers"`
	Highlighted   []feature.Ref                              `json:"highlighted"`
	Legend        projector.Legend                           `json:"legend"`
	Stat          projector.Stat                             `json:"stat"`
	Tooltip       *projector.Tooltip                         `json:"tooltip,omitempty"`
	Charts        map[projector.ChartName][]projector.Series `json:"charts"`
}

// MapState is the map output a snapshot reads.
type MapState interface {
	VisibleLayers() []selection.Layer
	Highlighted() []feature.Ref
}

// Take assembles a snapshot from the recorders and the map.
func Take(revision uint64, state selection.State, m MapState, charts *Charts, panel *Panel) Snapshot {
	layers := m.VisibleLayers()
	if layers == nil {
		layers = []selection.Layer{}
	}
	return Snapshot{
		Revision:      revision,
		State:         state,
		VisibleLayers: layers,
		Highlighted:   m.Highlighted(),
		Legend:        panel.Legend(),
		Stat:          panel.Stat(),
		Tooltip:       panel.Tooltip(),
		Charts:        charts.All(),
	}
}
