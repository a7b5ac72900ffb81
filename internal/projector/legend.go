package projector

import (
	_ "embed"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/housing-dashboard/internal/selection"
)

//go:embed legends.yaml
var legendsYAML []byte

var (
	legendsOnce sync.Once
	legends     map[selection.Layer]Legend
	legendsErr  error
)

// ParseLegends parses a legend catalog keyed by layer name.
func ParseLegends(data []byte) (map[selection.Layer]Legend, error) {
	var raw map[string]Legend
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "projector: parse legends")
	}
	out := make(map[selection.Layer]Legend, len(raw))
	for name, l := range raw {
		layer, err := selection.ParseLayer(name)
		if err != nil {
			return nil, eris.Wrap(err, "projector: legend catalog")
		}
		out[layer] = l
	}
	for _, l := range selection.Layers {
		if _, ok := out[l]; !ok {
			return nil, eris.Errorf("projector: no legend for layer %s", l)
		}
	}
	return out, nil
}

// LegendFor returns the legend of layer from the embedded catalog.
func LegendFor(layer selection.Layer) Legend {
	legendsOnce.Do(func() {
		legends, legendsErr = ParseLegends(legendsYAML)
	})
	if legendsErr != nil {
		panic(legendsErr)
	}
	l := legends[layer]
	return Legend{Title: l.Title, Items: append([]LegendItem(nil), l.Items...)}
}
