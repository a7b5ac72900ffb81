// Package mapview is an in-memory map engine over the store's geometries:
// a lon/lat viewport mapped onto a pixel canvas, per-layer visibility,
// point-in-polygon hit testing and per-feature hover state.
package mapview

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// ErrEmptyBounds is returned when a viewport has no area.
var ErrEmptyBounds = eris.New("mapview: empty bounds")

type shape struct {
	ref    feature.Ref
	geom   geom.T
	bounds *geom.Bounds
}

// Map implements the dashboard's map adapter in memory. It is safe for
// concurrent use.
type Map struct {
	mu       sync.RWMutex
	shapes   map[feature.Kind][]shape
	extent   *geom.Bounds
	bounds   *geom.Bounds
	viewport projector.Size
	layers   map[selection.Layer]bool
	hovered  map[feature.Ref]bool
}

// New builds a map over store's tracts and zones with the viewport showing
// their full extent.
func New(store *feature.Store, viewport projector.Size) *Map {
	m := &Map{
		shapes:   make(map[feature.Kind][]shape),
		extent:   geom.NewBounds(geom.XY),
		viewport: viewport,
		layers:   make(map[selection.Layer]bool),
		hovered:  make(map[feature.Ref]bool),
	}
	for _, t := range store.Tracts.All() {
		m.add(t.Ref(), t.Geometry)
	}
	for _, z := range store.Zones.All() {
		m.add(z.Ref(), z.Geometry)
	}
	m.bounds = geom.NewBounds(geom.XY).Set(m.extent.Min(0), m.extent.Min(1), m.extent.Max(0), m.extent.Max(1))
	return m
}

func (m *Map) add(ref feature.Ref, g geom.T) {
	if g == nil || len(g.FlatCoords()) == 0 {
		return
	}
	b := g.Bounds()
	m.shapes[ref.Kind] = append(m.shapes[ref.Kind], shape{ref: ref, geom: g, bounds: b})
	m.extent.Extend(g)
}

// Extent returns the bounds of every geometry on the map.
func (m *Map) Extent() *geom.Bounds { return m.extent.Clone() }

// Bounds returns the lon/lat box currently in view.
func (m *Map) Bounds() *geom.Bounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bounds.Clone()
}

// SetBounds pans and zooms the viewport to the lon/lat box.
func (m *Map) SetBounds(minX, minY, maxX, maxY float64) error {
	if maxX <= minX || maxY <= minY {
		return eris.Wrapf(ErrEmptyBounds, "[%g %g %g %g]", minX, minY, maxX, maxY)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bounds = geom.NewBounds(geom.XY).Set(minX, minY, maxX, maxY)
	return nil
}

// Viewport returns the canvas size in pixels.
func (m *Map) Viewport() projector.Size { return m.viewport }

// RenderedFeatures returns the features of layer whose bounds intersect the
// viewport, in dataset order.
func (m *Map) RenderedFeatures(layer selection.Layer) []feature.Ref {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []feature.Ref
	for _, s := range m.shapes[layer.FeatureKind()] {
		if s.bounds.Overlaps(geom.XY, m.bounds) {
			out = append(out, s.ref)
		}
	}
	return out
}

// SetLayerVisibility shows or hides a thematic layer.
func (m *Map) SetLayerVisibility(layer selection.Layer, visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layers[layer] = visible
}

// VisibleLayers returns the shown layers in control order.
func (m *Map) VisibleLayers() []selection.Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []selection.Layer
	for _, l := range selection.Layers {
		if m.layers[l] {
			out = append(out, l)
		}
	}
	return out
}

// ToLonLat converts a screen point to map coordinates. Screen y grows
// downward.
func (m *Map) ToLonLat(p selection.Point) geom.Coord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.toLonLat(p)
}

func (m *Map) toLonLat(p selection.Point) geom.Coord {
	if m.viewport.Width <= 0 || m.viewport.Height <= 0 {
		return geom.Coord{m.bounds.Min(0), m.bounds.Max(1)}
	}
	w := m.bounds.Max(0) - m.bounds.Min(0)
	h := m.bounds.Max(1) - m.bounds.Min(1)
	return geom.Coord{
		m.bounds.Min(0) + p.X/m.viewport.Width*w,
		m.bounds.Max(1) - p.Y/m.viewport.Height*h,
	}
}

// HitTest returns the first feature of a visible layer containing the
// screen point. Point geometries are never hit.
func (m *Map) HitTest(p selection.Point) (feature.Ref, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.toLonLat(p)
	for _, l := range selection.Layers {
		if !m.layers[l] {
			continue
		}
		for _, s := range m.shapes[l.FeatureKind()] {
			if s.bounds.OverlapsPoint(geom.XY, c) && contains(s.geom, c) {
				return s.ref, true
			}
		}
	}
	return feature.Ref{}, false
}

func contains(g geom.T, c geom.Coord) bool {
	switch g := g.(type) {
	case *geom.Polygon:
		return polygonContains(g, c)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if polygonContains(g.Polygon(i), c) {
				return true
			}
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 || !xy.IsPointInRing(geom.XY, c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(geom.XY, c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// SetFeatureState sets a feature's hover highlight.
func (m *Map) SetFeatureState(ref feature.Ref, hover bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hover {
		m.hovered[ref] = true
		return
	}
	delete(m.hovered, ref)
}

// IsHighlighted reports a feature's hover highlight.
func (m *Map) IsHighlighted(ref feature.Ref) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hovered[ref]
}

// Highlighted returns every highlighted feature sorted by kind and id.
func (m *Map) Highlighted() []feature.Ref {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]feature.Ref, 0, len(m.hovered))
	for r := range m.hovered {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}
