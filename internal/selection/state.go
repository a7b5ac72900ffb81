// Package selection defines the dashboard's single mutable selection state
// and its documented defaults.
package selection

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-dashboard/internal/feature"
)

// Layer is one of the mutually exclusive thematic map layers.
type Layer string

// Thematic layers.
const (
	LayerRent   Layer = "rent"
	LayerBurden Layer = "burden"
	LayerMHA    Layer = "mha"
)

// Layers lists the thematic layers in control order.
var Layers = []Layer{LayerRent, LayerBurden, LayerMHA}

// Burden thresholds, in percent of income spent on rent.
const (
	Threshold30 = 30
	Threshold50 = 50
)

// Thresholds lists the selectable thresholds.
var Thresholds = []int{Threshold30, Threshold50}

var (
	// ErrInvalidLayer is returned for a layer outside Layers.
	ErrInvalidLayer = eris.New("selection: invalid layer")
	// ErrInvalidThreshold is returned for a threshold outside Thresholds.
	ErrInvalidThreshold = eris.New("selection: invalid threshold")
)

// ParseLayer parses a layer name case-insensitively.
func ParseLayer(s string) (Layer, error) {
	l := Layer(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", eris.Wrapf(ErrInvalidLayer, "%q", s)
	}
	return l, nil
}

// Valid reports whether l is one of Layers.
func (l Layer) Valid() bool {
	switch l {
	case LayerRent, LayerBurden, LayerMHA:
		return true
	}
	return false
}

// FeatureKind is the kind of feature the layer renders.
func (l Layer) FeatureKind() feature.Kind {
	if l == LayerMHA {
		return feature.KindZone
	}
	return feature.KindTract
}

// ValidThreshold reports whether t is one of Thresholds.
func ValidThreshold(t int) bool {
	return t == Threshold30 || t == Threshold50
}

// Point is a screen position in pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// YearDomain is the inclusive range of selectable years.
type YearDomain struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Clamp returns y limited to the domain.
func (d YearDomain) Clamp(y int) int {
	if y < d.Min {
		return d.Min
	}
	if y > d.Max {
		return d.Max
	}
	return y
}

// State is the shared selection. Only the orchestrator mutates it.
type State struct {
	Layer     Layer         `json:"layer"`
	Year      int           `json:"year"`
	Threshold int           `json:"threshold"`
	Hovered   *feature.Ref  `json:"hovered,omitempty"`
	Pointer   Point         `json:"pointer"`
	Selected  *feature.Ref  `json:"selected,omitempty"`
	Visible   []feature.Ref `json:"visible"`
}

// Defaults returns the startup state: rent layer, latest year, 50% threshold,
// nothing hovered or selected, no visible features.
func Defaults(domain YearDomain) State {
	return State{
		Layer:     LayerRent,
		Year:      domain.Max,
		Threshold: Threshold50,
		Visible:   []feature.Ref{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.Hovered != nil {
		h := *s.Hovered
		out.Hovered = &h
	}
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	out.Visible = append([]feature.Ref{}, s.Visible...)
	return out
}

// DedupeRefs returns refs with duplicates removed, keeping first occurrence.
func DedupeRefs(refs []feature.Ref) []feature.Ref {
	seen := make(map[feature.Ref]struct{}, len(refs))
	out := make([]feature.Ref, 0, len(refs))
	for _, r := range refs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
