package projector

import (
	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// Size is a width and height in pixels.
type Size struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

// TooltipLayout sizes and offsets the tooltip box from the pointer.
type TooltipLayout struct {
	Box    Size    `mapstructure:"box"`
	Offset float64 `mapstructure:"offset"`
}

// DefaultTooltipLayout is used when no layout is configured.
var DefaultTooltipLayout = TooltipLayout{Box: Size{Width: 220, Height: 96}, Offset: 12}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func rentValue(v *float64) string {
	if v == nil || *v <= 0 {
		return Placeholder
	}
	return formatRent(*v)
}

func percentValue(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return formatPercent(*v)
}

// TooltipContent returns the tooltip title and rows for ref under layer.
// Unresolvable refs and missing attributes render as the placeholder.
func TooltipContent(store *feature.Store, layer selection.Layer, threshold int, ref feature.Ref) (string, []TooltipRow) {
	name, _ := store.Name(ref)
	title := orPlaceholder(name)

	if layer == selection.LayerMHA {
		z, _ := store.Zone(ref.ID)
		if ref.Kind != feature.KindZone {
			z = feature.Zone{}
		}
		return title, []TooltipRow{
			{Label: "MHA tier", Value: orPlaceholder(z.Tier)},
			{Label: "Category", Value: orPlaceholder(z.Category)},
		}
	}

	t, _ := store.Tract(ref.ID)
	if ref.Kind != feature.KindTract {
		t = feature.Tract{}
	}
	rows := []TooltipRow{{Label: "Neighborhood", Value: orPlaceholder(t.Neighborhood)}}
	if layer == selection.LayerBurden {
		rows = append(rows, TooltipRow{
			Label: "Burdened (" + formatCount(threshold) + "%+)",
			Value: percentValue(t.Burden(threshold)),
		})
	} else {
		rows = append(rows, TooltipRow{Label: "Median rent", Value: rentValue(t.MedianRent)})
	}
	return title, rows
}

// PlaceTooltip positions a tooltip box below-right of pointer, flipping to
// the other side when it would overflow and clamping into the viewport.
func PlaceTooltip(pointer selection.Point, viewport Size, layout TooltipLayout) (x, y float64) {
	x = pointer.X + layout.Offset
	y = pointer.Y + layout.Offset
	if x+layout.Box.Width > viewport.Width {
		x = pointer.X - layout.Offset - layout.Box.Width
	}
	if y+layout.Box.Height > viewport.Height {
		y = pointer.Y - layout.Offset - layout.Box.Height
	}
	return clamp(x, 0, viewport.Width-layout.Box.Width), clamp(y, 0, viewport.Height-layout.Box.Height)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TooltipFor builds the tooltip of the hovered feature, or nil when nothing
// is hovered.
func TooltipFor(store *feature.Store, s selection.State, viewport Size, layout TooltipLayout) *Tooltip {
	if s.Hovered == nil {
		return nil
	}
	title, rows := TooltipContent(store, s.Layer, s.Threshold, *s.Hovered)
	x, y := PlaceTooltip(s.Pointer, viewport, layout)
	return &Tooltip{Title: title, Rows: rows, X: x, Y: y}
}
