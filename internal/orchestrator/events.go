package orchestrator

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// ErrUnknownEvent is returned for an event kind Dispatch does not handle.
var ErrUnknownEvent = eris.New("orchestrator: unknown event")

// EventKind enumerates user and map events.
type EventKind int

// Event kinds.
const (
	EventSetLayer EventKind = iota + 1
	EventSetYear
	EventSetThreshold
	EventHover
	EventUnhover
	EventClick
	EventViewportIdle
	EventReset
)

var eventNames = map[EventKind]string{
	EventSetLayer:     "set_layer",
	EventSetYear:      "set_year",
	EventSetThreshold: "set_threshold",
	EventHover:        "hover",
	EventUnhover:      "unhover",
	EventClick:        "click",
	EventViewportIdle: "viewport_idle",
	EventReset:        "reset",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseEventKind parses a snake_case event name.
func ParseEventKind(s string) (EventKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range eventNames {
		if n == name {
			return k, nil
		}
	}
	return 0, eris.Wrapf(ErrUnknownEvent, "%q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	if _, ok := eventNames[k]; !ok {
		return nil, eris.Wrapf(ErrUnknownEvent, "kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(b []byte) error {
	parsed, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Event is one input to Dispatch. Only the fields of its Kind are read.
type Event struct {
	Kind      EventKind       `json:"kind" yaml:"kind"`
	Layer     selection.Layer `json:"layer,omitempty" yaml:"layer"`
	Year      int             `json:"year,omitempty" yaml:"year"`
	Threshold int             `json:"threshold,omitempty" yaml:"threshold"`
	Ref       feature.Ref     `json:"ref,omitzero" yaml:"ref"`
	Point     selection.Point `json:"point,omitzero" yaml:"point"`
	Visible   []feature.Ref   `json:"visible,omitempty" yaml:"visible"`
}

// SetLayer switches the thematic layer.
func SetLayer(l selection.Layer) Event { return Event{Kind: EventSetLayer, Layer: l} }

// SetYear moves the year slider.
func SetYear(y int) Event { return Event{Kind: EventSetYear, Year: y} }

// SetThreshold switches the burden threshold.
func SetThreshold(t int) Event { return Event{Kind: EventSetThreshold, Threshold: t} }

// Hover reports the pointer over ref at p.
func Hover(ref feature.Ref, p selection.Point) Event {
	return Event{Kind: EventHover, Ref: ref, Point: p}
}

// Unhover reports the pointer leaving every feature.
func Unhover() Event { return Event{Kind: EventUnhover} }

// Click selects ref.
func Click(ref feature.Ref) Event { return Event{Kind: EventClick, Ref: ref} }

// ViewportIdle reports the features in view after the map settles.
func ViewportIdle(visible []feature.Ref) Event {
	return Event{Kind: EventViewportIdle, Visible: visible}
}

// Reset restores the defaults.
func Reset() Event { return Event{Kind: EventReset} }
