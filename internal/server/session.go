package server

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/mapview"
	"github.com/sells-group/housing-dashboard/internal/orchestrator"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/render"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// Request kinds handled by the session on top of the orchestrator events.
const (
	KindPointerMove  = "pointer_move"
	KindPointerClick = "pointer_click"
	KindViewport     = "viewport"
)

// ErrBadRequest marks a malformed event request.
var ErrBadRequest = eris.New("server: bad request")

// Session is one headless dashboard: an orchestrator wired to an in-memory
// map and recording chart and panel adapters. Requests on one session are
// serialized so that map bounds, state and views are read and written
// together.
type Session struct {
	ID      string
	Created time.Time

	mu     sync.Mutex
	orch   *orchestrator.Orchestrator
	maps   *mapview.Map
	charts *render.Charts
	panel  *render.Panel
}

// NewSession builds a session over store and renders its initial views.
func NewSession(id string, store *feature.Store, viewport projector.Size, layout projector.TooltipLayout) *Session {
	s := &Session{
		ID:      id,
		Created: time.Now().UTC(),
		maps:    mapview.New(store, viewport),
		charts:  render.NewCharts(),
		panel:   render.NewPanel(),
	}
	s.orch = orchestrator.New(projector.New(store, layout), s.maps, s.charts, s.panel)
	s.orch.Start()
	return s
}

// Orchestrator returns the session's orchestrator.
func (s *Session) Orchestrator() *orchestrator.Orchestrator { return s.orch }

// Snapshot returns everything the session currently shows.
func (s *Session) Snapshot() render.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() render.Snapshot {
	return render.Take(s.orch.Revision(), s.orch.State(), s.maps, s.charts, s.panel)
}

// EventRequest is the wire form of an event. Kind is an orchestrator event
// name or one of pointer_move, pointer_click and viewport. Pointer requests
// are hit-tested against the map; viewport requests carry a lon/lat BBox
// [minX, minY, maxX, maxY] and become a viewport_idle event.
type EventRequest struct {
	Kind      string          `json:"kind" yaml:"kind"`
	Layer     string          `json:"layer,omitempty" yaml:"layer"`
	Year      int             `json:"year,omitempty" yaml:"year"`
	Threshold int             `json:"threshold,omitempty" yaml:"threshold"`
	Ref       *feature.Ref    `json:"ref,omitempty" yaml:"ref"`
	Point     selection.Point `json:"point" yaml:"point"`
	Visible   []feature.Ref   `json:"visible,omitempty" yaml:"visible"`
	BBox      []float64       `json:"bbox,omitempty" yaml:"bbox"`
}

// Apply runs one request against the session.
func (s *Session) Apply(req EventRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(req)
}

// ApplySnapshot runs req and returns the snapshot it produced. A rejected
// request returns the error and no snapshot.
func (s *Session) ApplySnapshot(req EventRequest) (render.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.apply(req); err != nil {
		return render.Snapshot{}, err
	}
	return s.snapshot(), nil
}

func (s *Session) apply(req EventRequest) error {
	switch req.Kind {
	case KindPointerMove:
		return s.orch.PointerMove(req.Point)
	case KindPointerClick:
		_, err := s.orch.PointerClick(req.Point)
		return err
	case KindViewport:
		if len(req.BBox) != 4 {
			return eris.Wrap(ErrBadRequest, "bbox needs 4 values")
		}
		if err := s.maps.SetBounds(req.BBox[0], req.BBox[1], req.BBox[2], req.BBox[3]); err != nil {
			return err
		}
		return s.orch.Dispatch(orchestrator.ViewportIdle(s.maps.RenderedFeatures(s.orch.State().Layer)))
	}

	kind, err := orchestrator.ParseEventKind(req.Kind)
	if err != nil {
		return err
	}
	ev := orchestrator.Event{
		Kind:      kind,
		Layer:     selection.Layer(req.Layer),
		Year:      req.Year,
		Threshold: req.Threshold,
		Point:     req.Point,
		Visible:   req.Visible,
	}
	switch kind {
	case orchestrator.EventSetLayer:
		if ev.Layer, err = selection.ParseLayer(req.Layer); err != nil {
			return err
		}
	case orchestrator.EventHover, orchestrator.EventClick:
		if req.Ref == nil || req.Ref.ID == "" {
			return eris.Wrapf(ErrBadRequest, "%s needs a ref", req.Kind)
		}
		ev.Ref = *req.Ref
	}
	return s.orch.Dispatch(ev)
}
