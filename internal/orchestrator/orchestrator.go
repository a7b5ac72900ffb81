// Package orchestrator owns the selection state and turns events into state
// transitions and adapter renders. Events are processed one at a time; every
// view an event touches is computed before any adapter is called.
package orchestrator

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/projector"
	"github.com/sells-group/housing-dashboard/internal/selection"
)

// Orchestrator serializes events against one selection state.
type Orchestrator struct {
	mu       sync.Mutex
	proj     *projector.Projector
	domain   selection.YearDomain
	maps     MapAdapter
	charts   ChartAdapter
	panel    PanelAdapter
	state    selection.State
	revision uint64
	log      *zap.Logger
}

// New creates an orchestrator in the default state. Nothing is rendered
// until Start.
func New(proj *projector.Projector, maps MapAdapter, charts ChartAdapter, panel PanelAdapter) *Orchestrator {
	minYear, maxYear := proj.Store().YearRange()
	domain := selection.YearDomain{Min: minYear, Max: maxYear}
	return &Orchestrator{
		proj:   proj,
		domain: domain,
		maps:   maps,
		charts: charts,
		panel:  panel,
		state:  selection.Defaults(domain),
		log:    zap.L().With(zap.String("component", "orchestrator")),
	}
}

// update is a planned transition: the next state and the renders that
// publish it.
type update struct {
	state selection.State
	ops   []func()
}

// State returns a copy of the current selection state.
func (o *Orchestrator) State() selection.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Revision counts committed state transitions. No-op events leave it
// unchanged.
func (o *Orchestrator) Revision() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.revision
}

// Domain returns the selectable year range.
func (o *Orchestrator) Domain() selection.YearDomain { return o.domain }

// Start shows the default layer and renders every view.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.state.Clone()
	next.Visible = selection.DedupeRefs(o.maps.RenderedFeatures(next.Layer))
	frame := o.proj.Project(next, o.maps.Viewport())

	o.commit(next)
	o.showLayer(next.Layer)
	o.panel.RenderLegend(frame.Legend)
	o.panel.RenderStat(frame.Stat)
	for _, c := range projector.Charts {
		o.charts.ReplaceSeries(c, frame.Charts[c])
	}
	o.panel.HideTooltip()
}

// Dispatch applies one event. Invalid events return an error and leave the
// state and every view unchanged.
func (o *Orchestrator) Dispatch(ev Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, err := o.plan(ev)
	if err != nil {
		o.log.Debug("event rejected", zap.Stringer("event", ev.Kind), zap.Error(err))
		return err
	}
	if u == nil {
		return nil
	}
	o.commit(u.state)
	for _, op := range u.ops {
		op()
	}
	o.log.Debug("event applied", zap.Stringer("event", ev.Kind), zap.Uint64("revision", o.revision))
	return nil
}

// PointerMove hit-tests p and dispatches Hover or Unhover.
func (o *Orchestrator) PointerMove(p selection.Point) error {
	if ref, ok := o.maps.HitTest(p); ok {
		return o.Dispatch(Hover(ref, p))
	}
	return o.Dispatch(Unhover())
}

// PointerClick hit-tests p and dispatches Click when a feature is hit.
func (o *Orchestrator) PointerClick(p selection.Point) (bool, error) {
	ref, ok := o.maps.HitTest(p)
	if !ok {
		return false, nil
	}
	return true, o.Dispatch(Click(ref))
}

// Run dispatches events until the channel closes or ctx is done. Rejected
// events are logged and skipped.
func (o *Orchestrator) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := o.Dispatch(ev); err != nil {
				o.log.Warn("event rejected", zap.Stringer("event", ev.Kind), zap.Error(err))
			}
		}
	}
}

func (o *Orchestrator) commit(s selection.State) {
	o.state = s
	o.revision++
}

func (o *Orchestrator) showLayer(layer selection.Layer) {
	for _, l := range selection.Layers {
		o.maps.SetLayerVisibility(l, false)
	}
	o.maps.SetLayerVisibility(layer, true)
}

func (o *Orchestrator) plan(ev Event) (*update, error) {
	switch ev.Kind {
	case EventSetLayer:
		return o.planSetLayer(ev.Layer)
	case EventSetYear:
		return o.planSetYear(ev.Year), nil
	case EventSetThreshold:
		return o.planSetThreshold(ev.Threshold)
	case EventHover:
		return o.planHover(ev.Ref, ev.Point), nil
	case EventUnhover:
		return o.planUnhover(), nil
	case EventClick:
		return o.planClick(ev.Ref), nil
	case EventViewportIdle:
		return o.planViewportIdle(ev.Visible), nil
	case EventReset:
		return o.planReset(), nil
	}
	return nil, eris.Wrapf(ErrUnknownEvent, "kind %d", int(ev.Kind))
}

func (o *Orchestrator) planSetLayer(layer selection.Layer) (*update, error) {
	if !layer.Valid() {
		return nil, eris.Wrapf(selection.ErrInvalidLayer, "%q", layer)
	}
	if layer == o.state.Layer {
		return nil, nil
	}
	prev := o.state.Hovered
	next := o.state.Clone()
	next.Layer = layer
	next.Hovered = nil
	next.Visible = selection.DedupeRefs(o.maps.RenderedFeatures(layer))

	legend := o.proj.Legend(next)
	stat := o.proj.Stat(next)
	ranked := o.proj.Chart(projector.ChartRanked, next)

	return &update{state: next, ops: []func(){
		func() { o.showLayer(layer) },
		func() { o.clearHover(prev) },
		func() { o.panel.RenderLegend(legend) },
		func() { o.panel.RenderStat(stat) },
		func() { o.charts.ReplaceSeries(projector.ChartRanked, ranked) },
	}}, nil
}

func (o *Orchestrator) planSetYear(year int) *update {
	year = o.domain.Clamp(year)
	if year == o.state.Year {
		return nil
	}
	next := o.state.Clone()
	next.Year = year

	stat := o.proj.Stat(next)
	breakdown := o.proj.Chart(projector.ChartBreakdown, next)

	return &update{state: next, ops: []func(){
		func() { o.panel.RenderStat(stat) },
		func() { o.charts.ReplaceSeries(projector.ChartBreakdown, breakdown) },
	}}
}

func (o *Orchestrator) planSetThreshold(threshold int) (*update, error) {
	if !selection.ValidThreshold(threshold) {
		return nil, eris.Wrapf(selection.ErrInvalidThreshold, "%d", threshold)
	}
	if threshold == o.state.Threshold {
		return nil, nil
	}
	next := o.state.Clone()
	next.Threshold = threshold

	trend := o.proj.Chart(projector.ChartTrend, next)
	breakdown := o.proj.Chart(projector.ChartBreakdown, next)
	stat := o.proj.Stat(next)
	ranked := o.proj.Chart(projector.ChartRanked, next)
	tooltip := o.proj.Tooltip(next, o.maps.Viewport())

	ops := []func(){
		func() { o.charts.ReplaceSeries(projector.ChartTrend, trend) },
		func() { o.charts.ReplaceSeries(projector.ChartBreakdown, breakdown) },
		func() { o.panel.RenderStat(stat) },
		func() { o.charts.ReplaceSeries(projector.ChartRanked, ranked) },
	}
	if tooltip != nil {
		ops = append(ops, func() { o.panel.ShowTooltip(*tooltip) })
	}
	return &update{state: next, ops: ops}, nil
}

func (o *Orchestrator) planHover(ref feature.Ref, p selection.Point) *update {
	prev := o.state.Hovered
	next := o.state.Clone()
	next.Hovered = &ref
	next.Pointer = p

	tooltip := o.proj.Tooltip(next, o.maps.Viewport())

	return &update{state: next, ops: []func(){
		func() {
			if prev != nil && *prev != ref {
				o.maps.SetFeatureState(*prev, false)
			}
			o.maps.SetFeatureState(ref, true)
		},
		func() { o.panel.ShowTooltip(*tooltip) },
	}}
}

func (o *Orchestrator) planUnhover() *update {
	prev := o.state.Hovered
	if prev == nil {
		return nil
	}
	next := o.state.Clone()
	next.Hovered = nil
	return &update{state: next, ops: []func(){
		func() { o.clearHover(prev) },
	}}
}

func (o *Orchestrator) planClick(ref feature.Ref) *update {
	next := o.state.Clone()
	next.Selected = &ref
	series := o.proj.Chart(projector.ChartFeature, next)
	return &update{state: next, ops: []func(){
		func() { o.charts.ReplaceSeries(projector.ChartFeature, series) },
	}}
}

func (o *Orchestrator) planViewportIdle(visible []feature.Ref) *update {
	next := o.state.Clone()
	next.Visible = selection.DedupeRefs(visible)

	stat := o.proj.Stat(next)
	ranked := o.proj.Chart(projector.ChartRanked, next)

	return &update{state: next, ops: []func(){
		func() { o.panel.RenderStat(stat) },
		func() { o.charts.ReplaceSeries(projector.ChartRanked, ranked) },
	}}
}

func (o *Orchestrator) planReset() *update {
	prev := o.state.Hovered
	next := selection.Defaults(o.domain)
	next.Visible = selection.DedupeRefs(o.maps.RenderedFeatures(next.Layer))
	frame := o.proj.Project(next, o.maps.Viewport())

	return &update{state: next, ops: []func(){
		func() { o.showLayer(next.Layer) },
		func() {
			if prev != nil {
				o.maps.SetFeatureState(*prev, false)
			}
			o.panel.HideTooltip()
		},
		func() { o.panel.RenderLegend(frame.Legend) },
		func() { o.panel.RenderStat(frame.Stat) },
		func() {
			for _, c := range projector.Charts {
				o.charts.ReplaceSeries(c, frame.Charts[c])
			}
		},
	}}
}

// clearHover turns off prev's highlight and hides the tooltip.
func (o *Orchestrator) clearHover(prev *feature.Ref) {
	if prev == nil {
		return
	}
	o.maps.SetFeatureState(*prev, false)
	o.panel.HideTooltip()
}
