package dispatch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Dispatcher routes decoded events to one controller. It serialises every
// controller access; the search call itself runs unlocked so a slow
// provider does not block removals or selections.
type Dispatcher struct {
	mu     sync.Mutex
	ctrl   *formset.Controller
	logger *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New wraps ctrl. The caller must not use ctrl directly afterwards.
func New(ctrl *formset.Controller, opts ...Option) *Dispatcher {
	d := &Dispatcher{ctrl: ctrl, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Do runs fn with exclusive access to the controller.
func (d *Dispatcher) Do(fn func(*formset.Controller) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.ctrl)
}

// Dispatch applies ev and reports the result. Search failures are returned
// wrapped in ErrSearchFailed with the Response still describing the state.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Response, error) {
	switch ev.Type {
	case EventQuery:
		return d.query(ctx, ev)
	case EventInput, EventFocus, EventSelect, EventRemove:
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.apply(ctx, ev)
	default:
		return Response{Type: ev.Type}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func (d *Dispatcher) apply(ctx context.Context, ev Event) (Response, error) {
	var (
		res formset.Result
		err error
	)

	switch ev.Type {
	case EventInput:
		d.ctrl.SetText(ev.Term)
	case EventFocus:
		if ev.Candidate != nil {
			d.ctrl.Focus(*ev.Candidate)
		}
	case EventSelect:
		if ev.Candidate != nil {
			res, err = d.ctrl.Select(ctx, *ev.Candidate)
		} else {
			d.ctrl.SetInput(formset.Input{Text: d.ctrl.Input().Text, Item: itemPayload(ev.Item)})
			res, err = d.ctrl.Added(ctx)
		}
	case EventRemove:
		if ev.Index == nil {
			return d.snapshot(ev.Type), ErrMissingIndex
		}
		res, err = d.ctrl.RemoveAt(*ev.Index)
	}

	resp := d.snapshot(ev.Type)
	if err != nil {
		resp.Error = err.Error()
		return resp, err
	}
	resp.Outcome = res.Outcome
	resp.Effects = res.Effects
	resp.Entry = ViewOf(res.Entry)

	if res.Outcome != "" {
		d.logger.Debug("event applied",
			zap.String("type", string(ev.Type)),
			zap.String("outcome", string(res.Outcome)),
			zap.Int("total", resp.Total))
	}
	return resp, nil
}

func (d *Dispatcher) query(ctx context.Context, ev Event) (Response, error) {
	d.mu.Lock()
	d.ctrl.SetText(ev.Term)
	query, ok := d.ctrl.BeginQuery(ev.Term)
	resp := d.snapshot(ev.Type)
	d.mu.Unlock()

	if !ok {
		return resp, nil
	}

	results, err := d.ctrl.Search(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()
	resp = d.snapshot(ev.Type)

	if err != nil {
		if !d.ctrl.Current(query) {
			resp.Stale = true
			return resp, nil
		}
		resp.Error = err.Error()
		return resp, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	suggestions, current := d.ctrl.ResolveQuery(query, results)
	if !current {
		resp.Stale = true
		return resp, nil
	}
	resp.Suggestions = suggestions
	return resp, nil
}

func (d *Dispatcher) snapshot(t EventType) Response {
	return Response{
		Type:  t,
		Input: d.ctrl.Input(),
		Total: d.ctrl.State().Total(),
	}
}
