package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formset/pkg/dispatch"
	"github.com/goliatone/go-formset/pkg/formset"
)

const (
	actionAdd = iota
	actionRemove
	actionDone
)

var actions = []string{"Add", "Remove", "Done"}

// Editor drives a form-set from the terminal: search and add candidates,
// remove entries, then serialize the management values.
type Editor struct {
	dispatcher   *dispatch.Dispatcher
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	messages     io.Writer

	labels map[string]string
}

// NewEditor builds an editor over d (default survey driver, JSON output).
func NewEditor(d *dispatch.Dispatcher, options ...Option) (*Editor, error) {
	if d == nil {
		return nil, ErrNoDispatcher
	}
	e := &Editor{
		dispatcher:   d,
		outputFormat: OutputFormatJSON,
		labels:       map[string]string{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(e.messages)
	}
	return e, nil
}

// ContentType reports the serialization format used by Run.
func (e *Editor) ContentType() string {
	switch e.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run loops until the user picks Done and returns the serialized values.
func (e *Editor) Run(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.summary(ctx); err != nil {
			return nil, err
		}

		choice, err := e.driver.Select(ctx, SelectConfig{
			Message: e.prompt("Form-set"),
			Options: actions,
		})
		if err != nil {
			return nil, err
		}

		switch choice {
		case actionAdd:
			err = e.add(ctx)
		case actionRemove:
			err = e.remove(ctx)
		case actionDone:
			return e.serialize(e.values())
		default:
			err = e.info(ctx, e.theme.ErrorPrefix+"unknown action")
		}
		if err != nil {
			return nil, err
		}
	}
}

func (e *Editor) add(ctx context.Context) error {
	term, err := e.driver.Input(ctx, InputConfig{
		Message: e.prompt("Search"),
		Help:    "Type part of a name, Tab completes. Matches already listed are hidden.",
		Suggest: e.completer(ctx),
	})
	if err != nil {
		return err
	}

	resp, err := e.dispatcher.Dispatch(ctx, dispatch.Event{Type: dispatch.EventQuery, Term: term})
	if err != nil {
		return e.info(ctx, e.theme.ErrorPrefix+err.Error())
	}
	if len(resp.Suggestions) == 0 {
		return e.info(ctx, e.theme.InfoPrefix+"No matches.")
	}

	options := make([]string, 0, len(resp.Suggestions)+1)
	for _, candidate := range resp.Suggestions {
		options = append(options, candidateLabel(candidate))
	}
	options = append(options, "Cancel")

	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:  e.prompt("Add"),
		Options:  options,
		PageSize: 10,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(resp.Suggestions) {
		return nil
	}

	candidate := resp.Suggestions[idx]
	resp, err = e.dispatcher.Dispatch(ctx, dispatch.Event{Type: dispatch.EventSelect, Candidate: &candidate})
	if err != nil {
		return e.info(ctx, e.theme.ErrorPrefix+err.Error())
	}
	e.labels[candidate.Key] = candidate.Label
	return e.info(ctx, fmt.Sprintf("%s%s: %s", e.theme.InfoPrefix, resp.Outcome, candidateLabel(candidate)))
}

// completer runs the autocomplete for a partial term and returns the
// candidate labels. Short terms and search errors complete to nothing.
func (e *Editor) completer(ctx context.Context) func(string) []string {
	return func(partial string) []string {
		resp, err := e.dispatcher.Dispatch(ctx, dispatch.Event{Type: dispatch.EventQuery, Term: partial})
		if err != nil || resp.Stale {
			return nil
		}
		out := make([]string, 0, len(resp.Suggestions))
		for _, candidate := range resp.Suggestions {
			out = append(out, candidate.Label)
		}
		return out
	}
}

func (e *Editor) remove(ctx context.Context) error {
	visible := e.visible()
	if len(visible) == 0 {
		return e.info(ctx, e.theme.InfoPrefix+"Nothing to remove.")
	}

	options := make([]string, 0, len(visible)+1)
	for _, view := range visible {
		options = append(options, e.entryLabel(view))
	}
	options = append(options, "Cancel")

	idx, err := e.driver.Select(ctx, SelectConfig{
		Message: e.prompt("Remove"),
		Options: options,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(visible) {
		return nil
	}

	target := visible[idx]
	if target.Persisted {
		ok, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: e.prompt(fmt.Sprintf("Delete saved entry %s?", e.entryLabel(target))),
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	index := target.Index
	resp, err := e.dispatcher.Dispatch(ctx, dispatch.Event{Type: dispatch.EventRemove, Index: &index})
	if err != nil {
		return e.info(ctx, e.theme.ErrorPrefix+err.Error())
	}
	return e.info(ctx, fmt.Sprintf("%s%s: %s", e.theme.InfoPrefix, resp.Outcome, e.entryLabel(target)))
}

func (e *Editor) summary(ctx context.Context) error {
	visible := e.visible()
	if len(visible) == 0 {
		return e.info(ctx, e.theme.InfoPrefix+"(empty)")
	}
	lines := make([]string, 0, len(visible))
	for _, view := range visible {
		lines = append(lines, fmt.Sprintf("%s[%d] %s", e.theme.InfoPrefix, view.Index, e.entryLabel(view)))
	}
	return e.info(ctx, strings.Join(lines, "\n"))
}

func (e *Editor) visible() []dispatch.EntryView {
	var out []dispatch.EntryView
	_ = e.dispatcher.Do(func(ctrl *formset.Controller) error {
		for _, entry := range ctrl.State().Visible() {
			out = append(out, *dispatch.ViewOf(entry))
		}
		return nil
	})
	return out
}

func (e *Editor) values() url.Values {
	var values url.Values
	_ = e.dispatcher.Do(func(ctrl *formset.Controller) error {
		values = ctrl.Values()
		return nil
	})
	return values
}

func (e *Editor) entryLabel(view dispatch.EntryView) string {
	label := view.Value
	if known, ok := e.labels[view.Value]; ok && known != "" {
		label = known + " (" + view.Value + ")"
	}
	if view.Persisted {
		label += " *"
	}
	return label
}

func (e *Editor) prompt(msg string) string {
	return e.theme.PromptPrefix + msg
}

func (e *Editor) info(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, msg)
}

func (e *Editor) serialize(values url.Values) ([]byte, error) {
	switch e.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(flatten(values))
	}
}

func candidateLabel(c formset.Candidate) string {
	if c.Label == "" || c.Label == c.Key {
		return c.Key
	}
	return c.Label + " (" + c.Key + ")"
}

// flatten collapses single-valued fields so the JSON reads as a plain object.
func flatten(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			out[key] = vals[0]
			continue
		}
		out[key] = vals
	}
	return out
}

func prettyPrint(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, v := range values[key] {
			fmt.Fprintf(&b, "%s=%s\n", key, v)
		}
	}
	return b.String()
}
