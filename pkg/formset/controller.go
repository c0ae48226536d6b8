package formset

import (
	"context"
	"fmt"
	"net/url"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Controller keeps the entry collection, the TOTAL_FORMS counter and the
// deletion flags consistent while entries are added from search candidates
// and removed through the removal control.
type Controller struct {
	opts     Options
	state    *State
	renderer Renderer
	input    Input
	seq      uint64
	logger   *zap.Logger
}

// New constructs a controller over state. A nil state starts an empty
// form-set using the configured prefix.
func New(state *State, fns ...OptionFn) (*Controller, error) {
	opts := NewOptions(fns...)
	if opts.HiddenField == "" {
		return nil, ErrMissingHiddenField
	}

	if state == nil {
		var err error
		state, err = NewState(opts.Prefix)
		if err != nil {
			return nil, err
		}
	}
	if state.Prefix() != opts.Prefix {
		return nil, fmt.Errorf("%w: state prefix %q does not match %q", ErrInvalidState, state.Prefix(), opts.Prefix)
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = TemplateRenderer{Template: opts.ExtraTemplate, Placeholder: opts.Placeholder}
	}

	return &Controller{
		opts:     opts,
		state:    state,
		renderer: renderer,
		logger:   opts.Logger.With(zap.String("prefix", opts.Prefix)),
	}, nil
}

// Options returns the normalised configuration.
func (c *Controller) Options() Options { return c.opts }

// State returns the managed state.
func (c *Controller) State() *State { return c.state }

// Input returns the pending input.
func (c *Controller) Input() Input { return c.input }

// SetText records a keystroke in the visible input without touching the
// pending payload.
func (c *Controller) SetText(text string) {
	c.input.Text = text
}

// SetInput replaces the pending input, payload included, the way a client
// writes the selected item onto the input element.
func (c *Controller) SetInput(in Input) {
	c.input = in
}

// Values encodes the form-set for submission.
func (c *Controller) Values() url.Values {
	return c.state.Values(c.opts.HiddenField, c.opts.FormPK)
}

// FindByKey scans the hidden-field values of every slot for key.
func (c *Controller) FindByKey(key string) Match {
	if key == "" {
		return Match{}
	}
	for _, entry := range c.state.entries {
		if entry.value == key {
			return Match{Exists: true, Visible: entry.visible, Entry: entry}
		}
	}
	return Match{}
}

// Suggestions drops every candidate already shown as an entry.
func (c *Controller) Suggestions(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if c.FindByKey(candidate.Key).Visible {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// Focus mirrors a highlighted suggestion into the visible input without
// selecting it.
func (c *Controller) Focus(candidate Candidate) {
	c.input.Text = candidate.Label
}

// Select stores candidate as the pending payload and adds it.
func (c *Controller) Select(ctx context.Context, candidate Candidate) (Result, error) {
	c.input = Input{Text: candidate.Label, Item: encodeCandidate(candidate)}
	return c.Added(ctx)
}

// AddFromCandidate is Select under the name used by callers that bypass the
// autocomplete flow.
func (c *Controller) AddFromCandidate(ctx context.Context, candidate Candidate) (Result, error) {
	return c.Select(ctx, candidate)
}

// Added adds the pending candidate: a hidden entry with the same key is
// revived, a visible one is left alone, otherwise a new Extra entry is
// created. Missing or malformed payloads are ignored.
func (c *Controller) Added(ctx context.Context) (Result, error) {
	candidate, ok := c.input.Candidate()
	if !ok {
		c.logger.Debug("ignoring add without candidate payload")
		return Result{Outcome: OutcomeIgnored}, nil
	}

	if dupe := c.FindByKey(candidate.Key); dupe.Exists {
		entry := dupe.Entry
		if dupe.Visible {
			c.clearInput()
			c.logger.Debug("duplicate candidate", zap.String("key", candidate.Key), zap.Int("index", entry.index))
			return Result{
				Outcome: OutcomeDuplicate,
				Entry:   entry,
				Effects: []Effect{{Kind: EffectClearInput, Index: entry.index}},
			}, nil
		}

		markup, err := setChecked(entry.markup, DeleteFieldName(c.state.prefix, entry.index), false)
		if err != nil {
			return Result{}, fmt.Errorf("formset: revive slot %d: %w", entry.index, err)
		}
		entry.markup = markup
		entry.deleted = false
		entry.visible = true
		c.clearInput()

		c.logger.Debug("entry revived", zap.String("key", candidate.Key), zap.Int("index", entry.index))
		res := Result{Outcome: OutcomeRevived, Entry: entry}
		res.add(EffectReveal, entry.index)
		res.add(EffectClearInput, entry.index)
		return res, nil
	}

	c.clearInput()

	index := c.state.Total()
	markup, err := c.renderer.RenderExtra(ctx, index, candidate)
	if err != nil {
		return Result{}, fmt.Errorf("formset: render extra entry: %w", err)
	}
	if c.opts.OnAdded != nil {
		markup, err = c.opts.OnAdded(markup, candidate)
		if err != nil {
			return Result{}, fmt.Errorf("formset: added hook: %w", err)
		}
	}
	markup, err = setFieldValue(markup, FieldName(c.state.prefix, index, c.opts.HiddenField), candidate.Key)
	if err != nil {
		return Result{}, fmt.Errorf("formset: set hidden field: %w", err)
	}

	entry := c.state.appendExtra(markup, candidate.Key)
	entry.visible = true

	c.logger.Debug("entry created",
		zap.String("key", candidate.Key),
		zap.Int("index", entry.index),
		zap.Int("total", c.state.Total()))

	res := Result{Outcome: OutcomeCreated, Entry: entry}
	res.add(EffectInsert, entry.index)
	res.add(EffectReveal, entry.index)
	res.add(EffectClearInput, entry.index)
	return res, nil
}

// RemoveAt removes the entry in slot index.
func (c *Controller) RemoveAt(index int) (Result, error) {
	entry, ok := c.state.Entry(index)
	if !ok {
		return Result{}, fmt.Errorf("%w: slot %d", ErrUnknownEntry, index)
	}
	return c.Remove(entry)
}

// Remove hides entry and flags it deleted. Extra entries are then destroyed
// and later slots renumbered; Initial entries stay in place so the server
// learns to delete the persisted record.
func (c *Controller) Remove(entry *Entry) (Result, error) {
	if c.state.indexOf(entry) < 0 {
		return Result{}, ErrUnknownEntry
	}
	if entry.deleted {
		return Result{Outcome: OutcomeIgnored, Entry: entry}, nil
	}

	index := entry.index
	markup, err := setChecked(entry.markup, DeleteFieldName(c.state.prefix, index), true)
	if err != nil {
		return Result{}, fmt.Errorf("formset: flag slot %d deleted: %w", index, err)
	}
	entry.markup = markup
	entry.visible = false
	entry.deleted = true

	res := Result{Entry: entry}
	res.add(EffectHide, index)

	if c.opts.OnRemoved != nil {
		c.opts.OnRemoved(entry)
	}

	if entry.origin.Persisted() {
		res.Outcome = OutcomeSoftDeleted
		c.logger.Debug("entry soft-deleted", zap.String("key", entry.origin.Key()), zap.Int("index", index))
		return res, nil
	}

	moves, err := c.state.destroy(entry)
	if err != nil {
		return Result{}, err
	}
	res.Outcome = OutcomeDestroyed
	res.add(EffectDestroy, index)
	for _, move := range moves {
		res.Effects = append(res.Effects, Effect{Kind: EffectRenumber, From: move[0], Index: move[1]})
	}
	c.logger.Debug("entry destroyed", zap.Int("index", index), zap.Int("total", c.state.Total()))
	return res, nil
}

// BeginQuery issues a new sequenced query for term. Every call supersedes
// earlier queries, including calls rejected for being shorter than the
// minimum search length.
func (c *Controller) BeginQuery(term string) (Query, bool) {
	c.seq++
	query := Query{Seq: c.seq, Term: term}
	if c.opts.Autocomplete == nil && utf8.RuneCountInString(term) < c.opts.MinSearchLength {
		return query, false
	}
	return query, true
}

// Search runs query against the Autocomplete override or the provider. It
// reads configuration only and may run without holding the caller's lock.
func (c *Controller) Search(ctx context.Context, query Query) ([]Candidate, error) {
	if c.opts.Autocomplete != nil {
		return c.opts.Autocomplete(ctx, query.Term)
	}
	if c.opts.Provider == nil {
		return nil, ErrMissingProvider
	}
	results, err := c.opts.Provider.Search(ctx, SearchRequest{
		Term:         query.Term,
		Field:        c.opts.SearchField,
		Exclude:      c.opts.ExcludeCategories,
		ExcludeParam: c.opts.ExcludeParam,
	})
	if err != nil {
		c.logger.Warn("search failed", zap.String("term", query.Term), zap.Error(err))
		return nil, err
	}
	return results, nil
}

// Current reports whether query is the most recently issued one.
func (c *Controller) Current(query Query) bool {
	return query.Seq == c.seq
}

// ResolveQuery turns provider results into the suggestion list. Results for
// a superseded query are discarded and reported as not current.
func (c *Controller) ResolveQuery(query Query, results []Candidate) ([]Candidate, bool) {
	if !c.Current(query) {
		c.logger.Debug("discarding stale search results", zap.String("term", query.Term), zap.Uint64("seq", query.Seq))
		return nil, false
	}
	if c.opts.Autocomplete != nil {
		return results, true
	}
	return c.Suggestions(results), true
}

// Suggest runs the whole query cycle synchronously.
func (c *Controller) Suggest(ctx context.Context, term string) ([]Candidate, error) {
	query, ok := c.BeginQuery(term)
	if !ok {
		return nil, nil
	}
	results, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	suggestions, _ := c.ResolveQuery(query, results)
	return suggestions, nil
}

func (c *Controller) clearInput() {
	c.input = Input{}
}
