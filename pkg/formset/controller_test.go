package formset

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const extraTemplate = `<li><input type="hidden" name="form-__prefix__-addon" value=""/>` +
	`<input type="checkbox" name="form-__prefix__-DELETE"/><a class="remove" href="#">x</a></li>`

func initialMarkup(index int, pk, value string) string {
	i := strconv.Itoa(index)
	return `<li><input type="hidden" name="form-` + i + `-id" value="` + pk + `"/>` +
		`<input type="hidden" name="form-` + i + `-addon" value="` + value + `"/>` +
		`<input type="checkbox" name="form-` + i + `-DELETE"/></li>`
}

func newTestController(t *testing.T, seeds []Seed, fns ...OptionFn) *Controller {
	t.Helper()

	state, err := NewState("form", seeds...)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	base := []OptionFn{
		WithHiddenField("addon"),
		WithExtraTemplate(extraTemplate),
	}
	ctrl, err := New(state, append(base, fns...)...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

func twoInitialSeeds() []Seed {
	return []Seed{
		{Origin: Initial("11"), Value: "5", Markup: initialMarkup(0, "11", "5")},
		{Origin: Initial("12"), Value: "7", Markup: initialMarkup(1, "12", "7")},
	}
}

func assertInvariant(t *testing.T, ctrl *Controller) {
	t.Helper()
	if err := ctrl.State().Validate(); err != nil {
		t.Fatalf("state invariant broken: %v", err)
	}
}

func TestController_DuplicateThenCreate(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, twoInitialSeeds())

	res, err := ctrl.AddFromCandidate(ctx, Candidate{Key: "5", Label: "Five"})
	if err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if res.Outcome != OutcomeDuplicate {
		t.Fatalf("expected duplicate outcome, got %q", res.Outcome)
	}
	if got := ctrl.State().Total(); got != 2 {
		t.Fatalf("expected counter to stay at 2, got %d", got)
	}
	if ctrl.Input() != (Input{}) {
		t.Fatalf("expected input to be cleared, got %#v", ctrl.Input())
	}

	res, err = ctrl.AddFromCandidate(ctx, Candidate{Key: "9", Label: "Nine"})
	if err != nil {
		t.Fatalf("add new: %v", err)
	}
	if res.Outcome != OutcomeCreated {
		t.Fatalf("expected created outcome, got %q", res.Outcome)
	}
	if got := ctrl.State().Total(); got != 3 {
		t.Fatalf("expected counter 3, got %d", got)
	}
	entry := res.Entry
	if entry.Index() != 2 || entry.Value() != "9" || entry.Origin().Persisted() || !entry.Visible() {
		t.Fatalf("unexpected entry: index=%d value=%q origin=%s visible=%v",
			entry.Index(), entry.Value(), entry.Origin(), entry.Visible())
	}
	if !strings.Contains(entry.Markup(), `name="form-2-addon" value="9"`) {
		t.Fatalf("expected hidden field form-2-addon=9 in markup: %s", entry.Markup())
	}
	if strings.Contains(entry.Markup(), DefaultPlaceholder) {
		t.Fatalf("placeholder left in markup: %s", entry.Markup())
	}

	wantEffects := []Effect{
		{Kind: EffectInsert, Index: 2},
		{Kind: EffectReveal, Index: 2},
		{Kind: EffectClearInput, Index: 2},
	}
	if diff := cmp.Diff(wantEffects, res.Effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}

	values := ctrl.Values()
	if got := values.Get("form-TOTAL_FORMS"); got != "3" {
		t.Fatalf("expected TOTAL_FORMS 3, got %q", got)
	}
	if got := values.Get("form-2-addon"); got != "9" {
		t.Fatalf("expected form-2-addon 9, got %q", got)
	}
	assertInvariant(t, ctrl)
}

func TestController_AddSameKeyTwiceKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, nil)

	if _, err := ctrl.AddFromCandidate(ctx, Candidate{Key: "42"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	res, err := ctrl.AddFromCandidate(ctx, Candidate{Key: "42"})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if res.Outcome != OutcomeDuplicate {
		t.Fatalf("expected duplicate, got %q", res.Outcome)
	}
	if ctrl.State().Len() != 1 || ctrl.State().Total() != 1 {
		t.Fatalf("expected exactly one entry, got len=%d total=%d", ctrl.State().Len(), ctrl.State().Total())
	}
}

func TestController_RemoveExtraDestroysSlot(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, twoInitialSeeds())

	res, err := ctrl.AddFromCandidate(ctx, Candidate{Key: "9"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	entry := res.Entry

	var removed *Entry
	ctrl.opts.OnRemoved = func(e *Entry) { removed = e }

	res, err = ctrl.Remove(entry)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if res.Outcome != OutcomeDestroyed {
		t.Fatalf("expected destroyed, got %q", res.Outcome)
	}
	if removed != entry {
		t.Fatalf("expected removed hook to receive the entry")
	}
	if got := ctrl.State().Total(); got != 2 {
		t.Fatalf("expected counter back to 2, got %d", got)
	}
	if entry.State() != EntryAbsent {
		t.Fatalf("expected destroyed entry to be absent, got %s", entry.State())
	}
	if ctrl.FindByKey("9").Exists {
		t.Fatalf("destroyed entry should no longer be found")
	}
	wantEffects := []Effect{{Kind: EffectHide, Index: 2}, {Kind: EffectDestroy, Index: 2}}
	if diff := cmp.Diff(wantEffects, res.Effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
	assertInvariant(t, ctrl)
}

func TestController_RemovePersistedSoftDeletes(t *testing.T) {
	ctrl := newTestController(t, twoInitialSeeds())

	res, err := ctrl.RemoveAt(0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if res.Outcome != OutcomeSoftDeleted {
		t.Fatalf("expected soft-deleted, got %q", res.Outcome)
	}
	entry := res.Entry
	if entry.Visible() || !entry.Deleted() || entry.State() != EntrySoftDeleted {
		t.Fatalf("unexpected entry flags: visible=%v deleted=%v state=%s", entry.Visible(), entry.Deleted(), entry.State())
	}
	if got := ctrl.State().Total(); got != 2 {
		t.Fatalf("expected counter unchanged at 2, got %d", got)
	}
	if !strings.Contains(entry.Markup(), `name="form-0-DELETE" checked="checked"`) {
		t.Fatalf("expected DELETE checkbox to be checked: %s", entry.Markup())
	}
	if got := ctrl.Values().Get("form-0-DELETE"); got != "on" {
		t.Fatalf("expected form-0-DELETE=on, got %q", got)
	}

	again, err := ctrl.Remove(entry)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if again.Outcome != OutcomeIgnored {
		t.Fatalf("expected repeated removal to be ignored, got %q", again.Outcome)
	}
	assertInvariant(t, ctrl)
}

func TestController_ReAddRevivesSoftDeletedEntry(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, twoInitialSeeds())

	if _, err := ctrl.RemoveAt(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	res, err := ctrl.AddFromCandidate(ctx, Candidate{Key: "7"})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if res.Outcome != OutcomeRevived {
		t.Fatalf("expected revived, got %q", res.Outcome)
	}
	entry := res.Entry
	if !entry.Visible() || entry.Deleted() || entry.State() != EntryActive {
		t.Fatalf("expected entry to be active again: visible=%v deleted=%v", entry.Visible(), entry.Deleted())
	}
	if strings.Contains(entry.Markup(), "checked") {
		t.Fatalf("expected DELETE flag cleared in markup: %s", entry.Markup())
	}
	if got := ctrl.State().Total(); got != 2 {
		t.Fatalf("expected counter unchanged, got %d", got)
	}
	if ctrl.Values().Has("form-1-DELETE") {
		t.Fatalf("expected no DELETE value after revival")
	}
}

func TestController_RemoveRenumbersLaterSlots(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, nil)

	for _, key := range []string{"a", "b", "c"} {
		if _, err := ctrl.AddFromCandidate(ctx, Candidate{Key: key}); err != nil {
			t.Fatalf("add %s: %v", key, err)
		}
	}

	res, err := ctrl.RemoveAt(0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	wantEffects := []Effect{
		{Kind: EffectHide, Index: 0},
		{Kind: EffectDestroy, Index: 0},
		{Kind: EffectRenumber, From: 1, Index: 0},
		{Kind: EffectRenumber, From: 2, Index: 1},
	}
	if diff := cmp.Diff(wantEffects, res.Effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}

	last, _ := ctrl.State().Entry(1)
	if last.Value() != "c" || !strings.Contains(last.Markup(), `name="form-1-addon" value="c"`) {
		t.Fatalf("expected slot 1 to hold c with renumbered markup: %s", last.Markup())
	}

	created, err := ctrl.AddFromCandidate(ctx, Candidate{Key: "d"})
	if err != nil {
		t.Fatalf("add d: %v", err)
	}
	if created.Entry.Index() != 2 {
		t.Fatalf("expected new slot 2 without collisions, got %d", created.Entry.Index())
	}
	assertInvariant(t, ctrl)
}

func TestController_CounterMatchesSlotsForRandomSequences(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 20; run++ {
		ctrl := newTestController(t, twoInitialSeeds())
		for step := 0; step < 60; step++ {
			if rng.Intn(3) == 0 && ctrl.State().Len() > 0 {
				if _, err := ctrl.RemoveAt(rng.Intn(ctrl.State().Len())); err != nil {
					t.Fatalf("run %d step %d remove: %v", run, step, err)
				}
			} else {
				key := strconv.Itoa(rng.Intn(12))
				if _, err := ctrl.AddFromCandidate(ctx, Candidate{Key: key}); err != nil {
					t.Fatalf("run %d step %d add: %v", run, step, err)
				}
			}
			assertInvariant(t, ctrl)
		}
	}
}

func TestController_AddedIgnoresMissingOrMalformedPayload(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, nil)

	for _, item := range []string{"", "{not json", `{"label":"no key"}`, `{"key":null}`, `{"key":{"nested":1}}`} {
		ctrl.input = Input{Text: "typed", Item: item}
		res, err := ctrl.Added(ctx)
		if err != nil {
			t.Fatalf("item %q: unexpected error %v", item, err)
		}
		if res.Outcome != OutcomeIgnored {
			t.Fatalf("item %q: expected ignored, got %q", item, res.Outcome)
		}
		if ctrl.State().Total() != 0 {
			t.Fatalf("item %q: expected no entries", item)
		}
	}
}

func TestController_SelectAcceptsNumericPayloadKeys(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(t, nil)

	ctrl.input = Input{Item: `{"key": 3615, "label": "Add-on", "icon": "/i.png"}`}
	res, err := ctrl.Added(ctx)
	if err != nil {
		t.Fatalf("added: %v", err)
	}
	if res.Outcome != OutcomeCreated || res.Entry.Value() != "3615" {
		t.Fatalf("unexpected result: %q value=%q", res.Outcome, res.Entry.Value())
	}
}

func TestController_FocusSetsTextOnly(t *testing.T) {
	ctrl := newTestController(t, nil)

	ctrl.Focus(Candidate{Key: "1", Label: "Firebug"})
	if got := ctrl.Input(); got.Text != "Firebug" || got.Item != "" {
		t.Fatalf("unexpected input after focus: %#v", got)
	}
	if ctrl.State().Total() != 0 {
		t.Fatalf("focus must not add entries")
	}
}

func TestController_SuggestionsExcludeVisibleEntries(t *testing.T) {
	ctrl := newTestController(t, twoInitialSeeds())
	if _, err := ctrl.RemoveAt(1); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got := ctrl.Suggestions([]Candidate{{Key: "5"}, {Key: "7"}, {Key: "9"}})
	want := []Candidate{{Key: "7"}, {Key: "9"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SuggestUsesProviderRequest(t *testing.T) {
	var seen SearchRequest
	provider := SearchFunc(func(_ context.Context, req SearchRequest) ([]Candidate, error) {
		seen = req
		return []Candidate{{Key: "5"}, {Key: "8"}}, nil
	})
	ctrl := newTestController(t, twoInitialSeeds(), WithProvider(provider), WithSearchField("term"))

	got, err := ctrl.Suggest(context.Background(), "fire")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	want := SearchRequest{Term: "fire", Field: "term", Exclude: true, ExcludeParam: DefaultExcludeParam}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Candidate{{Key: "8"}}, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestController_MinimumSearchLength(t *testing.T) {
	calls := 0
	provider := SearchFunc(func(context.Context, SearchRequest) ([]Candidate, error) {
		calls++
		return nil, nil
	})
	ctrl := newTestController(t, nil, WithProvider(provider))

	if _, err := ctrl.Suggest(context.Background(), "fi"); err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected short query to skip the provider, got %d calls", calls)
	}
	if _, err := ctrl.Suggest(context.Background(), "日本語"); err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected multi-byte query of 3 characters to search, got %d calls", calls)
	}
}

func TestController_StaleQueryIsDiscarded(t *testing.T) {
	ctrl := newTestController(t, nil)

	first, ok := ctrl.BeginQuery("fire")
	if !ok {
		t.Fatalf("expected first query to qualify")
	}
	second, _ := ctrl.BeginQuery("firebug")

	if _, current := ctrl.ResolveQuery(first, []Candidate{{Key: "1"}}); current {
		t.Fatalf("expected first query to be stale")
	}
	got, current := ctrl.ResolveQuery(second, []Candidate{{Key: "2"}})
	if !current || len(got) != 1 || got[0].Key != "2" {
		t.Fatalf("expected latest query to resolve, got %v %#v", current, got)
	}

	third, ok := ctrl.BeginQuery("f")
	if ok {
		t.Fatalf("expected short query to be rejected")
	}
	if ctrl.Current(second) || !ctrl.Current(third) {
		t.Fatalf("expected a rejected query to still supersede earlier ones")
	}
}

func TestController_AutocompleteOverride(t *testing.T) {
	override := func(_ context.Context, term string) ([]Candidate, error) {
		return []Candidate{{Key: "5", Label: term}}, nil
	}
	provider := SearchFunc(func(context.Context, SearchRequest) ([]Candidate, error) {
		t.Fatalf("provider must not be called when autocomplete is overridden")
		return nil, nil
	})
	ctrl := newTestController(t, twoInitialSeeds(), WithAutocomplete(override), WithProvider(provider))

	got, err := ctrl.Suggest(context.Background(), "x")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(got) != 1 || got[0].Label != "x" {
		t.Fatalf("expected override results untouched, got %#v", got)
	}
}

func TestController_SearchWithoutProvider(t *testing.T) {
	ctrl := newTestController(t, nil)
	_, err := ctrl.Suggest(context.Background(), "firebug")
	if !errors.Is(err, ErrMissingProvider) {
		t.Fatalf("expected ErrMissingProvider, got %v", err)
	}
}

func TestController_SearchErrorLeavesStateUntouched(t *testing.T) {
	boom := errors.New("upstream down")
	provider := SearchFunc(func(context.Context, SearchRequest) ([]Candidate, error) {
		return nil, boom
	})
	ctrl := newTestController(t, twoInitialSeeds(), WithProvider(provider))

	if _, err := ctrl.Suggest(context.Background(), "firebug"); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if ctrl.State().Total() != 2 {
		t.Fatalf("expected state untouched")
	}
}

func TestController_OnAddedHookReplacesMarkup(t *testing.T) {
	hook := func(markup string, candidate Candidate) (string, error) {
		return strings.Replace(markup, `<a class="remove"`, `<span>`+candidate.Label+`</span><a class="remove"`, 1), nil
	}
	ctrl := newTestController(t, nil, WithOnAdded(hook))

	res, err := ctrl.AddFromCandidate(context.Background(), Candidate{Key: "1", Label: "Firebug"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(res.Entry.Markup(), "<span>Firebug</span>") {
		t.Fatalf("expected hook markup, got %s", res.Entry.Markup())
	}
	if !strings.Contains(res.Entry.Markup(), `value="1"`) {
		t.Fatalf("expected hidden field to be set after the hook: %s", res.Entry.Markup())
	}
}

func TestController_OnAddedHookErrorKeepsCounter(t *testing.T) {
	hook := func(string, Candidate) (string, error) { return "", errors.New("nope") }
	ctrl := newTestController(t, twoInitialSeeds(), WithOnAdded(hook))

	if _, err := ctrl.AddFromCandidate(context.Background(), Candidate{Key: "9"}); err == nil {
		t.Fatalf("expected hook error")
	}
	if ctrl.State().Total() != 2 || ctrl.State().Len() != 2 {
		t.Fatalf("expected state unchanged after failed add")
	}
}

func TestController_RemoveUnknownEntry(t *testing.T) {
	ctrl := newTestController(t, nil)
	if _, err := ctrl.Remove(&Entry{}); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}
	if _, err := ctrl.RemoveAt(3); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrMissingHiddenField) {
		t.Fatalf("expected ErrMissingHiddenField, got %v", err)
	}

	state, err := NewState("addons")
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	if _, err := New(state, WithHiddenField("addon")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected prefix mismatch to fail, got %v", err)
	}

	ctrl, err := New(nil, WithHiddenField("addon"), WithPrefix("addons"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if ctrl.State().Prefix() != "addons" || ctrl.State().Total() != 0 {
		t.Fatalf("unexpected default state: %q %d", ctrl.State().Prefix(), ctrl.State().Total())
	}
}
