package dispatch

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/testsupport"
)

func TestDispatch_ResubmittedFormRoundTrip(t *testing.T) {
	state := testsupport.MustState(t, filepath.Join("testdata", "submitted.values"), formset.WithHiddenField("addon"))
	if state.Total() != 3 || state.InitialCount() != 2 {
		t.Fatalf("unexpected fixture state total=%d initial=%d", state.Total(), state.InitialCount())
	}
	d := New(testsupport.MustController(t, state))
	ctx := context.Background()

	resp, err := d.Dispatch(ctx, Event{Type: EventSelect, Candidate: &formset.Candidate{Key: "7", Label: "Ribbon"}})
	if err != nil || resp.Outcome != formset.OutcomeRevived {
		t.Fatalf("expected revive of soft-deleted key 7, got %v %s", err, resp.Outcome)
	}
	resp, err = d.Dispatch(ctx, Event{Type: EventRemove, Index: intPtr(2)})
	if err != nil || resp.Outcome != formset.OutcomeDestroyed || resp.Total != 2 {
		t.Fatalf("expected unsaved slot destroyed, got %v %s total=%d", err, resp.Outcome, resp.Total)
	}

	var got map[string][]string
	_ = d.Do(func(ctrl *formset.Controller) error {
		got = ctrl.Values()
		return nil
	})

	golden := filepath.Join("testdata", "resubmitted.golden.json")
	testsupport.WriteGolden(t, golden, got)

	var want map[string][]string
	if err := json.Unmarshal(testsupport.MustReadGolden(t, golden), &want); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
