package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
)

// EventType names a decoded UI event.
type EventType string

const (
	// EventInput is a keystroke that changed the visible text.
	EventInput EventType = "input"
	// EventQuery asks for suggestions for Term.
	EventQuery EventType = "query"
	// EventFocus highlights a suggestion without selecting it.
	EventFocus EventType = "focus"
	// EventSelect selects a candidate (or a raw item payload).
	EventSelect EventType = "select"
	// EventRemove activates the removal control of slot Index.
	EventRemove EventType = "remove"
)

var (
	ErrUnknownEvent = errors.New("dispatch: unknown event type")
	ErrMissingIndex = errors.New("dispatch: remove event requires an index")
	ErrSearchFailed = errors.New("dispatch: search failed")
)

// Event is the decoded payload of one UI interaction.
type Event struct {
	Type      EventType          `json:"type"`
	Term      string             `json:"term,omitempty"`
	Candidate *formset.Candidate `json:"candidate,omitempty"`
	// Item is the raw candidate payload stored on the input element. It is
	// used when Candidate is nil and may be malformed.
	Item  json.RawMessage `json:"item,omitempty"`
	Index *int            `json:"index,omitempty"`
}

// DecodeEvent reads a JSON event.
func DecodeEvent(r io.Reader) (Event, error) {
	if r == nil {
		return Event{}, fmt.Errorf("dispatch: missing event body")
	}
	var ev Event
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("dispatch: decode event: %w", err)
	}
	ev.Type = EventType(strings.ToLower(strings.TrimSpace(string(ev.Type))))
	return ev, nil
}

// itemPayload returns the candidate payload carried by Item. A JSON string is
// unwrapped first since clients often forward the element's data-item
// attribute verbatim.
func itemPayload(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// EventFromForm decodes an event posted as form values: type, term, item
// (raw JSON payload), key/label/icon (candidate fields) and index.
func EventFromForm(values url.Values) (Event, error) {
	ev := Event{
		Type: EventType(strings.ToLower(strings.TrimSpace(values.Get("type")))),
		Term: values.Get("term"),
	}
	if item := values.Get("item"); item != "" {
		ev.Item = json.RawMessage(item)
	}
	if key := strings.TrimSpace(values.Get("key")); key != "" {
		ev.Candidate = &formset.Candidate{
			Key:   key,
			Label: values.Get("label"),
			Icon:  values.Get("icon"),
		}
	}
	if raw := strings.TrimSpace(values.Get("index")); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return Event{}, fmt.Errorf("dispatch: invalid index %q: %w", raw, err)
		}
		ev.Index = &index
	}
	return ev, nil
}

// EntryView is the wire representation of an entry.
type EntryView struct {
	Index     int    `json:"index"`
	Value     string `json:"value"`
	Persisted bool   `json:"persisted"`
	Key       string `json:"key,omitempty"`
	Deleted   bool   `json:"deleted"`
	Visible   bool   `json:"visible"`
	State     string `json:"state"`
	Markup    string `json:"markup,omitempty"`
}

// ViewOf converts an entry for transport.
func ViewOf(entry *formset.Entry) *EntryView {
	if entry == nil {
		return nil
	}
	return &EntryView{
		Index:     entry.Index(),
		Value:     entry.Value(),
		Persisted: entry.Origin().Persisted(),
		Key:       entry.Origin().Key(),
		Deleted:   entry.Deleted(),
		Visible:   entry.Visible(),
		State:     entry.State().String(),
		Markup:    entry.Markup(),
	}
}

// Response is what a dispatched event produced.
type Response struct {
	Type        EventType           `json:"type"`
	Outcome     formset.Outcome     `json:"outcome,omitempty"`
	Effects     []formset.Effect    `json:"effects,omitempty"`
	Suggestions []formset.Candidate `json:"suggestions,omitempty"`
	// Stale is set when query results arrived after a newer query was
	// issued and were discarded.
	Stale bool          `json:"stale,omitempty"`
	Entry *EntryView    `json:"entry,omitempty"`
	Input formset.Input `json:"input"`
	Total int           `json:"total"`
	Error string        `json:"error,omitempty"`
}
