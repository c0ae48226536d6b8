package formset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Candidate is a search result eligible to become an entry.
type Candidate struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// UnmarshalJSON accepts numeric keys as well as strings; search endpoints
// commonly return database ids as numbers.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key   json.RawMessage `json:"key"`
		Label string          `json:"label"`
		Icon  string          `json:"icon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	key, err := decodeKey(raw.Key)
	if err != nil {
		return err
	}
	*c = Candidate{Key: key, Label: raw.Label, Icon: raw.Icon}
	return nil
}

func decodeKey(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", fmt.Errorf("formset: candidate key must be a string or number, got %s", trimmed)
	}
	return n.String(), nil
}

// Input is the pending autocomplete input: the visible text and the raw
// payload of the last selected candidate. Each write replaces the previous
// one.
type Input struct {
	Text string `json:"text"`
	Item string `json:"item,omitempty"`
}

// Candidate decodes the pending payload. It reports false when nothing is
// pending, the payload does not parse, or the key is empty.
func (in Input) Candidate() (Candidate, bool) {
	if strings.TrimSpace(in.Item) == "" {
		return Candidate{}, false
	}
	var candidate Candidate
	if err := json.Unmarshal([]byte(in.Item), &candidate); err != nil {
		return Candidate{}, false
	}
	if candidate.Key == "" {
		return Candidate{}, false
	}
	return candidate, true
}

func encodeCandidate(candidate Candidate) string {
	payload, err := json.Marshal(candidate)
	if err != nil {
		return ""
	}
	return string(payload)
}
