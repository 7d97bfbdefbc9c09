// Package payload is the single access point for the time data a Power-Up
// stores on a card: a JSON-encoded value holding the entry list and the
// estimate. All readers and writers go through this package so the schema
// exists exactly once.
package payload

import (
	"encoding/json"
	"fmt"

	"github.com/mkessler/ttr/internal/model"
)

// Payload is the decoded shape of a card's time data value.
// EstimatedTime is in minutes; zero means no estimate.
type Payload struct {
	TimeEntries   []model.TimeEntry `json:"timeEntries"`
	EstimatedTime int               `json:"estimatedTime,omitempty"`
}

// Decode parses a card's raw time data value. An empty raw value is a
// valid empty payload. A malformed value yields an empty payload and a
// non-nil error; callers log it and treat the card as having no time
// data, never as a failed fetch.
func Decode(raw string) (Payload, error) {
	if raw == "" {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("malformed time payload: %w", err)
	}
	return p, nil
}

// Encode serializes a payload back into its stored string form.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding time payload: %w", err)
	}
	return string(data), nil
}

// AppendEntry returns a copy of p with the entry appended. Entries are
// append-only; concurrent writers are not coordinated (last write wins).
func AppendEntry(p Payload, e model.TimeEntry) Payload {
	entries := make([]model.TimeEntry, 0, len(p.TimeEntries)+1)
	entries = append(entries, p.TimeEntries...)
	entries = append(entries, e)
	p.TimeEntries = entries
	return p
}

// RemoveEntry returns a copy of p with the i-th entry spliced out, as the
// history view does. Out-of-range indices return an error and leave the
// payload unchanged.
func RemoveEntry(p Payload, i int) (Payload, error) {
	if i < 0 || i >= len(p.TimeEntries) {
		return p, fmt.Errorf("entry index %d out of range (card has %d entries)", i, len(p.TimeEntries))
	}
	entries := make([]model.TimeEntry, 0, len(p.TimeEntries)-1)
	entries = append(entries, p.TimeEntries[:i]...)
	entries = append(entries, p.TimeEntries[i+1:]...)
	p.TimeEntries = entries
	return p, nil
}

// SetEstimate returns a copy of p with the estimate (minutes) replaced
// wholesale.
func SetEstimate(p Payload, minutes int) Payload {
	p.EstimatedTime = minutes
	return p
}

// ClearEstimate returns a copy of p with no estimate.
func ClearEstimate(p Payload) Payload {
	p.EstimatedTime = 0
	return p
}

// FromCard extracts the time payload from a card's plugin data records.
// Cards without a time data record yield an empty payload; a record that
// fails to parse yields an empty payload plus the parse error.
func FromCard(card model.Card) (Payload, error) {
	return Decode(RawValue(card))
}

// RawValue finds the first plugin data record carrying a time payload.
// The Power-Up writes a single shared-scope record per card.
func RawValue(card model.Card) string {
	for _, pd := range card.PluginData {
		if pd.Value != "" {
			return pd.Value
		}
	}
	return ""
}
