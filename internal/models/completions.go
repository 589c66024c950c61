package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/julianstephens/pocket/internal/constants"
)

// Completions maps a local calendar day (YYYY-MM-DD) to true. A day that was not
// completed has no key; a false value is never stored.
type Completions map[string]bool

// ValidDay reports whether day is a well-formed YYYY-MM-DD calendar date.
func ValidDay(day string) bool {
	if len(day) != len(constants.DateFormat) {
		return false
	}
	_, err := time.Parse(constants.DateFormat, day)
	return err == nil
}

// Has reports whether day is marked complete.
func (c Completions) Has(day string) bool {
	return c[day]
}

// Count returns the number of completed days.
func (c Completions) Count() int {
	n := 0
	for _, done := range c {
		if done {
			n++
		}
	}
	return n
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (c Completions) Clone() Completions {
	out := make(Completions, len(c))
	for day, done := range c {
		if done {
			out[day] = true
		}
	}
	return out
}

// Toggle returns a new map with day flipped: removed if present, added otherwise.
// The receiver is left untouched.
func (c Completions) Toggle(day string) Completions {
	out := c.Clone()
	if out[day] {
		delete(out, day)
	} else {
		out[day] = true
	}
	return out
}

// Dates returns the completed days in ascending order.
func (c Completions) Dates() []string {
	days := make([]string, 0, len(c))
	for day, done := range c {
		if done {
			days = append(days, day)
		}
	}
	sort.Strings(days)
	return days
}

// Equal reports whether both maps mark the same set of days.
func (c Completions) Equal(other Completions) bool {
	if c.Count() != other.Count() {
		return false
	}
	for day, done := range c {
		if done && !other[day] {
			return false
		}
	}
	return true
}

// ParseCompletions normalizes a loosely typed map (as decoded from JSON or a
// document store) into Completions. Entries whose value is not boolean true or
// whose key is not a valid day are dropped.
func ParseCompletions(raw map[string]any) Completions {
	out := make(Completions, len(raw))
	for day, v := range raw {
		b, ok := v.(bool)
		if !ok || !b || !ValidDay(day) {
			continue
		}
		out[day] = true
	}
	return out
}

// UnmarshalJSON accepts any JSON object and keeps only well-formed true entries.
func (c *Completions) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ParseCompletions(raw)
	return nil
}

// MarshalJSON always writes an object, never null.
func (c Completions) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]bool(c.Clone()))
}
