package registration

import (
	"strconv"
	"strings"
	"time"
)

// Event is one edit applied to a draft. Events are applied by the
// reducer; UI wiring never mutates a draft directly.
type Event interface {
	isEvent()
}

// SetField assigns one user-editable field. Values arrive as strings the
// way a terminal sends them; numeric coercion happens here, but bad
// numeric input is left to validation rather than being forced to zero
// mid-typing.
type SetField struct {
	Name  string
	Value string
}

// SelectDoctor picks a doctor and atomically derives department and fee
// from the directory.
type SelectDoctor struct {
	DoctorID string
}

func (SetField) isEvent()     {}
func (SelectDoctor) isEvent() {}

// parseAge returns nil for input that does not parse to a number so that
// validation reports it instead of a silent zero.
func parseAge(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// parseDate accepts the two formats terminals send.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
