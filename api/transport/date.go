package transport

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/pkg/calendar"
)

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp, of which only the
// calendar date is kept.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(calendar.Layout) {
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return time.Time{}, domain.InvalidDate(value, err)
		}
		// The date is kept as written, before any zone conversion.
		value = value[:len(calendar.Layout)]
	}
	t, err := calendar.Parse(value)
	if err != nil {
		return time.Time{}, domain.InvalidDate(value, err)
	}
	return t, nil
}

// NullableDate distinguishes an absent field from an explicit null. Set is
// true whenever the field appeared in the payload.
type NullableDate struct {
	Set   bool
	Value *time.Time
}

func (d *NullableDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.InvalidDate(string(data), err)
	}
	if raw == "" {
		d.Value = nil
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := calendar.Format(*t)
	return &s
}
