package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of a NullDate.
const DateLayout = "2006-01-02"

// NullDate is an optional calendar date. A valid NullDate always holds midnight
// UTC of its day, so two dates compare equal exactly when they name the same day.
//
// It serializes to JSON as "2006-01-02" or null.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate returns the calendar day of t. The wall-clock year, month and day of
// t in its own location are kept; the zone itself is dropped, not converted.
func NewDate(t time.Time) NullDate {
	y, m, d := t.Date()
	return NullDate{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// DateOf builds a NullDate from year, month and day.
func DateOf(year int, month time.Month, day int) NullDate {
	return NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (NullDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return NullDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// Between reports whether d is valid and start <= d <= end at day granularity.
func (d NullDate) Between(start, end time.Time) bool {
	if !d.Valid {
		return false
	}
	s, e := NewDate(start).Time, NewDate(end).Time
	return !d.Time.Before(s) && !d.Time.After(e)
}

// Before orders dates; invalid dates sort after every valid one.
func (d NullDate) Before(other NullDate) bool {
	switch {
	case !d.Valid:
		return false
	case !other.Valid:
		return true
	default:
		return d.Time.Before(other.Time)
	}
}

// String returns the date in DateLayout, or "" when invalid.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *NullDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
