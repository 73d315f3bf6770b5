package types

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ErrInvalidTimestamp is returned when a timestamp matches none of the known layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// timestampLayouts lists accepted layouts. Zone-less values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Timestamp is a point in time as sent by the backend services, which mix
// RFC 3339 and zone-less ISO 8601 strings.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// UnmarshalJSON implements json.Unmarshaler. Null and empty strings yield the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}

	if s == "" {
		*t = Timestamp{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return sonic.Marshal(t.UTC().Format(time.RFC3339Nano))
}
