package preload_test

import (
	"testing"
	"time"

	"github.com/brainink/hub/internal/preload"
	"github.com/stretchr/testify/assert"
)

func TestFormatRelative(t *testing.T) {
	t.Parallel()

	old := baseTime.Add(-8 * 24 * time.Hour)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "zero", t: time.Time{}, want: "unknown"},
		{name: "just now", t: baseTime.Add(-30 * time.Second), want: "now"},
		{name: "future", t: baseTime.Add(time.Hour), want: "now"},
		{name: "one minute", t: baseTime.Add(-time.Minute), want: "1m ago"},
		{name: "minutes", t: baseTime.Add(-59*time.Minute - 59*time.Second), want: "59m ago"},
		{name: "one hour", t: baseTime.Add(-time.Hour), want: "1h ago"},
		{name: "hours", t: baseTime.Add(-23 * time.Hour), want: "23h ago"},
		{name: "one day", t: baseTime.Add(-24 * time.Hour), want: "1d ago"},
		{name: "days", t: baseTime.Add(-6*24*time.Hour - 23*time.Hour), want: "6d ago"},
		{name: "calendar date", t: old, want: old.Local().Format("1/2/2006")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, preload.FormatRelative(tt.t, baseTime))
		})
	}
}
