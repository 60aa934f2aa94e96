package deviation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/glizzus/pkinput/internal/deviation"
)

func TestParseClock(t *testing.T) {
	eightThirty := 8*time.Hour + 30*time.Minute

	tc := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "hh:mm:ss", input: "08:30:00", want: eightThirty},
		{name: "single digit hour", input: "8:30:00", want: eightThirty},
		{name: "hh:mm", input: "08:30", want: eightThirty},
		{name: "seconds kept", input: "08:30:15", want: eightThirty + 15*time.Second},
		{name: "fractional seconds dropped", input: "08:30:15.75", want: eightThirty + 15*time.Second},
		{name: "12 hour am", input: "8:30:00 AM", want: eightThirty},
		{name: "12 hour pm lowercase", input: "8:30 pm", want: eightThirty + 12*time.Hour},
		{name: "iso date time", input: "2024-03-01 08:30:00", want: eightThirty},
		{name: "iso T date time", input: "2024-03-01T08:30:00", want: eightThirty},
		{name: "excel default date time", input: "3/1/24 08:30", want: eightThirty},
		{name: "excel fraction", input: "0.5", want: 12 * time.Hour},
		{name: "excel fraction eight thirty", input: "0.3541666666666667", want: eightThirty},
		{name: "excel serial date time", input: "45352.354166666664", want: eightThirty},
		{name: "midnight", input: "0", want: 0},
		{name: "surrounding whitespace", input: "  08:30  ", want: eightThirty},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			got, err := deviation.ParseClock(test.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.want {
				t.Errorf("ParseClock(%q) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestParseClockErrors(t *testing.T) {
	tc := []struct {
		input string
		want  error
	}{
		{input: "", want: deviation.ErrMissingValue},
		{input: "   ", want: deviation.ErrMissingValue},
		{input: "not a time", want: deviation.ErrBadClock},
		{input: "25:00:00", want: deviation.ErrBadClock},
		{input: "-0.5", want: deviation.ErrBadClock},
		{input: "NaN", want: deviation.ErrBadClock},
	}

	for _, test := range tc {
		t.Run(test.input, func(t *testing.T) {
			_, err := deviation.ParseClock(test.input)
			if !errors.Is(err, test.want) {
				t.Errorf("ParseClock(%q) error = %v, want %v", test.input, err, test.want)
			}
		})
	}
}
