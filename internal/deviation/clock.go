package deviation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/06 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-06 15:04",
	"1/2/2006 3:04:05 PM",
}

// ParseClock returns the time of day of a spreadsheet time value as an offset
// from midnight, truncated to whole seconds. Date parts are ignored.
//
// Accepted inputs are clock strings ("08:30", "8:30:00 AM"), date-times
// ("2024-03-01 08:30:00") and raw Excel serial numbers, where only the
// fractional day is used.
func ParseClock(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrMissingValue
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return serialTimeOfDay(serial, raw)
	}

	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return timeOfDay(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadClock, raw)
}

// serialTimeOfDay handles Excel serial values. Pure times are stored as a
// fraction of a day; anything from 1 up is a full date-time.
func serialTimeOfDay(serial float64, raw string) (time.Duration, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, raw)
	}
	if serial < 1 {
		seconds := math.Round(serial * secondsPerDay)
		return time.Duration(math.Mod(seconds, secondsPerDay)) * time.Second, nil
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadClock, raw, err)
	}
	return timeOfDay(t.Round(time.Second)), nil
}

const secondsPerDay = 24 * 60 * 60

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}
