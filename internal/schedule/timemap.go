package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeMap is the bijection between nominal sample times and their 1-based
// position (Time Number) in the configured list.
type TimeMap struct {
	times   []float64
	numbers map[float64]int
}

// Pair is one Time → Time Number entry.
type Pair struct {
	Time   float64 `json:"time"`
	Number int     `json:"number"`
}

// NewTimeMap numbers times in the order given. The list must be non-empty,
// finite and free of duplicates.
func NewTimeMap(times []float64) (*TimeMap, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("at least one nominal time is required")
	}
	tm := &TimeMap{
		times:   make([]float64, len(times)),
		numbers: make(map[float64]int, len(times)),
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("nominal time at position %d is not a finite number", i+1)
		}
		if prev, exists := tm.numbers[t]; exists {
			return nil, fmt.Errorf("nominal time %s listed twice (positions %d and %d)", FormatHours(t), prev, i+1)
		}
		tm.times[i] = t
		tm.numbers[t] = i + 1
	}
	return tm, nil
}

// Number returns the Time Number of a nominal time.
func (m *TimeMap) Number(t float64) (int, bool) {
	n, ok := m.numbers[t]
	return n, ok
}

// Time returns the nominal time for a Time Number.
func (m *TimeMap) Time(number int) (float64, bool) {
	if number < 1 || number > len(m.times) {
		return 0, false
	}
	return m.times[number-1], true
}

// Times returns a copy of the nominal times in configured order.
func (m *TimeMap) Times() []float64 {
	return append([]float64(nil), m.times...)
}

// Len is the number of nominal times.
func (m *TimeMap) Len() int {
	return len(m.times)
}

// Pairs returns the mapping in configured order.
func (m *TimeMap) Pairs() []Pair {
	pairs := make([]Pair, len(m.times))
	for i, t := range m.times {
		pairs[i] = Pair{Time: t, Number: i + 1}
	}
	return pairs
}

// MarshalJSON renders the mapping as an object keyed by time, preserving
// the configured order.
func (m *TimeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range m.times {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(FormatHours(t))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(i + 1))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var _ json.Marshaler = (*TimeMap)(nil)

// FormatHours renders an hour offset with at least one decimal place,
// e.g. 1 → "1.0", 0.25 → "0.25".
func FormatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
