package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNominalTimes parses a comma separated list of hour offsets such as
// "0.5,1.0,2.0". Order is kept. Every entry must be a number, so "0.5,,1"
// and a trailing comma are rejected.
func ParseNominalTimes(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("at least one nominal time is required")
	}
	fields := strings.Split(s, ",")
	times := make([]float64, 0, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("nominal time at position %d is empty", i+1)
		}
		t, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("nominal time %q is not a number", field)
		}
		times = append(times, t)
	}
	return times, nil
}

// ParseWithdrawn parses a comma separated list of integer subject IDs.
// An empty string means no subject is withdrawn; an empty entry inside a
// list is an error.
func ParseWithdrawn(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []string
	for i, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("withdrawn subject at position %d is empty", i+1)
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("withdrawn subject %q is not an integer", field)
		}
		ids = append(ids, strconv.Itoa(id))
	}
	return ids, nil
}

// ParsePeriods parses the period count, which must be at least 1.
func ParsePeriods(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("period count %q is not an integer", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("period count must be at least 1, got %d", n)
	}
	return n, nil
}
