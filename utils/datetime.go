package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate validates a YYYY-MM-DD date and returns it normalized.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

// ParseTimeOfDay validates a 24h HH:MM time and returns it normalized.
func ParseTimeOfDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeOfDayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Format(TimeOfDayLayout), nil
}

// MinutesOfDay converts an HH:MM string to minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse(TimeOfDayLayout, hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatDisplayDate renders YYYY-MM-DD as DD/MM/YYYY, the way reports print dates.
func FormatDisplayDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}
