package nlu

import (
	"strconv"
	"strings"
	"time"
)

// ResolveDate resolves a date timex expression against a reference date.
// Supported forms:
//
//   - concrete dates: 2026-08-29
//   - recurring month-day: XXXX-08-29, resolved to the latest occurrence
//     strictly before the reference
//   - recurring weekday: XXXX-WXX-6 (ISO weekday, 1 = Monday), resolved to
//     the latest occurrence strictly before the reference
//
// Time-of-day, duration, and range expressions do not name a single day and
// report false.
func ResolveDate(timex string, ref time.Time) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02", timex, ref.Location()); err == nil {
		return t, true
	}

	if weekday, ok := strings.CutPrefix(timex, "XXXX-WXX-"); ok {
		day, err := strconv.Atoi(weekday)
		if err != nil || day < 1 || day > 7 {
			return time.Time{}, false
		}
		// ISO weekday 7 (Sunday) wraps to time.Sunday.
		target := time.Weekday(day % 7)
		t := truncateToDay(ref).AddDate(0, 0, -1)
		for t.Weekday() != target {
			t = t.AddDate(0, 0, -1)
		}
		return t, true
	}

	if monthDay, ok := strings.CutPrefix(timex, "XXXX-"); ok {
		md, err := time.ParseInLocation("01-02", monthDay, ref.Location())
		if err != nil {
			return time.Time{}, false
		}
		candidate := time.Date(ref.Year(), md.Month(), md.Day(), 0, 0, 0, 0, ref.Location())
		if !candidate.Before(truncateToDay(ref)) {
			candidate = candidate.AddDate(-1, 0, 0)
		}
		return candidate, true
	}

	return time.Time{}, false
}

// ResolveToDate resolves the first datetime entity to a concrete day, trying
// its timex expressions in order. Entities after the first are ignored.
func ResolveToDate(specs []DateTimeSpec, ref time.Time) (time.Time, bool) {
	if len(specs) == 0 {
		return time.Time{}, false
	}
	for _, timex := range specs[0].Timex {
		if t, ok := ResolveDate(timex, ref); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
