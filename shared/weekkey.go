package shared

import (
	"fmt"
	"time"
)

// WeekKey maps an instant to its ISO-8601 week identifier, formatted
// "{ISOYear}-W{2-digit week}". The instant is normalized to UTC first so
// every caller agrees on week boundaries regardless of server locale.
// Note the ISO week-year can differ from the calendar year around January
// 1st: 2021-01-01 belongs to "2020-W53".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func CurrentWeekKey() string {
	return WeekKey(time.Now())
}

// WeekStart returns the UTC midnight of the Monday opening the ISO week
// that contains t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// SameUTCDay reports whether two instants fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
