package shared

import (
	"testing"
	"time"
)

func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want string
	}{
		{
			name: "mid week",
			time: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
			want: "2025-W10",
		},
		{
			name: "january 1st belongs to prior ISO year",
			time: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2020-W53",
		},
		{
			name: "december 31st same week as january 1st",
			time: time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC),
			want: "2020-W53",
		},
		{
			name: "first monday of new ISO year",
			time: time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
			want: "2021-W01",
		},
		{
			name: "late december belongs to next ISO year",
			time: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
			want: "2025-W01",
		},
		{
			name: "single digit week zero padded",
			time: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
			want: "2025-W02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekKey(tt.time); got != tt.want {
				t.Errorf("WeekKey(%v) = %q, want %q", tt.time, got, tt.want)
			}
		})
	}
}

func TestWeekKeySameWeek(t *testing.T) {
	// Monday 2025-03-03 through Sunday 2025-03-09 share one key.
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	want := WeekKey(monday)

	for d := 0; d < 7; d++ {
		day := monday.AddDate(0, 0, d)
		if got := WeekKey(day); got != want {
			t.Errorf("WeekKey(%v) = %q, want %q", day, got, want)
		}
	}

	nextMonday := monday.AddDate(0, 0, 7)
	if got := WeekKey(nextMonday); got == want {
		t.Errorf("WeekKey(%v) = %q, expected a new week", nextMonday, got)
	}
}

func TestWeekKeyTimezoneIndependent(t *testing.T) {
	auckland := time.FixedZone("NZDT", 13*60*60)

	// Sunday 23:00 UTC is already Monday in Auckland; the key must follow
	// the UTC week.
	sundayLateUTC := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	if got, want := WeekKey(sundayLateUTC.In(auckland)), WeekKey(sundayLateUTC); got != want {
		t.Errorf("WeekKey differs across zones for same instant: %q vs %q", got, want)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		time time.Time
		want time.Time
	}{
		{
			time.Date(2025, 3, 5, 12, 30, 0, 0, time.UTC), // Wednesday
			time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), // Monday itself
			time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC), // Sunday
			time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		if got := WeekStart(tt.time); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%v) = %v, want %v", tt.time, got, tt.want)
		}
	}
}

func TestSameUTCDay(t *testing.T) {
	a := time.Date(2025, 3, 5, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 3, 5, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)

	if !SameUTCDay(a, b) {
		t.Error("expected same UTC day")
	}
	if SameUTCDay(b, c) {
		t.Error("expected different UTC days")
	}

	// 23:00 UTC-5 is 04:00 UTC the next day.
	est := time.FixedZone("EST", -5*60*60)
	late := time.Date(2025, 3, 5, 23, 0, 0, 0, est)
	if !SameUTCDay(late, c) {
		t.Error("expected day comparison in UTC, not local time")
	}
}
