package session

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dates(ds ...time.Time) []time.Time { return ds }

func weeklyDef(anchor time.Time, rec *Recurrence) Definition {
	return Definition{
		ID:         "sess1",
		Name:       "Bible Lesson",
		Category:   CategoryLesson,
		AnchorDate: anchor,
		Recurring:  rec != nil,
		Recurrence: rec,
		IsActive:   true,
	}
}

func TestExpand(t *testing.T) {
	anchor := date(2021, time.January, 3) // a Sunday

	tests := []struct {
		name       string
		def        Definition
		start, end time.Time
		want       []time.Time
	}{
		{
			name:  "single occurrence within range",
			def:   weeklyDef(anchor, nil),
			start: date(2021, time.January, 1), end: date(2021, time.January, 31),
			want: dates(anchor),
		},
		{
			name:  "single occurrence out of range",
			def:   weeklyDef(anchor, nil),
			start: date(2021, time.February, 1), end: date(2021, time.February, 28),
			want: nil,
		},
		{
			name: "recurring without pattern expands to nothing",
			def: Definition{
				ID: "sess1", Name: "Bible Lesson", Category: CategoryLesson,
				AnchorDate: anchor, Recurring: true, IsActive: true,
			},
			start: date(2021, time.January, 1), end: date(2021, time.January, 31),
			want:  nil,
		},
		{
			name: "daily every day",
			def: weeklyDef(anchor, &Recurrence{
				Rule: Daily{Interval: 1},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.January, 6),
			want: dates(anchor, date(2021, time.January, 4), date(2021, time.January, 5), date(2021, time.January, 6)),
		},
		{
			name: "daily every 3 days",
			def: weeklyDef(anchor, &Recurrence{
				Rule: Daily{Interval: 3},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.January, 12),
			want: dates(anchor, date(2021, time.January, 6), date(2021, time.January, 9), date(2021, time.January, 12)),
		},
		{
			name: "weekly sundays over 4 weeks",
			def: weeklyDef(anchor, &Recurrence{
				Rule: Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.January, 30),
			want: dates(anchor, date(2021, time.January, 10), date(2021, time.January, 17), date(2021, time.January, 24)),
		},
		{
			name: "weekly multiple weekdays stays in week order",
			def: weeklyDef(anchor, &Recurrence{
				Rule: Weekly{Interval: 1, Weekdays: []time.Weekday{time.Wednesday, time.Sunday}},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.January, 13),
			want: dates(anchor, date(2021, time.January, 6), date(2021, time.January, 10), date(2021, time.January, 13)),
		},
		{
			name: "weekly every 2 weeks keeps week alignment",
			def: weeklyDef(anchor, &Recurrence{
				Rule: Weekly{Interval: 2, Weekdays: []time.Weekday{time.Sunday}},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.February, 1),
			want: dates(anchor, date(2021, time.January, 17), date(2021, time.January, 31)),
		},
		{
			name: "weekly anchored midweek skips earlier weekdays of anchor week",
			def: weeklyDef(date(2021, time.January, 6) /* Wednesday */, &Recurrence{
				Rule: Weekly{Interval: 1, Weekdays: []time.Weekday{time.Monday, time.Friday}},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.January, 12),
			want: dates(date(2021, time.January, 8), date(2021, time.January, 11)),
		},
		{
			name: "weekly empty weekday set expands to nothing",
			def: weeklyDef(anchor, &Recurrence{
				Rule: Weekly{Interval: 1},
			}),
			start: date(2021, time.January, 3), end: date(2021, time.March, 1),
			want: nil,
		},
		{
			name: "monthly clamps day 31 to shorter months",
			def: weeklyDef(date(2021, time.January, 31), &Recurrence{
				Rule: Monthly{Interval: 1, DayOfMonth: 31},
			}),
			start: date(2021, time.January, 1), end: date(2021, time.April, 30),
			want: dates(
				date(2021, time.January, 31),
				date(2021, time.February, 28),
				date(2021, time.March, 31),
				date(2021, time.April, 30),
			),
		},
		{
			name: "monthly leap february",
			def: weeklyDef(date(2020, time.January, 31), &Recurrence{
				Rule: Monthly{Interval: 1, DayOfMonth: 31},
			}),
			start: date(2020, time.February, 1), end: date(2020, time.February, 29),
			want: dates(date(2020, time.February, 29)),
		},
		{
			name: "monthly every 2 months",
			def: weeklyDef(date(2021, time.January, 15), &Recurrence{
				Rule: Monthly{Interval: 2, DayOfMonth: 15},
			}),
			start: date(2021, time.January, 1), end: date(2021, time.June, 30),
			want: dates(date(2021, time.January, 15), date(2021, time.March, 15), date(2021, time.May, 15)),
		},
		{
			name: "end date bounds expansion",
			def: weeklyDef(anchor, &Recurrence{
				Rule:    Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
				EndDate: date(2021, time.January, 17),
			}),
			start: date(2021, time.January, 3), end: date(2021, time.March, 1),
			want: dates(anchor, date(2021, time.January, 10), date(2021, time.January, 17)),
		},
		{
			name: "occurrence cap bounds expansion",
			def: weeklyDef(anchor, &Recurrence{
				Rule:     Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
				MaxCount: 3,
			}),
			start: date(2021, time.January, 3), end: date(2021, time.March, 14), // 10+ weeks
			want: dates(anchor, date(2021, time.January, 10), date(2021, time.January, 17)),
		},
		{
			name: "cap counts from the anchor even when the window starts later",
			def: weeklyDef(anchor, &Recurrence{
				Rule:     Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
				MaxCount: 3,
			}),
			start: date(2021, time.January, 11), end: date(2021, time.March, 14),
			want: dates(date(2021, time.January, 17)),
		},
		{
			name: "earlier of end date and cap wins",
			def: weeklyDef(anchor, &Recurrence{
				Rule:     Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
				EndDate:  date(2021, time.January, 10),
				MaxCount: 5,
			}),
			start: date(2021, time.January, 3), end: date(2021, time.March, 1),
			want: dates(anchor, date(2021, time.January, 10)),
		},
		{
			name: "end date before anchor expands to nothing",
			def: weeklyDef(anchor, &Recurrence{
				Rule:    Daily{Interval: 1},
				EndDate: date(2020, time.December, 25),
			}),
			start: date(2020, time.December, 1), end: date(2021, time.January, 31),
			want: nil,
		},
		{
			name:  "inverted range expands to nothing",
			def:   weeklyDef(anchor, &Recurrence{Rule: Daily{Interval: 1}}),
			start: date(2021, time.February, 1), end: date(2021, time.January, 1),
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.def, tt.start, tt.end)
			assertDatesEqual(t, got, tt.want)
		})
	}
}

func TestExpandDeterminism(t *testing.T) {
	def := weeklyDef(date(2021, time.January, 3), &Recurrence{
		Rule: Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday, time.Wednesday}},
	})
	start, end := date(2021, time.January, 1), date(2021, time.June, 30)

	first := Expand(def, start, end)
	second := Expand(def, start, end)
	assertDatesEqual(t, second, first)
	if len(first) == 0 {
		t.Fatal("Expand() returned no dates")
	}
}

func TestExpandWeeklyAllSundays(t *testing.T) {
	// weekly {Sunday}, interval 1, over any 4-week window -> exactly 4 Sundays
	def := weeklyDef(date(2021, time.March, 7), &Recurrence{
		Rule: Weekly{Interval: 1, Weekdays: []time.Weekday{time.Sunday}},
	})
	start := date(2021, time.March, 7)
	end := start.AddDate(0, 0, 4*7-1)

	got := Expand(def, start, end)
	if len(got) != 4 {
		t.Fatalf("Expand() returned %d dates, want 4", len(got))
	}
	for _, d := range got {
		if d.Weekday() != time.Sunday {
			t.Errorf("Expand() emitted %v (%s), want Sundays only", d, d.Weekday())
		}
	}
}

func assertDatesEqual(t *testing.T, got, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d dates (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
