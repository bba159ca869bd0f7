package session

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Expand turns a Definition into the concrete dates falling within
// [rangeStart, rangeEnd], both inclusive. The result is deterministic for
// fixed inputs and always finite; degenerate patterns (weekly with no
// weekdays, end date before the anchor) expand to nothing rather than
// failing. Callers must supply a closed range.
func Expand(def Definition, rangeStart, rangeEnd time.Time) []time.Time {
	rangeStart = core.DateOf(rangeStart)
	rangeEnd = core.DateOf(rangeEnd)
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	anchor := core.DateOf(def.AnchorDate)

	if !def.Recurring {
		if anchor.Before(rangeStart) || anchor.After(rangeEnd) {
			return nil
		}
		return []time.Time{anchor}
	}
	if def.Recurrence == nil {
		// recurring flag set with no pattern: zero occurrences
		return nil
	}

	rec := *def.Recurrence

	// the hard bound for the series: range end or pattern end date,
	// whichever comes first
	last := rangeEnd
	if !rec.EndDate.IsZero() {
		if end := core.DateOf(rec.EndDate); end.Before(last) {
			last = end
		}
	}
	if last.Before(anchor) {
		return nil
	}

	// The occurrence cap counts from the anchor, not from rangeStart: the
	// series always has the same first N dates no matter the window asked
	// for. Walk from the anchor and filter to the window at the end.
	var dates []time.Time
	capped := func() bool { return rec.MaxCount > 0 && len(dates) >= rec.MaxCount }

	switch rule := rec.Rule.(type) {
	case Daily:
		step := rule.Every()
		for d := anchor; !d.After(last) && !capped(); d = d.AddDate(0, 0, step) {
			dates = append(dates, d)
		}

	case Weekly:
		if len(rule.Weekdays) == 0 {
			return nil
		}
		wanted := make(map[time.Weekday]bool, len(rule.Weekdays))
		for _, wd := range rule.Weekdays {
			wanted[wd] = true
		}
		// stay aligned to week boundaries: step whole weeks from the
		// anchor's week and emit matching weekdays within each week
		step := 7 * rule.Every()
	weeks:
		for ws := startOfWeek(anchor); !ws.After(last); ws = ws.AddDate(0, 0, step) {
			for i := 0; i < 7; i++ {
				d := ws.AddDate(0, 0, i)
				if d.Before(anchor) || !wanted[d.Weekday()] {
					continue
				}
				if d.After(last) || capped() {
					break weeks
				}
				dates = append(dates, d)
			}
		}

	case Monthly:
		dom := rule.DayOfMonth
		if dom < 1 {
			dom = anchor.Day()
		}
		step := rule.Every()
		for months := 0; !capped(); months += step {
			d := monthDay(anchor, months, dom)
			if d.After(last) {
				break
			}
			if d.Before(anchor) {
				continue // dom earlier in the anchor month than the anchor itself
			}
			dates = append(dates, d)
		}

	default:
		// recurring flag set with no well-formed rule: zero occurrences
		return nil
	}

	// drop dates before the requested window
	out := dates[:0]
	for _, d := range dates {
		if !d.Before(rangeStart) {
			out = append(out, d)
		}
	}
	return out
}

// startOfWeek returns the most recent Sunday on/before `d`.
func startOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// monthDay resolves day-of-month `dom` in the month `months` after the
// anchor's month, clamping to the last valid day of shorter months
// (e.g. day 31 in April resolves to April 30).
func monthDay(anchor time.Time, months, dom int) time.Time {
	first := time.Date(anchor.Year(), anchor.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if lastDay := daysIn(first); dom > lastDay {
		dom = lastDay
	}
	return time.Date(first.Year(), first.Month(), dom, 0, 0, 0, 0, time.UTC)
}

func daysIn(monthFirst time.Time) int {
	return time.Date(monthFirst.Year(), monthFirst.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
