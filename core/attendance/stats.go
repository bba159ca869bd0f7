package attendance

import (
	"math"
	"time"

	"github.com/trezcool/shule/core"
)

// Aggregate computes the attendance breakdown and rate for a record set.
// Pure; an empty set yields a zero Stats with rate 0. The rate rounds
// half-up to the nearest integer, and every rate the app shows or compares
// goes through here so two call sites can never disagree on a percentage.
func Aggregate(records []Record) Stats {
	stats := Stats{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			stats.Present++
		case StatusLate:
			stats.Late++
		case StatusExcused:
			stats.Excused++
		case StatusAbsent:
			stats.Absent++
		}
	}
	if stats.Total > 0 {
		attended := stats.Present + stats.Late
		stats.Rate = int(math.Floor(100*float64(attended)/float64(stats.Total) + 0.5))
	}
	return stats
}

// AggregateByMember filters `records` to one member, optionally windowed to
// [from, to] (zero values disable either bound), before aggregating.
func AggregateByMember(memberID string, records []Record, from, to time.Time) Stats {
	if !from.IsZero() {
		from = core.DateOf(from)
	}
	if !to.IsZero() {
		to = core.DateOf(to)
	}

	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.MemberID != memberID {
			continue
		}
		date := core.DateOf(rec.Date)
		if !from.IsZero() && date.Before(from) {
			continue
		}
		if !to.IsZero() && date.After(to) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return Aggregate(filtered)
}
