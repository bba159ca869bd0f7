package attendance

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Edit is one member's edited status in a bulk save.
type Edit struct {
	MemberID    string `json:"member_id"`
	Status      string `json:"status"`
	ArrivalTime string `json:"arrival_time,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ReconcileResult splits merged edits into fresh inserts and in-place
// updates. Skipped lists edits referencing members outside the roster
// (a stale roster on the caller's side); those never create orphan records.
type ReconcileResult struct {
	Inserts []Record `json:"inserts"`
	Updates []Record `json:"updates"`
	Skipped []string `json:"skipped,omitempty"` // member ids
}

// Reconcile merges `edits` against the persisted records of one occurrence.
// An edit for a member with an existing record mutates that record in place
// (same identity); any other edit becomes an insert. The existing snapshot
// must be consistent and already scoped to (sessionID, date); staleness
// detection is the persistence layer's concern. Re-running reconcile with a
// fresh snapshot always converges, so "reload, recompute, retry" is the
// recovery for write conflicts.
func Reconcile(edits []Edit, sessionID string, date time.Time, existing []Record, roster []RosterEntry, takenBy string, now time.Time) ReconcileResult {
	date = core.DateOf(date)
	now = now.UTC()

	byMember := make(map[string]Record, len(existing))
	for _, rec := range existing {
		byMember[rec.MemberID] = rec
	}
	inRoster := make(map[string]bool, len(roster))
	for _, entry := range roster {
		inRoster[entry.MemberID] = true
	}

	var res ReconcileResult
	// last edit wins when a member appears twice; track positions so the
	// result never carries two records for one member
	insertIdx := make(map[string]int)
	updateIdx := make(map[string]int)

	for _, edit := range edits {
		if !inRoster[edit.MemberID] {
			res.Skipped = append(res.Skipped, edit.MemberID)
			continue
		}

		arrival := edit.ArrivalTime
		if !StatusHasArrival(edit.Status) {
			arrival = "" // meaningless for absent/excused
		}

		if orig, ok := byMember[edit.MemberID]; ok {
			rec := orig
			rec.Status = edit.Status
			rec.ArrivalTime = arrival
			rec.Notes = edit.Notes
			rec.TakenBy = takenBy
			rec.UpdatedAt = now
			if i, seen := updateIdx[edit.MemberID]; seen {
				res.Updates[i] = rec
			} else {
				updateIdx[edit.MemberID] = len(res.Updates)
				res.Updates = append(res.Updates, rec)
			}
			continue
		}

		rec := Record{
			SessionID:   sessionID,
			MemberID:    edit.MemberID,
			Date:        date,
			Status:      edit.Status,
			ArrivalTime: arrival,
			Notes:       edit.Notes,
			TakenBy:     takenBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if i, seen := insertIdx[edit.MemberID]; seen {
			res.Inserts[i] = rec
		} else {
			insertIdx[edit.MemberID] = len(res.Inserts)
			res.Inserts = append(res.Inserts, rec)
		}
	}
	return res
}

// MergeRecords applies a reconcile result to the snapshot it was computed
// from, yielding the post-reconcile record set (what persistence will hold
// once the batch lands).
func MergeRecords(existing []Record, res ReconcileResult) []Record {
	updated := make(map[string]Record, len(res.Updates))
	for _, rec := range res.Updates {
		updated[rec.MemberID] = rec
	}

	merged := make([]Record, 0, len(existing)+len(res.Inserts))
	for _, rec := range existing {
		if up, ok := updated[rec.MemberID]; ok {
			rec = up
		}
		merged = append(merged, rec)
	}
	return append(merged, res.Inserts...)
}

// RecomputeCounts derives the occurrence counters from the post-reconcile
// record set: attendance count is the number of present + late records,
// total expected is the roster size. Always derived, never incremented, so
// repeated saves cannot drift.
func RecomputeCounts(records []Record, rosterSize int) (attendanceCount, totalExpected int) {
	for _, rec := range records {
		if StatusCounted(rec.Status) {
			attendanceCount++
		}
	}
	return attendanceCount, rosterSize
}
