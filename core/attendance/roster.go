package attendance

import (
	"github.com/trezcool/shule/core/member"
	"github.com/trezcool/shule/core/session"
)

// BuildRoster produces the editable roster for one occurrence of `def`:
// members eligible by level, defaulted to absent, overlaid with whatever is
// already persisted for (session, date). Entries keep the order the members
// were supplied in, so repeated renders stay visually stable.
func BuildRoster(def session.Definition, members []member.Member, existing []Record) []RosterEntry {
	byMember := make(map[string]Record, len(existing))
	for _, rec := range existing {
		byMember[rec.MemberID] = rec
	}

	roster := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		if !m.HasLevel(def.LevelIDs) {
			continue
		}
		entry := RosterEntry{
			MemberID:   m.ID,
			MemberName: m.FullName(),
			LevelID:    m.LevelID,
			Status:     StatusAbsent,
		}
		if rec, ok := byMember[m.ID]; ok {
			entry.Status = rec.Status
			entry.ArrivalTime = rec.ArrivalTime
			entry.Notes = rec.Notes
			entry.Recorded = true
		}
		roster = append(roster, entry)
	}
	return roster
}
