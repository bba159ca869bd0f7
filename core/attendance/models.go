package attendance

import "time"

// Record statuses. A flat classification, not a workflow: any status may be
// changed to any other at any time.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// StatusCounted reports whether a status counts toward the attendance rate.
func StatusCounted(status string) bool {
	return status == StatusPresent || status == StatusLate
}

// StatusHasArrival reports whether arrival time is meaningful for a status;
// it is cleared for the others.
func StatusHasArrival(status string) bool {
	return status == StatusPresent || status == StatusLate
}

// Occurrence (AttendanceSession) statuses. Transitions only move forward:
// scheduled -> in_progress -> completed, or scheduled -> cancelled.
const (
	SessionScheduled  = "scheduled"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
)

var sessionTransitions = map[string][]string{
	SessionScheduled:  {SessionInProgress, SessionCancelled},
	SessionInProgress: {SessionCompleted},
	SessionCompleted:  {},
	SessionCancelled:  {},
}

// CanTransition reports whether an occurrence status may move from
// `from` to `to`. A status never re-enters scheduled after leaving it.
func CanTransition(from, to string) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the persisted record that an occurrence was acted upon; it is
// created lazily the first time attendance is recorded for the
// (session, date) pair.
type Session struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Date            time.Time `json:"date"`
	Status          string    `json:"status"`
	AttendanceCount int       `json:"attendance_count"` // present + late
	TotalExpected   int       `json:"total_expected"`   // roster size
	TakenBy         string    `json:"taken_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

// Record is one member's status for one occurrence. At most one Record
// exists per (session, member, date) triple; the reconciler upholds this.
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	MemberID    string    `json:"member_id"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	ArrivalTime string    `json:"arrival_time,omitempty"` // "HH:MM", present/late only
	Notes       string    `json:"notes,omitempty"`
	TakenBy     string    `json:"taken_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// RosterEntry is one line of the editable roster for an occurrence.
type RosterEntry struct {
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name"`
	LevelID     string `json:"level_id"`
	Status      string `json:"status"`
	ArrivalTime string `json:"arrival_time,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Recorded    bool   `json:"recorded"` // true when backed by a persisted Record
}

// Stats is the attendance breakdown for a set of records.
type Stats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Absent  int `json:"absent"`
	// Rate is round(100 * (present + late) / total), half-up; 0 when empty.
	Rate int `json:"rate"`
}
