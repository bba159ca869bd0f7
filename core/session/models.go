package session

import (
	"time"
)

// Categories
const (
	CategoryLesson  = "lesson"
	CategoryEvent   = "event"
	CategoryTrip    = "trip"
	CategoryMeeting = "meeting"
	CategoryOther   = "other"
)

var Categories = []string{CategoryLesson, CategoryEvent, CategoryTrip, CategoryMeeting, CategoryOther}

// Frequencies
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

var Frequencies = []string{FreqDaily, FreqWeekly, FreqMonthly}

// Rule is the recurrence variant attached to a recurring Definition.
// Exactly one of Daily, Weekly or Monthly; the expander switches on the
// concrete type so partially-populated patterns cannot exist.
type Rule interface {
	Frequency() string
	// normalized interval; a zero/negative stored value counts as 1
	Every() int
}

type Daily struct {
	Interval int
}

type Weekly struct {
	Interval int
	Weekdays []time.Weekday // 0=Sunday..6=Saturday
}

type Monthly struct {
	Interval   int
	DayOfMonth int // 1..31; clamped to the target month's last day
}

func (r Daily) Frequency() string   { return FreqDaily }
func (r Weekly) Frequency() string  { return FreqWeekly }
func (r Monthly) Frequency() string { return FreqMonthly }

func (r Daily) Every() int   { return normInterval(r.Interval) }
func (r Weekly) Every() int  { return normInterval(r.Interval) }
func (r Monthly) Every() int { return normInterval(r.Interval) }

func normInterval(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Recurrence bounds a Rule. When both EndDate and MaxCount are set,
// expansion stops at whichever bound is reached first.
type Recurrence struct {
	Rule     Rule
	EndDate  time.Time // zero value = no end date
	MaxCount int       // 0 = no occurrence cap
}

// Definition is the template an activity is scheduled from.
type Definition struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Category     string      `json:"category"`
	AnchorDate   time.Time   `json:"date"`
	StartTime    string      `json:"start_time"` // "HH:MM"
	EndTime      string      `json:"end_time"`
	Location     string      `json:"location,omitempty"`
	InstructorID string      `json:"instructor_id,omitempty"`
	LevelIDs     []string    `json:"level_ids"`
	Recurring    bool        `json:"recurring"`
	Recurrence   *Recurrence `json:"-"`
	MaxAttendees int         `json:"max_attendees,omitempty"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
}

// Occurrence is one concrete calendar instance of a Definition.
// Occurrences are computed on demand and never persisted themselves.
type Occurrence struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Location  string    `json:"location,omitempty"`
}

func (d Definition) occurrenceOn(date time.Time) Occurrence {
	return Occurrence{
		SessionID: d.ID,
		Name:      d.Name,
		Category:  d.Category,
		Date:      date,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Location:  d.Location,
	}
}

// QueryFilter narrows down Definition queries; zero-value fields are skipped.
type QueryFilter struct {
	Search     string `query:"search"`
	Category   string `query:"category"`
	IsActive   *bool  `query:"is_active"`
	LevelID    string `query:"level_id"`
	ActiveOnly bool   `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.IsActive == nil && qf.LevelID == "" && !qf.ActiveOnly
}
