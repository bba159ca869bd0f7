package session

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var errBadPattern = errors.New("invalid recurrence pattern")

// NewRecurrence is the wire shape of a recurrence pattern.
type NewRecurrence struct {
	Frequency      string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval       int    `json:"interval" validate:"omitempty,min=1"`
	Weekdays       []int  `json:"weekdays" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth     int    `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	EndDate        string `json:"end_date" validate:"omitempty,date"`
	MaxOccurrences int    `json:"max_occurrences" validate:"omitempty,min=1"`
}

// recurrence converts the wire shape to the tagged Rule variant.
// Callers must have validated the shape first.
func (nr NewRecurrence) recurrence() *Recurrence {
	rec := &Recurrence{MaxCount: nr.MaxOccurrences}
	if nr.EndDate != "" {
		rec.EndDate, _ = core.ParseDate(nr.EndDate)
	}
	switch nr.Frequency {
	case FreqWeekly:
		weekdays := make([]time.Weekday, 0, len(nr.Weekdays))
		for _, wd := range nr.Weekdays {
			weekdays = append(weekdays, time.Weekday(wd))
		}
		rec.Rule = Weekly{Interval: nr.Interval, Weekdays: weekdays}
	case FreqMonthly:
		rec.Rule = Monthly{Interval: nr.Interval, DayOfMonth: nr.DayOfMonth}
	default:
		rec.Rule = Daily{Interval: nr.Interval}
	}
	return rec
}

// patternFieldErrors surfaces inconsistent recurrence fields at save time;
// expansion itself never fails on a degenerate pattern.
func patternFieldErrors(recurring bool, nr *NewRecurrence) []core.FieldError {
	var flds []core.FieldError
	if !recurring {
		if nr != nil {
			flds = append(flds, core.FieldError{Field: "recurrence", Error: "must be absent on a non-recurring session"})
		}
		return flds
	}
	if nr == nil {
		return append(flds, core.FieldError{Field: "recurrence", Error: "required on a recurring session"})
	}
	switch nr.Frequency {
	case FreqWeekly:
		if len(nr.Weekdays) == 0 {
			flds = append(flds, core.FieldError{Field: "recurrence.weekdays", Error: "at least one weekday is required"})
		}
	case FreqMonthly:
		if nr.DayOfMonth == 0 {
			flds = append(flds, core.FieldError{Field: "recurrence.day_of_month", Error: "this field is required"})
		}
	}
	return flds
}

// NewSession contains information needed to create a new Definition.
type NewSession struct {
	Name         string         `json:"name" validate:"required"`
	Description  string         `json:"description"`
	Category     string         `json:"category" validate:"required,oneof=lesson event trip meeting other"`
	Date         string         `json:"date" validate:"required,date"`
	StartTime    string         `json:"start_time" validate:"required,timehhmm"`
	EndTime      string         `json:"end_time" validate:"required,timehhmm"`
	Location     string         `json:"location"`
	InstructorID string         `json:"instructor_id"`
	LevelIDs     []string       `json:"level_ids" validate:"required,min=1"`
	Recurring    bool           `json:"recurring"`
	Recurrence   *NewRecurrence `json:"recurrence"`
	MaxAttendees int            `json:"max_attendees" validate:"omitempty,min=1"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.Location = core.CleanString(ns.Location)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if flds := patternFieldErrors(ns.Recurring, ns.Recurrence); flds != nil {
		return core.NewValidationError(errBadPattern, flds...)
	}
	return nil
}

// definition builds the Definition a valid NewSession describes.
func (ns NewSession) definition() Definition {
	anchor, _ := core.ParseDate(ns.Date)
	def := Definition{
		Name:         ns.Name,
		Description:  ns.Description,
		Category:     ns.Category,
		AnchorDate:   anchor,
		StartTime:    ns.StartTime,
		EndTime:      ns.EndTime,
		Location:     ns.Location,
		InstructorID: ns.InstructorID,
		LevelIDs:     ns.LevelIDs,
		Recurring:    ns.Recurring,
		MaxAttendees: ns.MaxAttendees,
		IsActive:     true,
	}
	if ns.Recurring && ns.Recurrence != nil {
		def.Recurrence = ns.Recurrence.recurrence()
	}
	return def
}

// UpdateSession defines what information may be provided to modify an
// existing Definition; zero-value/nil fields keep the original value.
type UpdateSession struct {
	Name         string         `json:"name"`
	Description  *string        `json:"description"`
	Category     string         `json:"category" validate:"omitempty,oneof=lesson event trip meeting other"`
	Date         string         `json:"date" validate:"omitempty,date"`
	StartTime    string         `json:"start_time" validate:"omitempty,timehhmm"`
	EndTime      string         `json:"end_time" validate:"omitempty,timehhmm"`
	Location     *string        `json:"location"`
	InstructorID *string        `json:"instructor_id"`
	LevelIDs     []string       `json:"level_ids" validate:"omitempty,min=1"`
	Recurring    *bool          `json:"recurring"`
	Recurrence   *NewRecurrence `json:"recurrence"`
	MaxAttendees *int           `json:"max_attendees"`
	IsActive     *bool          `json:"is_active"`
}

func (uu *UpdateSession) Validate(validate *validator.Validate, orig Definition) error {
	uu.Name = core.CleanString(uu.Name)

	if err := validate.Struct(uu); err != nil {
		return err
	}

	// check pattern invariants against the state the update would leave
	recurring := orig.Recurring
	if uu.Recurring != nil {
		recurring = *uu.Recurring
	}
	nr := uu.Recurrence
	if nr == nil && recurring && orig.Recurrence != nil {
		return nil // keeping the original pattern
	}
	if flds := patternFieldErrors(recurring, nr); flds != nil {
		return core.NewValidationError(errBadPattern, flds...)
	}
	return nil
}

// apply merges the update into `orig` and returns the result.
func (uu UpdateSession) apply(orig Definition) Definition {
	def := orig
	if uu.Name != "" {
		def.Name = uu.Name
	}
	if uu.Description != nil {
		def.Description = core.CleanString(*uu.Description)
	}
	if uu.Category != "" {
		def.Category = uu.Category
	}
	if uu.Date != "" {
		def.AnchorDate, _ = core.ParseDate(uu.Date)
	}
	if uu.StartTime != "" {
		def.StartTime = uu.StartTime
	}
	if uu.EndTime != "" {
		def.EndTime = uu.EndTime
	}
	if uu.Location != nil {
		def.Location = core.CleanString(*uu.Location)
	}
	if uu.InstructorID != nil {
		def.InstructorID = *uu.InstructorID
	}
	if uu.LevelIDs != nil {
		def.LevelIDs = uu.LevelIDs
	}
	if uu.Recurring != nil {
		def.Recurring = *uu.Recurring
	}
	if uu.Recurrence != nil {
		def.Recurrence = uu.Recurrence.recurrence()
	}
	if !def.Recurring {
		def.Recurrence = nil
	}
	if uu.MaxAttendees != nil {
		def.MaxAttendees = *uu.MaxAttendees
	}
	if uu.IsActive != nil {
		def.IsActive = *uu.IsActive
	}
	return def
}
