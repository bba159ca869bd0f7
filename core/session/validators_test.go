package session

import (
	"testing"

	"github.com/trezcool/shule/core"
)

func newSession(recurring bool, rec *NewRecurrence) NewSession {
	return NewSession{
		Name:       "Bible Lesson",
		Category:   CategoryLesson,
		Date:       "2021-01-03",
		StartTime:  "10:00",
		EndTime:    "11:30",
		LevelIDs:   []string{"1"},
		Recurring:  recurring,
		Recurrence: rec,
	}
}

func TestNewSessionValidate(t *testing.T) {
	validate, _ := core.NewValidator()

	tests := []struct {
		name      string
		ns        NewSession
		wantField string // "" = valid
	}{
		{name: "valid single", ns: newSession(false, nil)},
		{
			name: "valid weekly",
			ns:   newSession(true, &NewRecurrence{Frequency: FreqWeekly, Weekdays: []int{0}}),
		},
		{
			name: "valid monthly",
			ns:   newSession(true, &NewRecurrence{Frequency: FreqMonthly, DayOfMonth: 15}),
		},
		{name: "recurring without pattern", ns: newSession(true, nil), wantField: "recurrence"},
		{
			name:      "pattern on non-recurring session",
			ns:        newSession(false, &NewRecurrence{Frequency: FreqDaily}),
			wantField: "recurrence",
		},
		{
			name:      "weekly without weekdays",
			ns:        newSession(true, &NewRecurrence{Frequency: FreqWeekly}),
			wantField: "recurrence.weekdays",
		},
		{
			name:      "monthly without day of month",
			ns:        newSession(true, &NewRecurrence{Frequency: FreqMonthly}),
			wantField: "recurrence.day_of_month",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
			}
			for _, fld := range vErr.Fields {
				if fld.Field == tt.wantField {
					return
				}
			}
			t.Errorf("Validate() fields = %v, want error on %q", vErr.Fields, tt.wantField)
		})
	}
}

func TestNewSessionValidateBadShapes(t *testing.T) {
	validate, _ := core.NewValidator()

	bad := []struct {
		name   string
		mutate func(*NewSession)
	}{
		{"missing name", func(ns *NewSession) { ns.Name = "" }},
		{"unknown category", func(ns *NewSession) { ns.Category = "karaoke" }},
		{"bad date", func(ns *NewSession) { ns.Date = "03/01/2021" }},
		{"bad start time", func(ns *NewSession) { ns.StartTime = "10h00" }},
		{"no levels", func(ns *NewSession) { ns.LevelIDs = nil }},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			ns := newSession(false, nil)
			tt.mutate(&ns)
			if err := ns.Validate(validate); err == nil {
				t.Error("Validate() error = nil, want validation failure")
			}
		})
	}
}

func TestUpdateSessionValidate(t *testing.T) {
	validate, _ := core.NewValidator()
	bPtr := func(b bool) *bool { return &b }

	orig := newSession(true, &NewRecurrence{Frequency: FreqWeekly, Weekdays: []int{0}}).definition()

	t.Run("keeping the original pattern is fine", func(t *testing.T) {
		uu := UpdateSession{Name: "Bible Study"}
		if err := uu.Validate(validate, orig); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	t.Run("turning recurrence on without a pattern fails", func(t *testing.T) {
		single := newSession(false, nil).definition()
		uu := UpdateSession{Recurring: bPtr(true)}
		if err := uu.Validate(validate, single); err == nil {
			t.Error("Validate() error = nil, want validation failure")
		}
	})

	t.Run("replacing with a degenerate weekly pattern fails", func(t *testing.T) {
		uu := UpdateSession{Recurrence: &NewRecurrence{Frequency: FreqWeekly}}
		if err := uu.Validate(validate, orig); err == nil {
			t.Error("Validate() error = nil, want validation failure")
		}
	})
}
