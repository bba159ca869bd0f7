package attendance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// BulkEdit is the wire shape of one edited roster line.
type BulkEdit struct {
	MemberID    string `json:"member_id" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=present absent late excused"`
	ArrivalTime string `json:"arrival_time" validate:"omitempty,timehhmm"`
	Notes       string `json:"notes"`
}

// BulkAttendance is a bulk save of edited statuses for one occurrence.
type BulkAttendance struct {
	SessionID string     `json:"session_id" validate:"required"`
	Date      string     `json:"date" validate:"required,date"`
	Edits     []BulkEdit `json:"edits" validate:"required,min=1,dive"`
}

func (ba *BulkAttendance) Validate(validate *validator.Validate) error {
	for i := range ba.Edits {
		ba.Edits[i].Notes = core.CleanString(ba.Edits[i].Notes)
	}
	return validate.Struct(ba)
}

func (ba BulkAttendance) edits() []Edit {
	edits := make([]Edit, 0, len(ba.Edits))
	for _, e := range ba.Edits {
		edits = append(edits, Edit{
			MemberID:    e.MemberID,
			Status:      e.Status,
			ArrivalTime: e.ArrivalTime,
			Notes:       e.Notes,
		})
	}
	return edits
}
