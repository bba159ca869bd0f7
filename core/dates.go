package core

import (
	"time"

	"github.com/pkg/errors"
)

// Calendar dates carry no timezone; they are normalized to midnight UTC
// throughout the app and formatted as "2006-01-02" on the wire.

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

var errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// DateOf strips the time-of-day and location off `t`.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, CleanString(s))
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return DateOf(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(t1, t2 time.Time) bool {
	return DateOf(t1).Equal(DateOf(t2))
}
