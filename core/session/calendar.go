package session

import (
	"time"

	"github.com/trezcool/shule/core"
)

// GridCells is the fixed size of a month grid: 6 weeks of 7 days, so the
// rendered calendar never changes shape between months.
const GridCells = 6 * 7

type GridCell struct {
	Date        time.Time    `json:"date"`
	Day         int          `json:"day"`
	InMonth     bool         `json:"in_month"` // false for the dimmed lead-in/lead-out days
	Today       bool         `json:"today"`
	Occurrences []Occurrence `json:"occurrences,omitempty"`
}

// GridStart returns the first cell date of the month grid: the most recent
// Sunday on/before the first of the month.
func GridStart(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return startOfWeek(first)
}

// BuildMonthGrid lays out `month` as GridCells consecutive days starting at
// GridStart. occurrencesByDate is keyed by core.FormatDate of the occurrence
// date; `today` marks the matching cell.
func BuildMonthGrid(year int, month time.Month, occurrencesByDate map[string][]Occurrence, today time.Time) []GridCell {
	start := GridStart(year, month)
	todayDate := core.DateOf(today)

	cells := make([]GridCell, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		date := start.AddDate(0, 0, i)
		cells = append(cells, GridCell{
			Date:        date,
			Day:         date.Day(),
			InMonth:     date.Month() == month && date.Year() == year,
			Today:       date.Equal(todayDate),
			Occurrences: occurrencesByDate[core.FormatDate(date)],
		})
	}
	return cells
}
