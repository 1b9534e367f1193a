// Package calendar generates the date grids behind the week and month
// views. Pure date arithmetic only; activity lookups happen against the
// mark set built from workout logs so every surface computes them the same
// way.
package calendar

import (
	"time"

	"coachfit/server/internal/domain"
)

// View selects the grid shape.
type View string

const (
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// Cell is one calendar cell.
type Cell struct {
	Date    string `json:"date"` // YYYY-MM-DD
	InMonth bool   `json:"inMonth"`
	IsToday bool   `json:"isToday"`
}

// startOfWeek returns the Monday on or before d.
func startOfWeek(d time.Time) time.Time {
	// time.Weekday has Sunday == 0; shift so Monday == 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func dateOnly(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Grid produces the ordered cells for the view containing ref.
//
// Week view: exactly the 7 dates Monday through Sunday around ref.
// Month view: complete Monday-first weeks fully covering ref's month, so
// the first cell is the Monday on/before the 1st and the last cell is the
// Sunday on/after the month's last day; the cell count is always a
// multiple of 7 (35 or 42).
func Grid(ref time.Time, view View, today time.Time) []Cell {
	ref = dateOnly(ref)
	todayKey := domain.FormatDate(today)
	refMonth := ref.Month()
	refYear := ref.Year()

	var start, end time.Time
	switch view {
	case ViewWeek:
		start = startOfWeek(ref)
		end = start.AddDate(0, 0, 6)
	default: // month
		first := time.Date(refYear, refMonth, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		start = startOfWeek(first)
		end = startOfWeek(last).AddDate(0, 0, 6)
	}

	var cells []Cell
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := domain.FormatDate(d)
		cells = append(cells, Cell{
			Date:    key,
			InMonth: d.Month() == refMonth && d.Year() == refYear,
			IsToday: key == todayKey,
		})
	}
	return cells
}

// MarkSet indexes workout logs by date for has-activity lookups.
type MarkSet map[string]bool

// Marks builds the set of dates that have a workout log.
func Marks(logs []domain.WorkoutLog) MarkSet {
	m := make(MarkSet, len(logs))
	for _, l := range logs {
		m[l.Date] = true
	}
	return m
}

// Has reports whether the given YYYY-MM-DD date has any logged activity.
func (m MarkSet) Has(date string) bool {
	return m[date]
}
