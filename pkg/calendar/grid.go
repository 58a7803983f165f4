package calendar

import (
	"fmt"
	"strings"
	"time"
)

const DaysPerWeek = 7

// Cell is one day of a calendar grid. Padding cells of a month grid carry
// their real date but are OtherMonth and not Selectable.
type Cell struct {
	Date       time.Time `json:"-"`
	ISO        string    `json:"date"`
	Day        int       `json:"day"`
	Selected   bool      `json:"selected"`
	OtherMonth bool      `json:"other_month"`
	Today      bool      `json:"today"`
	Selectable bool      `json:"selectable"`
}

// Build derives the day cells for s. today is the caller's current date.
func Build(s State, today time.Time) []Cell {
	today = Midnight(today)
	if s.Mode == MonthView {
		return monthCells(s, today)
	}
	return weekCells(s, today)
}

func weekCells(s State, today time.Time) []Cell {
	start := s.Selected.AddDate(0, 0, -int(s.Selected.Weekday()))
	cells := make([]Cell, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		d := start.AddDate(0, 0, i)
		cells = append(cells, Cell{
			Date:       d,
			ISO:        FormatDate(d),
			Day:        d.Day(),
			Selected:   d.Equal(s.Selected),
			OtherMonth: !sameMonth(d, s.DisplayMonth),
			Today:      d.Equal(today),
			Selectable: true,
		})
	}
	return cells
}

func monthCells(s State, today time.Time) []Cell {
	first := FirstOfMonth(s.DisplayMonth)
	lead := int(first.Weekday())
	days := DaysIn(first)
	trail := (DaysPerWeek - (lead+days)%DaysPerWeek) % DaysPerWeek

	cells := make([]Cell, 0, lead+days+trail)
	for i := lead; i > 0; i-- {
		cells = append(cells, padCell(first.AddDate(0, 0, -i)))
	}
	for day := 0; day < days; day++ {
		d := first.AddDate(0, 0, day)
		cells = append(cells, Cell{
			Date:       d,
			ISO:        FormatDate(d),
			Day:        d.Day(),
			Selected:   d.Equal(s.Selected),
			Today:      d.Equal(today),
			Selectable: true,
		})
	}
	next := first.AddDate(0, 1, 0)
	for i := 0; i < trail; i++ {
		cells = append(cells, padCell(next.AddDate(0, 0, i)))
	}
	return cells
}

func padCell(d time.Time) Cell {
	return Cell{Date: d, ISO: FormatDate(d), Day: d.Day(), OtherMonth: true}
}

// Weeks splits cells into rows of seven.
func Weeks(cells []Cell) [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(cells); i += DaysPerWeek {
		end := i + DaysPerWeek
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[i:end])
	}
	return rows
}

// Title labels the grid with the authoritative month for the mode.
func Title(s State, locale string) string {
	t := s.Selected
	if s.Mode == MonthView {
		t = s.DisplayMonth
	}
	if strings.HasPrefix(strings.ToLower(locale), "ja") {
		return fmt.Sprintf("%d年%d月", t.Year(), int(t.Month()))
	}
	return t.Format("January 2006")
}

// WeekdayNames returns column headers starting on Sunday.
func WeekdayNames(locale string) []string {
	if strings.HasPrefix(strings.ToLower(locale), "ja") {
		return []string{"日", "月", "火", "水", "木", "金", "土"}
	}
	return []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
}
