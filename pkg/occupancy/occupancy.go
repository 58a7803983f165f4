// Package occupancy derives which planting records occupy which bed slot on a
// given date.
package occupancy

import (
	"fmt"
	"sort"

	"garden/entities"
)

// DefaultRowsPerArea is the number of rows in each area unless configured.
const DefaultRowsPerArea = 10

// openEnd stands in for a missing end date when comparing ISO dates.
const openEnd = "9999-12-31"

type Slot struct {
	Area string `json:"area"`
	Row  int    `json:"row"`
}

func (s Slot) String() string { return fmt.Sprintf("%s-%d", s.Area, s.Row) }

// Index maps each occupied slot to its active records, oldest start first.
// Empty slots have no entry.
type Index map[Slot][]entities.PlotView

// Compute keeps growing records whose [start, end] range contains date
// (inclusive, open end = +inf), groups them by slot and orders each group by
// start date. Records with equal start dates keep their input order.
func Compute(records []entities.PlotView, date string) Index {
	idx := Index{}
	for _, r := range records {
		if !Active(r, date) {
			continue
		}
		k := Slot{Area: r.Area, Row: r.Row}
		idx[k] = append(idx[k], r)
	}
	for _, rs := range idx {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].StartDate < rs[j].StartDate })
	}
	return idx
}

// Active reports whether r occupies its slot on date.
func Active(r entities.PlotView, date string) bool {
	if r.Status != entities.StatusGrowing {
		return false
	}
	end := r.EndDate
	if end == "" {
		end = openEnd
	}
	return date >= r.StartDate && date <= end
}

// At returns the records active in slot s, or nil for an empty slot.
func (idx Index) At(s Slot) []entities.PlotView { return idx[s] }

func (idx Index) Occupied(s Slot) bool { return len(idx[s]) > 0 }
