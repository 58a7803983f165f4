package occupancy

import (
	"errors"
	"fmt"

	"garden/entities"
)

var ErrSlotOutOfRange = errors.New("slot is outside the field")

// Field is the fixed grid of areas and rows.
type Field struct {
	Areas       []string `json:"areas"`
	RowsPerArea int      `json:"rows_per_area"`
}

func NewField(areas []string, rowsPerArea int) Field {
	if rowsPerArea <= 0 {
		rowsPerArea = DefaultRowsPerArea
	}
	return Field{Areas: areas, RowsPerArea: rowsPerArea}
}

func (f Field) HasArea(area string) bool {
	for _, a := range f.Areas {
		if a == area {
			return true
		}
	}
	return false
}

func (f Field) Contains(s Slot) bool {
	return f.HasArea(s.Area) && s.Row >= 1 && s.Row <= f.RowsPerArea
}

// CheckSlot rejects slots outside the grid.
func (f Field) CheckSlot(s Slot) error {
	if !f.Contains(s) {
		return fmt.Errorf("%w: %s (areas %v, rows 1..%d)", ErrSlotOutOfRange, s, f.Areas, f.RowsPerArea)
	}
	return nil
}

type RowView struct {
	Slot     Slot                `json:"slot"`
	Occupied bool                `json:"occupied"`
	Plots    []entities.PlotView `json:"plots,omitempty"`
}

type AreaView struct {
	Area   string    `json:"area"`
	Active bool      `json:"active"`
	Rows   []RowView `json:"rows"`
}

// Layout classifies every row of every area as occupied or empty. Empty rows
// carry their slot so callers can offer to plant there.
func Layout(f Field, idx Index, activeArea string) []AreaView {
	out := make([]AreaView, 0, len(f.Areas))
	for _, area := range f.Areas {
		av := AreaView{Area: area, Active: area == activeArea, Rows: make([]RowView, 0, f.RowsPerArea)}
		for row := 1; row <= f.RowsPerArea; row++ {
			s := Slot{Area: area, Row: row}
			plots := idx.At(s)
			av.Rows = append(av.Rows, RowView{Slot: s, Occupied: len(plots) > 0, Plots: plots})
		}
		out = append(out, av)
	}
	return out
}
