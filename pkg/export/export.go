// Package export writes plot listings as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"garden/entities"
)

const (
	SheetName   = "Plots"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{"ID", "Area", "Row", "Name", "Start", "End", "Status", "Crop ID"}

// PlotsXLSX writes one row per plot to a "Plots" sheet, in the given order.
// Open-ended records leave End blank.
func PlotsXLSX(w io.Writer, plots []entities.Plot) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName(x.GetSheetName(0), SheetName); err != nil {
		return err
	}
	if err := x.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := x.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return err
	}

	for i, p := range plots {
		row := []interface{}{p.ID, p.Area, p.RowNo, p.Name, p.StartDate, deref(p.EndDate), string(p.Status), deref(p.CropID)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := x.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err = x.WriteTo(w)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
