package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"garden/entities"
	"garden/pkg/calendar"
	"garden/pkg/occupancy"
)

var (
	titleStyle    = color.New(color.Bold, color.Underline)
	headerStyle   = color.New(color.Faint)
	selectedStyle = color.New(color.Bold, color.ReverseVideo)
	todayStyle    = color.New(color.Bold, color.FgGreen)
	otherStyle    = color.New(color.Faint)
	emptyStyle    = color.New(color.Faint, color.Italic)
	growingStyle  = color.New(color.FgGreen)
)

// PrintCalendar draws the grid one week per line.
func PrintCalendar(w io.Writer, title string, weekdays []string, weeks [][]calendar.Cell) {
	titleStyle.Fprintln(w, title)
	for _, d := range weekdays {
		headerStyle.Fprintf(w, "%3s", d)
	}
	fmt.Fprintln(w)
	for _, week := range weeks {
		for _, c := range week {
			day := fmt.Sprintf("%3d", c.Day)
			switch {
			case c.Selected:
				selectedStyle.Fprint(w, day)
			case c.Today:
				todayStyle.Fprint(w, day)
			case c.OtherMonth:
				otherStyle.Fprint(w, day)
			default:
				fmt.Fprint(w, day)
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintField lists every row of every area with the plots growing there.
func PrintField(w io.Writer, date string, areas []occupancy.AreaView) {
	titleStyle.Fprintln(w, date)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("AREA", "ROW", "PLOTS")
	for _, a := range areas {
		for _, r := range a.Rows {
			if !r.Occupied {
				tbl.AddRow(a.Area, r.Slot.Row, emptyStyle.Sprint("empty"))
				continue
			}
			names := make([]string, 0, len(r.Plots))
			for _, p := range r.Plots {
				names = append(names, strings.TrimSpace(p.Icon+" "+p.Name))
			}
			tbl.AddRow(a.Area, r.Slot.Row, growingStyle.Sprint(strings.Join(names, ", ")))
		}
	}
	fmt.Fprintln(w, tbl)
}

func PrintPlots(w io.Writer, plots []entities.Plot) {
	if len(plots) == 0 {
		emptyStyle.Fprintln(w, " none")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow("ID", "AREA", "ROW", "NAME", "START", "END", "STATUS")
	for _, p := range plots {
		end := "-"
		if p.EndDate != nil {
			end = *p.EndDate
		}
		tbl.AddRow(p.ID, p.Area, p.RowNo, p.Name, p.StartDate, end, p.Status)
	}
	fmt.Fprintln(w, tbl)
}
