package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

type ViewMode int

const (
	WeekView ViewMode = iota
	MonthView
)

func (m ViewMode) String() string {
	if m == MonthView {
		return "month"
	}
	return "week"
}

func (m ViewMode) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case "week", "":
		return WeekView, nil
	case "month":
		return MonthView, nil
	}
	return WeekView, fmt.Errorf("unknown view mode %q", s)
}

// State is the navigable part of the calendar. DisplayMonth is always the
// first day of a month.
type State struct {
	Selected     time.Time `json:"selected"`
	DisplayMonth time.Time `json:"display_month"`
	Mode         ViewMode  `json:"mode"`
}

type Option func(*Cursor)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cursor) { c.now = now }
}

// WithLocation sets the location in which "today" is observed.
func WithLocation(loc *time.Location) Option {
	return func(c *Cursor) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// Cursor owns the selected date and view mode of a calendar.
type Cursor struct {
	state State
	now   func() time.Time
	loc   *time.Location
}

// NewCursor starts in week view on selected. A zero selected means today.
func NewCursor(selected time.Time, opts ...Option) *Cursor {
	c := &Cursor{now: time.Now, loc: time.UTC}
	for _, o := range opts {
		o(c)
	}
	if selected.IsZero() {
		selected = c.Today()
	}
	c.SelectDate(selected)
	return c
}

func (c *Cursor) State() State            { return c.state }
func (c *Cursor) Selected() time.Time     { return c.state.Selected }
func (c *Cursor) DisplayMonth() time.Time { return c.state.DisplayMonth }
func (c *Cursor) Mode() ViewMode          { return c.state.Mode }

// Today is evaluated on every call so long-lived sessions roll over.
func (c *Cursor) Today() time.Time { return Today(c.now(), c.loc) }

// SelectDate moves the selection and re-syncs the display month to it.
func (c *Cursor) SelectDate(d time.Time) {
	c.state.Selected = Midnight(d)
	c.state.DisplayMonth = FirstOfMonth(c.state.Selected)
}

// StepPeriod pages by amount months in month view (selection untouched) or
// by amount weeks in week view.
func (c *Cursor) StepPeriod(amount int) {
	if c.state.Mode == MonthView {
		c.state.DisplayMonth = c.state.DisplayMonth.AddDate(0, amount, 0)
		return
	}
	c.SelectDate(c.state.Selected.AddDate(0, 0, 7*amount))
}

func (c *Cursor) GoToToday() { c.SelectDate(c.Today()) }

func (c *Cursor) ToggleViewMode() {
	if c.state.Mode == MonthView {
		c.state.Mode = WeekView
		return
	}
	c.state.Mode = MonthView
}

// Grid builds the cells for the current state.
func (c *Cursor) Grid() []Cell { return Build(c.state, c.Today()) }

func (c *Cursor) Title(locale string) string { return Title(c.state, locale) }
