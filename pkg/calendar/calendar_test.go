package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func fixedClock(t *testing.T, s string) func() time.Time {
	d := mustDate(t, s).Add(15 * time.Hour)
	return func() time.Time { return d }
}

func TestWeekGridStartsOnSunday(t *testing.T) {
	for _, s := range []string{"2024-06-15", "2024-06-16", "2024-06-30", "2024-01-01", "2024-03-02"} {
		c := NewCursor(mustDate(t, s), WithClock(fixedClock(t, "2024-06-15")))
		cells := c.Grid()
		require.Len(t, cells, 7, s)
		assert.Equal(t, time.Sunday, cells[0].Date.Weekday(), s)

		selected := 0
		for _, cell := range cells {
			if cell.Selected {
				selected++
				assert.Equal(t, s, cell.ISO)
			}
			assert.True(t, cell.Selectable)
		}
		assert.Equal(t, 1, selected, s)
	}
}

func TestWeekGridDimsOtherMonth(t *testing.T) {
	c := NewCursor(mustDate(t, "2024-06-30"), WithClock(fixedClock(t, "2024-06-15")))
	cells := c.Grid()
	// 2024-06-30 is a Sunday; the week runs into July.
	assert.Equal(t, "2024-06-30", cells[0].ISO)
	assert.False(t, cells[0].OtherMonth)
	for _, cell := range cells[1:] {
		assert.True(t, cell.OtherMonth, cell.ISO)
	}
}

func TestMonthGridJanuary2024(t *testing.T) {
	c := NewCursor(mustDate(t, "2024-01-10"), WithClock(fixedClock(t, "2024-01-10")))
	c.ToggleViewMode()
	cells := c.Grid()

	require.Len(t, cells, 35)
	assert.Equal(t, "2023-12-31", cells[0].ISO)
	assert.True(t, cells[0].OtherMonth)
	assert.False(t, cells[0].Selectable)
	assert.Equal(t, "2024-01-01", cells[1].ISO)
	assert.Equal(t, "2024-01-31", cells[31].ISO)
	for _, cell := range cells[32:] {
		assert.True(t, cell.OtherMonth)
		assert.False(t, cell.Selectable)
	}
	assert.Equal(t, "2024-02-03", cells[34].ISO)
	assert.Len(t, Weeks(cells), 5)
}

func TestMonthGridShapes(t *testing.T) {
	months := []string{"2024-02-01", "2023-02-01", "2021-02-01", "2024-06-01", "2024-09-01", "2025-03-01", "2026-08-01"}
	for _, m := range months {
		s := State{Selected: mustDate(t, m), DisplayMonth: mustDate(t, m), Mode: MonthView}
		cells := Build(s, mustDate(t, m).AddDate(0, 0, 3))
		assert.Zero(t, len(cells)%7, m)
		assert.Equal(t, time.Sunday, cells[0].Date.Weekday(), m)

		today := 0
		body := 0
		for _, cell := range cells {
			if cell.Today {
				today++
			}
			if !cell.OtherMonth {
				body++
			}
		}
		assert.Equal(t, 1, today, m)
		assert.Equal(t, DaysIn(mustDate(t, m)), body, m)
	}

	// February 2015 starts on Sunday and has 28 days: exactly four rows, no padding.
	s := State{Selected: mustDate(t, "2015-02-01"), DisplayMonth: mustDate(t, "2015-02-01"), Mode: MonthView}
	assert.Len(t, Build(s, mustDate(t, "2020-01-01")), 28)
}

func TestMonthGridTodayOutsideMonth(t *testing.T) {
	s := State{Selected: mustDate(t, "2024-01-10"), DisplayMonth: mustDate(t, "2024-01-01"), Mode: MonthView}
	for _, cell := range Build(s, mustDate(t, "2023-12-31")) {
		assert.False(t, cell.Today, "padding cells are never today")
	}
}

func TestStepPeriodMonthRoundTrip(t *testing.T) {
	c := NewCursor(mustDate(t, "2024-01-31"))
	c.ToggleViewMode()
	orig := c.DisplayMonth()

	c.StepPeriod(1)
	assert.Equal(t, time.February, c.DisplayMonth().Month())
	assert.Equal(t, mustDate(t, "2024-01-31"), c.Selected(), "month paging keeps the selection")

	c.StepPeriod(-1)
	assert.Equal(t, orig, c.DisplayMonth())

	c.StepPeriod(-13)
	assert.Equal(t, "2022-12-01", FormatDate(c.DisplayMonth()))
}

func TestStepPeriodWeek(t *testing.T) {
	c := NewCursor(mustDate(t, "2024-06-28"))
	c.StepPeriod(1)
	assert.Equal(t, "2024-07-05", FormatDate(c.Selected()))
	assert.Equal(t, "2024-07-01", FormatDate(c.DisplayMonth()), "display month follows the selection")

	c.StepPeriod(-2)
	assert.Equal(t, "2024-06-21", FormatDate(c.Selected()))
}

func TestStepAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tz database unavailable")
	}
	c := NewCursor(time.Date(2024, 3, 9, 23, 30, 0, 0, ny), WithLocation(ny))
	assert.Equal(t, "2024-03-09", FormatDate(c.Selected()))
	c.StepPeriod(1)
	assert.Equal(t, "2024-03-16", FormatDate(c.Selected()))
	assert.Equal(t, 0, c.Selected().Hour())
}

func TestSelectDateSyncsDisplayMonth(t *testing.T) {
	c := NewCursor(mustDate(t, "2024-06-15"))
	c.ToggleViewMode()
	c.StepPeriod(3)
	c.SelectDate(mustDate(t, "2024-02-29"))
	assert.Equal(t, "2024-02-01", FormatDate(c.DisplayMonth()))
	assert.Equal(t, MonthView, c.Mode())
}

func TestGoToTodayUsesClockAtCallTime(t *testing.T) {
	now := mustDate(t, "2024-06-15")
	c := NewCursor(mustDate(t, "2023-01-01"), WithClock(func() time.Time { return now }))
	c.ToggleViewMode()
	c.StepPeriod(5)

	now = mustDate(t, "2024-07-02")
	c.GoToToday()
	assert.Equal(t, "2024-07-02", FormatDate(c.Selected()))
	assert.Equal(t, "2024-07-01", FormatDate(c.DisplayMonth()))
}

func TestTodayInLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	late := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)
	c := NewCursor(time.Time{}, WithClock(func() time.Time { return late }), WithLocation(tokyo))
	assert.Equal(t, "2024-06-16", FormatDate(c.Selected()))
}

func TestToggleViewModeKeepsDates(t *testing.T) {
	c := NewCursor(mustDate(t, "2024-06-15"))
	before := c.State()
	c.ToggleViewMode()
	assert.Equal(t, MonthView, c.Mode())
	c.ToggleViewMode()
	assert.Equal(t, before, c.State())
}

func TestTitle(t *testing.T) {
	s := State{Selected: mustDate(t, "2024-06-15"), DisplayMonth: mustDate(t, "2024-09-01"), Mode: WeekView}
	assert.Equal(t, "2024年6月", Title(s, "ja"))
	assert.Equal(t, "June 2024", Title(s, "en"))

	s.Mode = MonthView
	assert.Equal(t, "2024年9月", Title(s, "ja-JP"))
}

func TestParseViewMode(t *testing.T) {
	m, err := ParseViewMode("month")
	require.NoError(t, err)
	assert.Equal(t, MonthView, m)
	_, err = ParseViewMode("year")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 29, DaysIn(d))
}
