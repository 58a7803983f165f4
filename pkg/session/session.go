// Package session holds per-user planner state: the calendar cursor, the
// active area, the plot editor and the cached plots and catalog. Derived views
// are recomputed from that state on every read.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"garden/entities"
	"garden/pkg/calendar"
	"garden/pkg/editor"
	"garden/pkg/occupancy"
	"garden/pkg/plot/repository"
	"garden/pkg/plot/service"
)

var (
	ErrUnknownArea = errors.New("area not found")
	// ErrUnavailable is returned while the session carries a persistence
	// error; a successful reload or save clears it.
	ErrUnavailable = errors.New("session is in an error state; reload to continue")
)

// Store is the part of the plot service a session needs.
type Store interface {
	List(ctx context.Context, opts repository.ListOptions) ([]entities.Plot, error)
	Create(ctx context.Context, p entities.Plot) (*entities.Plot, error)
	Update(ctx context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error)
	Catalog(ctx context.Context) ([]entities.Crop, error)
}

type Session struct {
	mu sync.Mutex

	uid    string
	store  Store
	field  occupancy.Field
	locale string
	l      *zap.Logger

	cursor *calendar.Cursor
	editor *editor.Editor
	area   string

	plots    []entities.PlotView
	crops    []entities.Crop
	loadedAt time.Time
	err      error
}

// backend adapts the session to editor.Backend. Its methods run while the
// session lock is held by Save.
type backend struct{ s *Session }

func (b backend) Known(id string) bool {
	for _, p := range b.s.plots {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (b backend) Create(ctx context.Context, p entities.Plot) error {
	_, err := b.s.store.Create(ctx, p)
	return rejected(err)
}

func (b backend) Update(ctx context.Context, id string, p entities.Plot) error {
	_, err := b.s.store.Update(ctx, id, entities.PatchFrom(p))
	return rejected(err)
}

// rejected turns a store-side validation failure into an editor validation
// error so the session stays usable.
func rejected(err error) error {
	if errors.Is(err, service.ErrInvalid) {
		return &editor.ValidationError{Field: "record", Reason: err.Error(), Err: err}
	}
	return err
}

func (b backend) Reload(ctx context.Context) error { return b.s.load(ctx) }

// load refetches plots and catalog. The cache is only replaced when both
// calls succeed.
func (s *Session) load(ctx context.Context) error {
	plots, err := s.store.List(ctx, repository.ListOptions{})
	if err != nil {
		return fmt.Errorf("list plots: %w", err)
	}
	crops, err := s.store.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	s.plots = entities.Views(plots)
	s.crops = crops
	s.editor.SetCatalog(crops)
	s.loadedAt = time.Now()
	return nil
}

func (s *Session) fail(err error) {
	s.err = err
	s.l.Warn("persistence error", zap.String("uid", s.uid), zap.Error(err))
}

// Reload refetches the authoritative records and clears the error state on
// success.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Session) reloadLocked(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		perr := &editor.PersistenceError{Op: "reload", Err: err}
		s.fail(perr)
		return perr
	}
	s.err = nil
	return nil
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Plots returns a copy of the cached records.
func (s *Session) Plots() []entities.PlotView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.PlotView(nil), s.plots...)
}

// --- calendar

func (s *Session) SelectDate(d time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.SelectDate(d)
}

func (s *Session) StepPeriod(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.StepPeriod(n)
}

func (s *Session) GoToToday() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.GoToToday()
}

func (s *Session) ToggleViewMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.ToggleViewMode()
}

// --- field

func (s *Session) SetArea(area string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.field.HasArea(area) {
		return fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}
	s.area = area
	return nil
}

func (s *Session) selectedISO() string { return calendar.FormatDate(s.cursor.Selected()) }

func (s *Session) layoutLocked() []occupancy.AreaView {
	idx := occupancy.Compute(s.plots, s.selectedISO())
	return occupancy.Layout(s.field, idx, s.area)
}

// Field classifies every slot for the selected date.
func (s *Session) Field() []occupancy.AreaView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layoutLocked()
}

// --- editor

func (s *Session) OpenPlot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return ErrUnavailable
	}
	return s.editor.SelectOccupied(s.plots, id)
}

// OpenSlot starts a new record on slot, dated on the selected day. Occupied
// slots are accepted; the new record stacks on the existing ones.
func (s *Session) OpenSlot(slot occupancy.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return ErrUnavailable
	}
	return s.editor.SelectEmptySlot(slot, s.selectedISO())
}

func (s *Session) ChooseCrop(cropID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.ChooseCrop(cropID)
}

func (s *Session) SetActiveGroup(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SetActiveGroup(groupID)
}

func (s *Session) Edit(f editor.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Edit(f, value)
}

// EditAll applies several field changes as one step; nothing is applied when
// any of them is rejected.
func (s *Session) EditAll(changes []editor.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.EditAll(changes)
}

// Save persists the draft. The session lock is held across the store calls,
// so other requests on this session wait for it.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.editor.Save(ctx, backend{s})
	switch {
	case err == nil:
		s.err = nil
	case editor.IsPersistence(err):
		s.fail(err)
	}
	return err
}

func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Cancel()
}

func (s *Session) Editor() editor.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Snapshot()
}

// --- snapshot

type CalendarView struct {
	State    calendar.State    `json:"state"`
	Selected string            `json:"selected"`
	Today    string            `json:"today"`
	Title    string            `json:"title"`
	Weekdays []string          `json:"weekdays"`
	Weeks    [][]calendar.Cell `json:"weeks"`
}

type View struct {
	UID        string               `json:"uid"`
	Calendar   CalendarView         `json:"calendar"`
	ActiveArea string               `json:"active_area"`
	Areas      []occupancy.AreaView `json:"areas"`
	Editor     editor.Snapshot      `json:"editor"`
	Plots      int                  `json:"plots"`
	Crops      int                  `json:"crops"`
	LoadedAt   *time.Time           `json:"loaded_at,omitempty"`
	Error      string               `json:"error,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		UID: s.uid,
		Calendar: CalendarView{
			State:    s.cursor.State(),
			Selected: s.selectedISO(),
			Today:    calendar.FormatDate(s.cursor.Today()),
			Title:    s.cursor.Title(s.locale),
			Weekdays: calendar.WeekdayNames(s.locale),
			Weeks:    calendar.Weeks(s.cursor.Grid()),
		},
		ActiveArea: s.area,
		Areas:      s.layoutLocked(),
		Editor:     s.editor.Snapshot(),
		Plots:      len(s.plots),
		Crops:      len(s.crops),
	}
	if !s.loadedAt.IsZero() {
		t := s.loadedAt
		v.LoadedAt = &t
	}
	if s.err != nil {
		v.Error = s.err.Error()
	}
	return v
}
