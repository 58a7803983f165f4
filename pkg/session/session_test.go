package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden/entities"
	"garden/pkg/calendar"
	"garden/pkg/editor"
	"garden/pkg/occupancy"
	"garden/pkg/plot/repository"
	"garden/pkg/plot/service"
)

type fakeStore struct {
	mu        sync.Mutex
	plots     map[string]entities.Plot
	crops     []entities.Crop
	failList  error
	failWrite error
	lists     int
}

func newFakeStore(plots ...entities.Plot) *fakeStore {
	fs := &fakeStore{plots: map[string]entities.Plot{}}
	for _, p := range plots {
		fs.plots[p.ID] = p
	}
	g := &entities.CropGroup{ID: "g-fruit", Name: "果菜類"}
	icon := "🍅"
	fs.crops = []entities.Crop{{ID: "c-tomato", Name: "トマト", Icon: &icon, GroupID: &g.ID, Group: g}}
	return fs
}

func (f *fakeStore) List(_ context.Context, _ repository.ListOptions) ([]entities.Plot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]entities.Plot, 0, len(f.plots))
	for _, p := range f.plots {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, p entities.Plot) (*entities.Plot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	f.plots[p.ID] = p
	return &p, nil
}

func (f *fakeStore) Update(_ context.Context, id string, patch entities.PlotPatch) (*entities.Plot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	p, ok := f.plots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&p)
	f.plots[id] = p
	return &p, nil
}

func (f *fakeStore) Catalog(context.Context) ([]entities.Crop, error) { return f.crops, nil }

func (f *fakeStore) setFailures(list, write error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList, f.failWrite = list, write
}

var june15 = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func newManager(store Store) *Manager {
	return NewManager(store, Options{
		Field:  occupancy.NewField([]string{"A", "B"}, 10),
		Locale: "ja",
		Clock:  func() time.Time { return june15 },
		NewID:  func() string { return "new-1" },
	})
}

func spinach() entities.Plot {
	return entities.Plot{ID: "p1", Area: "A", RowNo: 3, Name: "ほうれん草", StartDate: "2024-06-01", Status: entities.StatusGrowing}
}

func rowOf(t *testing.T, areas []occupancy.AreaView, s occupancy.Slot) occupancy.RowView {
	t.Helper()
	for _, a := range areas {
		for _, r := range a.Rows {
			if r.Slot == s {
				return r
			}
		}
	}
	t.Fatalf("slot %s not in layout", s)
	return occupancy.RowView{}
}

func TestGetLoadsAndSnapshots(t *testing.T) {
	m := newManager(newFakeStore(spinach()))
	s := m.Get(context.Background(), "U1")

	v := s.View()
	assert.Equal(t, "U1", v.UID)
	assert.Equal(t, "A", v.ActiveArea)
	assert.Equal(t, "2024-06-15", v.Calendar.Selected)
	assert.Equal(t, "2024-06-15", v.Calendar.Today)
	assert.Equal(t, "2024年6月", v.Calendar.Title)
	require.Len(t, v.Calendar.Weeks, 1, "starts in week view")
	assert.Equal(t, 1, v.Plots)
	assert.Equal(t, 1, v.Crops)
	assert.Empty(t, v.Error)
	assert.NotNil(t, v.LoadedAt)
	assert.True(t, rowOf(t, v.Areas, occupancy.Slot{Area: "A", Row: 3}).Occupied)

	assert.Same(t, s, m.Get(context.Background(), "U1"))
	assert.Equal(t, 1, m.Len())
	m.Drop("U1")
	assert.Equal(t, 0, m.Len())
}

func TestIdleSessionsEvicted(t *testing.T) {
	now := june15
	m := NewManager(newFakeStore(spinach()), Options{
		Field:       occupancy.NewField([]string{"A"}, 10),
		Clock:       func() time.Time { return now },
		IdleTimeout: time.Hour,
	})
	ctx := context.Background()

	u1 := m.Get(ctx, "U1")
	now = now.Add(40 * time.Minute)
	m.Get(ctx, "U2")
	now = now.Add(10 * time.Minute)
	assert.Same(t, u1, m.Get(ctx, "U1"), "within the window since its last use")
	assert.Equal(t, 2, m.Len())

	now = now.Add(61 * time.Minute)
	m.Get(ctx, "U3")
	assert.Equal(t, 1, m.Len(), "U1 and U2 went idle")
	assert.NotSame(t, u1, m.Get(ctx, "U1"))
}

func TestConcurrentGetLoadsOnce(t *testing.T) {
	fs := newFakeStore()
	m := newManager(fs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Get(context.Background(), "U1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fs.lists)
}

func TestFieldFollowsSelectedDate(t *testing.T) {
	s := newManager(newFakeStore(spinach())).Get(context.Background(), "U1")
	slot := occupancy.Slot{Area: "A", Row: 3}

	s.SelectDate(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	assert.False(t, rowOf(t, s.Field(), slot).Occupied)

	s.GoToToday()
	assert.True(t, rowOf(t, s.Field(), slot).Occupied)

	s.ToggleViewMode()
	s.StepPeriod(1)
	v := s.View()
	assert.Equal(t, calendar.MonthView, v.Calendar.State.Mode)
	assert.Equal(t, "2024年7月", v.Calendar.Title)
	assert.Equal(t, "2024-06-15", v.Calendar.Selected, "month paging keeps the selection")
}

func TestCreateOnEmptySlot(t *testing.T) {
	fs := newFakeStore(spinach())
	s := newManager(fs).Get(context.Background(), "U1")
	ctx := context.Background()
	slot := occupancy.Slot{Area: "B", Row: 2}

	require.NoError(t, s.OpenSlot(slot))
	snap := s.Editor()
	assert.Equal(t, editor.Creating, snap.State)
	assert.Equal(t, "2024-06-15", snap.Draft.StartDate)
	assert.Equal(t, "g-fruit", snap.ActiveGroup)

	require.NoError(t, s.ChooseCrop("c-tomato"))
	require.NoError(t, s.Save(ctx))

	assert.Contains(t, fs.plots, "new-1")
	assert.Equal(t, editor.Closed, s.Editor().State)
	row := rowOf(t, s.Field(), slot)
	require.True(t, row.Occupied)
	assert.Equal(t, "トマト", row.Plots[0].Name)
}

func TestOpenSlotStacksOnOccupiedRow(t *testing.T) {
	fs := newFakeStore(spinach())
	s := newManager(fs).Get(context.Background(), "U1")
	slot := occupancy.Slot{Area: "A", Row: 3}

	require.NoError(t, s.OpenSlot(slot))
	assert.Equal(t, editor.Creating, s.Editor().State)
	require.NoError(t, s.ChooseCrop("c-tomato"))
	require.NoError(t, s.Save(context.Background()))

	row := rowOf(t, s.Field(), slot)
	require.Len(t, row.Plots, 2)
	assert.Equal(t, "p1", row.Plots[0].ID, "earlier start first")
	assert.Equal(t, "new-1", row.Plots[1].ID)
	assert.Equal(t, "2024-06-15", row.Plots[1].StartDate)
}

func TestOpenSlotRejectsOutOfRange(t *testing.T) {
	s := newManager(newFakeStore(spinach())).Get(context.Background(), "U1")
	assert.ErrorIs(t, s.OpenSlot(occupancy.Slot{Area: "A", Row: 11}), occupancy.ErrSlotOutOfRange)
	assert.ErrorIs(t, s.OpenSlot(occupancy.Slot{Area: "C", Row: 1}), occupancy.ErrSlotOutOfRange)
}

func TestHarvestFreesSlot(t *testing.T) {
	fs := newFakeStore(spinach())
	s := newManager(fs).Get(context.Background(), "U1")

	require.NoError(t, s.OpenPlot("p1"))
	require.NoError(t, s.Edit(editor.FieldStatus, "harvested"))
	require.NoError(t, s.Edit(editor.FieldEndDate, "2024-06-14"))
	require.NoError(t, s.Save(context.Background()))

	assert.Equal(t, entities.StatusHarvested, fs.plots["p1"].Status)
	assert.False(t, rowOf(t, s.Field(), occupancy.Slot{Area: "A", Row: 3}).Occupied)
}

func TestSaveFailureEntersErrorState(t *testing.T) {
	fs := newFakeStore(spinach())
	s := newManager(fs).Get(context.Background(), "U1")
	ctx := context.Background()

	require.NoError(t, s.OpenPlot("p1"))
	fs.setFailures(nil, errors.New("connection refused"))

	err := s.Save(ctx)
	assert.True(t, editor.IsPersistence(err))
	assert.Error(t, s.Err())
	assert.Equal(t, editor.Editing, s.Editor().State, "draft kept for retry")
	assert.NotEmpty(t, s.View().Error)

	s.Cancel()
	assert.ErrorIs(t, s.OpenPlot("p1"), ErrUnavailable)
	assert.ErrorIs(t, s.OpenSlot(occupancy.Slot{Area: "B", Row: 1}), ErrUnavailable)

	fs.setFailures(nil, nil)
	require.NoError(t, s.Reload(ctx))
	assert.NoError(t, s.Err())
	assert.NoError(t, s.OpenPlot("p1"))
}

func TestRetriedSaveClearsErrorState(t *testing.T) {
	fs := newFakeStore(spinach())
	s := newManager(fs).Get(context.Background(), "U1")
	ctx := context.Background()

	require.NoError(t, s.OpenPlot("p1"))
	fs.setFailures(nil, errors.New("503"))
	require.Error(t, s.Save(ctx))

	fs.setFailures(nil, nil)
	require.NoError(t, s.Save(ctx))
	assert.NoError(t, s.Err())
}

func TestValidationDoesNotEnterErrorState(t *testing.T) {
	s := newManager(newFakeStore()).Get(context.Background(), "U1")
	require.NoError(t, s.OpenSlot(occupancy.Slot{Area: "A", Row: 1}))

	err := s.Save(context.Background())
	assert.True(t, editor.IsValidation(err))
	assert.NoError(t, s.Err())
}

func TestStoreRejectionDoesNotEnterErrorState(t *testing.T) {
	fs := newFakeStore(spinach())
	s := newManager(fs).Get(context.Background(), "U1")

	require.NoError(t, s.OpenPlot("p1"))
	fs.setFailures(nil, fmt.Errorf("%w: area A was removed", service.ErrInvalid))

	err := s.Save(context.Background())
	assert.True(t, editor.IsValidation(err))
	assert.ErrorIs(t, err, service.ErrInvalid)
	assert.NoError(t, s.Err())
	assert.Equal(t, editor.Editing, s.Editor().State)

	fs.setFailures(nil, nil)
	require.NoError(t, s.Save(context.Background()))
}

func TestInitialLoadFailure(t *testing.T) {
	fs := newFakeStore(spinach())
	fs.setFailures(errors.New("timeout"), nil)
	s := newManager(fs).Get(context.Background(), "U1")

	require.Error(t, s.Err())
	assert.Empty(t, s.Plots())
	assert.ErrorIs(t, s.OpenSlot(occupancy.Slot{Area: "A", Row: 1}), ErrUnavailable)

	err := s.Reload(context.Background())
	assert.True(t, editor.IsPersistence(err))

	fs.setFailures(nil, nil)
	require.NoError(t, s.Reload(context.Background()))
	assert.Len(t, s.Plots(), 1)
}

func TestSetArea(t *testing.T) {
	s := newManager(newFakeStore()).Get(context.Background(), "U1")
	require.NoError(t, s.SetArea("B"))

	v := s.View()
	assert.Equal(t, "B", v.ActiveArea)
	assert.False(t, v.Areas[0].Active)
	assert.True(t, v.Areas[1].Active)
	assert.ErrorIs(t, s.SetArea("Z"), ErrUnknownArea)
}
