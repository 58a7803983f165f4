// Package editor is the plot editing state machine: select an occupied or
// empty slot, change the draft, then save or cancel.
package editor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"garden/entities"
	"garden/pkg/calendar"
	"garden/pkg/catalog"
	"garden/pkg/occupancy"
)

type State int

const (
	Closed State = iota
	Editing
	Creating
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Creating:
		return "creating"
	}
	return "closed"
}

func (s State) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

type Field string

const (
	FieldStartDate Field = "start_date"
	FieldEndDate   Field = "end_date"
	FieldStatus    Field = "status"
)

// Backend is what Save needs from the persistence side. Known decides
// between create and update; Reload refreshes the authoritative records.
// Create and Update return a *ValidationError for records the store rejects
// as invalid; Save hands it back unwrapped and keeps the draft open.
type Backend interface {
	Known(id string) bool
	Create(ctx context.Context, p entities.Plot) error
	Update(ctx context.Context, id string, p entities.Plot) error
	Reload(ctx context.Context) error
}

type Option func(*Editor)

func WithLocale(locale string) Option { return func(e *Editor) { e.locale = locale } }

func WithIDGenerator(gen func() string) Option { return func(e *Editor) { e.newID = gen } }

type Editor struct {
	field   occupancy.Field
	catalog []entities.Crop
	locale  string
	newID   func() string

	state State
	draft entities.PlotView
	group string
}

func New(field occupancy.Field, crops []entities.Crop, opts ...Option) *Editor {
	e := &Editor{
		field:   field,
		catalog: crops,
		locale:  "ja",
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SetCatalog swaps the crop catalog, e.g. after a reload.
func (e *Editor) SetCatalog(crops []entities.Crop) { e.catalog = crops }

func (e *Editor) State() State { return e.state }

func (e *Editor) IsOpen() bool { return e.state != Closed }

// Draft returns a copy of the draft; ok is false when the editor is closed.
func (e *Editor) Draft() (entities.PlotView, bool) { return e.draft, e.IsOpen() }

func (e *Editor) ActiveGroup() string { return e.group }

func (e *Editor) Groups() []entities.CropGroup { return catalog.Groups(e.catalog) }

// Crops lists the crops of the active group.
func (e *Editor) Crops() []entities.Crop {
	return catalog.CropsInGroup(e.catalog, e.group, e.locale)
}

// SelectOccupied opens an existing record for editing.
func (e *Editor) SelectOccupied(records []entities.PlotView, id string) error {
	if e.IsOpen() {
		return ErrAlreadyOpen
	}
	for _, r := range records {
		if r.ID == id {
			e.open(Editing, r)
			return nil
		}
	}
	return ErrUnknownPlot
}

// SelectEmptySlot opens a new growing, open-ended record on slot starting
// on selectedDate.
func (e *Editor) SelectEmptySlot(slot occupancy.Slot, selectedDate string) error {
	if e.IsOpen() {
		return ErrAlreadyOpen
	}
	if err := e.field.CheckSlot(slot); err != nil {
		return err
	}
	e.open(Creating, entities.PlotView{
		ID:        e.newID(),
		Area:      slot.Area,
		Row:       slot.Row,
		StartDate: selectedDate,
		Status:    entities.StatusGrowing,
	})
	return nil
}

func (e *Editor) open(s State, draft entities.PlotView) {
	e.state = s
	e.draft = draft
	e.group = catalog.ActiveGroup(e.catalog, draft.CropID)
}

// ChooseCrop copies the crop identity and glyph into the draft. Dates and
// status are left alone.
func (e *Editor) ChooseCrop(cropID string) error {
	if !e.IsOpen() {
		return ErrNotOpen
	}
	c, ok := catalog.Find(e.catalog, cropID)
	if !ok {
		return ErrUnknownCrop
	}
	e.draft.CropID = c.ID
	e.draft.Name = c.Name
	e.draft.Icon = ""
	e.draft.SVG = ""
	if c.Icon != nil {
		e.draft.Icon = *c.Icon
	}
	if c.SVG != nil {
		e.draft.SVG = *c.SVG
	}
	return nil
}

// SetActiveGroup changes which crops are listed; the chosen crop stays.
func (e *Editor) SetActiveGroup(groupID string) error {
	if !e.IsOpen() {
		return ErrNotOpen
	}
	if !catalog.HasGroup(e.catalog, groupID) {
		return ErrUnknownGroup
	}
	e.group = groupID
	return nil
}

// Editable reports whether f can be changed in the current state. End date
// and status are fixed while creating.
func (e *Editor) Editable(f Field) bool {
	switch f {
	case FieldStartDate:
		return e.IsOpen()
	case FieldEndDate, FieldStatus:
		return e.state == Editing
	}
	return false
}

func (e *Editor) Edit(f Field, value string) error {
	if !e.IsOpen() {
		return ErrNotOpen
	}
	switch f {
	case FieldStartDate, FieldEndDate, FieldStatus:
	default:
		return ErrUnknownField
	}
	if !e.Editable(f) {
		return ErrFieldLocked
	}

	value = strings.TrimSpace(value)
	switch f {
	case FieldStartDate:
		if value != "" {
			if _, err := calendar.ParseDate(value); err != nil {
				return &ValidationError{Field: string(f), Reason: "must be YYYY-MM-DD"}
			}
		}
		e.draft.StartDate = value
	case FieldEndDate:
		if value != "" {
			if _, err := calendar.ParseDate(value); err != nil {
				return &ValidationError{Field: string(f), Reason: "must be YYYY-MM-DD"}
			}
		}
		e.draft.EndDate = value
	case FieldStatus:
		st := entities.PlotStatus(value)
		if !st.Valid() {
			return &ValidationError{Field: string(f), Reason: "must be growing, harvested or discarded"}
		}
		e.draft.Status = st
	}
	return nil
}

// Change is one field assignment for EditAll.
type Change struct {
	Field Field
	Value string
}

// EditAll applies changes in order. If any of them fails the draft is left
// as it was before the call.
func (e *Editor) EditAll(changes []Change) error {
	before := e.draft
	for _, ch := range changes {
		if err := e.Edit(ch.Field, ch.Value); err != nil {
			e.draft = before
			return err
		}
	}
	return nil
}

// Validate checks the draft without saving it.
func (e *Editor) Validate() error {
	if !e.IsOpen() {
		return ErrNotOpen
	}
	return validate(e.draft)
}

func validate(d entities.PlotView) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(d.StartDate) == "" {
		return &ValidationError{Field: string(FieldStartDate), Reason: "required"}
	}
	if d.EndDate != "" && d.EndDate < d.StartDate {
		return &ValidationError{Field: string(FieldEndDate), Reason: "must not be before start_date"}
	}
	return nil
}

// Save persists the draft and reloads the authoritative records. On a failed
// or rejected create/update the draft stays open for a retry. A failed reload still
// closes the editor since the write went through.
func (e *Editor) Save(ctx context.Context, b Backend) error {
	if !e.IsOpen() {
		return ErrNotOpen
	}
	if err := validate(e.draft); err != nil {
		return err
	}

	rec := e.draft.Record()
	op, write := "create", b.Create
	if b.Known(rec.ID) {
		op = "update"
		write = func(ctx context.Context, p entities.Plot) error { return b.Update(ctx, p.ID, p) }
	}
	if err := write(ctx, rec); err != nil {
		if IsValidation(err) {
			return err
		}
		return &PersistenceError{Op: op, Err: err}
	}

	err := b.Reload(ctx)
	e.Cancel()
	if err != nil {
		return &PersistenceError{Op: "reload", Err: err}
	}
	return nil
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.state = Closed
	e.draft = entities.PlotView{}
	e.group = ""
}

// Snapshot is a serializable view of the editor.
type Snapshot struct {
	State       State                `json:"state"`
	Draft       *entities.PlotView   `json:"draft,omitempty"`
	Glyph       catalog.Glyph        `json:"glyph"`
	ActiveGroup string               `json:"active_group,omitempty"`
	Groups      []entities.CropGroup `json:"groups,omitempty"`
	Crops       []entities.Crop      `json:"crops,omitempty"`
	Editable    map[Field]bool       `json:"editable,omitempty"`
}

func (e *Editor) Snapshot() Snapshot {
	s := Snapshot{State: e.state}
	if !e.IsOpen() {
		return s
	}
	d := e.draft
	s.Draft = &d
	s.Glyph = catalog.GlyphOf(d.Icon, d.SVG)
	s.ActiveGroup = e.group
	s.Groups = e.Groups()
	s.Crops = e.Crops()
	s.Editable = map[Field]bool{
		FieldStartDate: e.Editable(FieldStartDate),
		FieldEndDate:   e.Editable(FieldEndDate),
		FieldStatus:    e.Editable(FieldStatus),
	}
	return s
}
