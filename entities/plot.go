package entities

import "time"

type PlotStatus string

const (
	StatusGrowing   PlotStatus = "growing"
	StatusHarvested PlotStatus = "harvested"
	StatusDiscarded PlotStatus = "discarded"
)

func (s PlotStatus) Valid() bool {
	switch s {
	case StatusGrowing, StatusHarvested, StatusDiscarded:
		return true
	}
	return false
}

// Plot is a planting record as stored and exchanged with the persistence
// service. Icon and SVG are joined from the crop catalog on read and are never
// written back.
type Plot struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Area      string     `gorm:"index" json:"area"`
	RowNo     int        `gorm:"column:row_no" json:"row_no"`
	Name      string     `json:"name"`
	StartDate string     `gorm:"index" json:"start_date"` // YYYY-MM-DD
	EndDate   *string    `json:"end_date"`                // nil = open-ended
	Status    PlotStatus `gorm:"index" json:"status"`
	CropID    *string    `gorm:"index" json:"crop_id"`

	Crop *Crop   `gorm:"foreignKey:CropID" json:"-"`
	Icon *string `gorm:"-" json:"icon,omitempty"`
	SVG  *string `gorm:"-" json:"svg,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// PlotPatch carries the fields of a partial update; nil fields are left as is.
// ClearEndDate reopens a record (end_date -> NULL).
type PlotPatch struct {
	Area         *string     `json:"area,omitempty"`
	RowNo        *int        `json:"row_no,omitempty"`
	Name         *string     `json:"name,omitempty"`
	StartDate    *string     `json:"start_date,omitempty"`
	EndDate      *string     `json:"end_date,omitempty"`
	ClearEndDate bool        `json:"clear_end_date,omitempty"`
	Status       *PlotStatus `json:"status,omitempty"`
	CropID       *string     `json:"crop_id,omitempty"`
}

// PatchFrom builds a patch that overwrites every writable field of p.
func PatchFrom(p Plot) PlotPatch {
	patch := PlotPatch{
		Area:      &p.Area,
		RowNo:     &p.RowNo,
		Name:      &p.Name,
		StartDate: &p.StartDate,
		Status:    &p.Status,
		CropID:    p.CropID,
	}
	if p.EndDate == nil || *p.EndDate == "" {
		patch.ClearEndDate = true
	} else {
		patch.EndDate = p.EndDate
	}
	return patch
}

// Apply copies the non-nil patch fields onto p.
func (patch PlotPatch) Apply(p *Plot) {
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	if patch.RowNo != nil {
		p.RowNo = *patch.RowNo
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.ClearEndDate {
		p.EndDate = nil
	} else if patch.EndDate != nil {
		v := *patch.EndDate
		p.EndDate = &v
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.CropID != nil {
		v := *patch.CropID
		p.CropID = &v
		if v == "" {
			p.CropID = nil
		}
	}
}

// PlotView is the display form of a Plot used by the field view and editor.
type PlotView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon,omitempty"`
	SVG       string     `json:"svg,omitempty"`
	Area      string     `json:"area"`
	Row       int        `json:"row"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate,omitempty"`
	Status    PlotStatus `json:"status"`
	CropID    string     `json:"cropId,omitempty"`
}

func (p Plot) View() PlotView {
	return PlotView{
		ID:        p.ID,
		Name:      p.Name,
		Icon:      deref(p.Icon),
		SVG:       deref(p.SVG),
		Area:      p.Area,
		Row:       p.RowNo,
		StartDate: p.StartDate,
		EndDate:   deref(p.EndDate),
		Status:    p.Status,
		CropID:    deref(p.CropID),
	}
}

// Record maps the display form back to its write form. Joined display
// fields are dropped.
func (v PlotView) Record() Plot {
	return Plot{
		ID:        v.ID,
		Name:      v.Name,
		Area:      v.Area,
		RowNo:     v.Row,
		StartDate: v.StartDate,
		EndDate:   ref(v.EndDate),
		Status:    v.Status,
		CropID:    ref(v.CropID),
	}
}

// OpenEnded reports whether the record has no end date.
func (v PlotView) OpenEnded() bool { return v.EndDate == "" }

func Views(plots []Plot) []PlotView {
	out := make([]PlotView, len(plots))
	for i := range plots {
		out[i] = plots[i].View()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
