package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestPlotViewRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		plot Plot
	}{
		{
			name: "closed range with crop",
			plot: Plot{
				ID: "p1", Area: "A", RowNo: 3, Name: "トマト",
				StartDate: "2024-06-01", EndDate: strp("2024-06-20"),
				Status: StatusGrowing, CropID: strp("c-tomato"),
				Icon: strp("🍅"),
			},
		},
		{
			name: "open ended without crop",
			plot: Plot{
				ID: "p2", Area: "B", RowNo: 10, Name: "free text",
				StartDate: "2024-01-05", Status: StatusHarvested,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := tt.plot.View().Record()
			assert.Equal(t, tt.plot.ID, back.ID)
			assert.Equal(t, tt.plot.Area, back.Area)
			assert.Equal(t, tt.plot.RowNo, back.RowNo)
			assert.Equal(t, tt.plot.StartDate, back.StartDate)
			assert.Equal(t, tt.plot.EndDate, back.EndDate)
			assert.Equal(t, tt.plot.Status, back.Status)
			assert.Equal(t, tt.plot.CropID, back.CropID)
			assert.Nil(t, back.Icon, "joined fields are not written back")
		})
	}
}

func TestPlotViewJoinedFields(t *testing.T) {
	v := Plot{ID: "p1", SVG: strp("<svg/>"), RowNo: 2}.View()
	assert.Equal(t, "<svg/>", v.SVG)
	assert.Equal(t, 2, v.Row)
	assert.True(t, v.OpenEnded())
}

func TestPlotPatchApply(t *testing.T) {
	p := Plot{ID: "p1", Name: "old", StartDate: "2024-06-01", EndDate: strp("2024-06-20"), Status: StatusGrowing, CropID: strp("c1")}

	status := StatusHarvested
	PlotPatch{Name: strp("new"), Status: &status}.Apply(&p)
	assert.Equal(t, "new", p.Name)
	assert.Equal(t, StatusHarvested, p.Status)
	require.NotNil(t, p.EndDate)

	PlotPatch{ClearEndDate: true, CropID: strp("")}.Apply(&p)
	assert.Nil(t, p.EndDate)
	assert.Nil(t, p.CropID)
}

func TestPatchFromClearsMissingEndDate(t *testing.T) {
	patch := PatchFrom(Plot{ID: "p1", Name: "x", StartDate: "2024-06-01", Status: StatusGrowing})
	assert.True(t, patch.ClearEndDate)
	assert.Nil(t, patch.EndDate)

	patch = PatchFrom(Plot{ID: "p1", EndDate: strp("2024-07-01")})
	assert.False(t, patch.ClearEndDate)
	assert.Equal(t, "2024-07-01", *patch.EndDate)
}

func TestPlotStatusValid(t *testing.T) {
	assert.True(t, StatusGrowing.Valid())
	assert.True(t, StatusDiscarded.Valid())
	assert.False(t, PlotStatus("planned").Valid())
}

func TestCropGroupKey(t *testing.T) {
	assert.Equal(t, "g1", Crop{Group: &CropGroup{ID: "g1"}}.GroupKey())
	assert.Equal(t, "g2", Crop{GroupID: strp("g2")}.GroupKey())
	assert.Equal(t, "", Crop{}.GroupKey())
}
