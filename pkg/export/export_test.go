package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"garden/entities"
)

func TestPlotsXLSX(t *testing.T) {
	end := "2024-07-01"
	crop := "c-tomato"
	plots := []entities.Plot{
		{ID: "p1", Area: "エリアA", RowNo: 3, Name: "トマト", StartDate: "2024-06-01", EndDate: &end, Status: entities.StatusHarvested, CropID: &crop},
		{ID: "p2", Area: "エリアB", RowNo: 10, Name: "memo", StartDate: "2024-06-02", Status: entities.StatusGrowing},
	}

	var buf bytes.Buffer
	require.NoError(t, PlotsXLSX(&buf, plots))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, []string{SheetName}, x.GetSheetList())
	rows, err := x.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Crop ID", rows[0][7])
	assert.Equal(t, []string{"p1", "エリアA", "3", "トマト", "2024-06-01", "2024-07-01", "harvested", "c-tomato"}, rows[1])
	assert.Equal(t, []string{"p2", "エリアB", "10", "memo", "2024-06-02", "", "growing"}, rows[2])
}

func TestPlotsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotsXLSX(&buf, nil))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
