package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const csvSeed = "\ufeffgroup_id,group_name,crop_id,crop_name,icon,svg_file\n" +
	"g-fruit,果菜類,c-tomato,トマト,🍅,\n" +
	"g-leaf,葉菜類,c-spinach,ほうれん草,,spinach.html\n" +
	"g-fruit,果菜類,c-eggplant,なす,🍆,\n" +
	",,,,,\n"

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(csvSeed))
	require.NoError(t, err)
	require.Len(t, rows, 3, "blank lines are skipped")
	assert.Equal(t, Row{GroupID: "g-leaf", GroupName: "葉菜類", CropID: "c-spinach", CropName: "ほうれん草", SVGFile: "spinach.html"}, rows[1])
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("group_id,crop_name\ng,x\n"))
	assert.ErrorContains(t, err, "crop_id")

	_, err = ReadCSV(strings.NewReader("crop_id,crop_name\nc1,\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestExtractSVG(t *testing.T) {
	svg, err := ExtractSVG(strings.NewReader(`<html><body><p>icon</p><svg viewBox="0 0 10 10"><circle r="4"></circle></svg><svg id="second"></svg></body></html>`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `viewBox="0 0 10 10"`)
	assert.Contains(t, svg, "<circle")
	assert.NotContains(t, svg, "second")

	_, err = ExtractSVG(strings.NewReader("<p>no art</p>"))
	assert.ErrorIs(t, err, ErrNoSVG)
}

func TestBuild(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(csvSeed))
	require.NoError(t, err)

	c, err := Build(rows, func(name string) ([]byte, error) {
		assert.Equal(t, "spinach.html", name)
		return []byte(`<svg><path d="M0 0"></path></svg>`), nil
	})
	require.NoError(t, err)

	require.Len(t, c.Groups, 2)
	assert.Equal(t, "g-fruit", c.Groups[0].ID)
	require.Len(t, c.Icons, 1)
	assert.Equal(t, "icon-c-spinach", c.Icons[0].ID)
	require.Len(t, c.Crops, 3)
	assert.Equal(t, "icon-c-spinach", *c.Crops[1].IconID)
	assert.Equal(t, "🍅", *c.Crops[0].Icon)
	assert.Nil(t, c.Crops[0].IconID)
}

func TestLoadXLSX(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carrot.svg"), []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="2"></rect></svg>`), 0o600))

	x := excelize.NewFile()
	sheet := x.GetSheetName(0)
	require.NoError(t, x.SetSheetRow(sheet, "A1", &[]interface{}{"crop_id", "crop_name", "group_id", "group_name", "svg_file"}))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]interface{}{"c-carrot", "にんじん", "g-root", "根菜類", "carrot.svg"}))
	path := filepath.Join(dir, "seed.xlsx")
	require.NoError(t, x.SaveAs(path))
	require.NoError(t, x.Close())

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Crops, 1)
	assert.Equal(t, "にんじん", c.Crops[0].Name)
	require.Len(t, c.Icons, 1)
	assert.Contains(t, c.Icons[0].SVG, "<rect")
}

func TestLoadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported")
}
