// Package seed reads crop catalog seed files. A seed is a CSV or XLSX table
// with the columns group_id, group_name, crop_id, crop_name, icon and
// svg_file; svg_file names an SVG or HTML file (relative to the seed) whose
// first <svg> element becomes the crop's icon art.
package seed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"garden/entities"
	"garden/pkg/plot/repository"
)

var ErrNoSVG = errors.New("no <svg> element found")

type Row struct {
	GroupID   string
	GroupName string
	CropID    string
	CropName  string
	Icon      string
	SVGFile   string
}

// Load reads the seed at path, picking the format from the extension, and
// resolves svg_file entries relative to the seed's directory.
func Load(path string) (repository.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return repository.Catalog{}, err
	}
	defer f.Close()

	var rows []Row
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = ReadXLSX(f)
	case ".csv":
		rows, err = ReadCSV(f)
	default:
		return repository.Catalog{}, fmt.Errorf("unsupported seed format %q", filepath.Ext(path))
	}
	if err != nil {
		return repository.Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	return Build(rows, func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	})
}

func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return fromTable(records)
}

// ReadXLSX reads the first sheet of the workbook.
func ReadXLSX(r io.Reader) ([]Row, error) {
	x, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer x.Close()
	records, err := x.GetRows(x.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	return fromTable(records)
}

func fromTable(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, errors.New("empty seed")
	}
	idx := map[string]int{}
	for i, h := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, need := range []string{"crop_id", "crop_name"} {
		if _, ok := idx[need]; !ok {
			return nil, fmt.Errorf("missing column %q", need)
		}
	}
	col := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Row
	for n, rec := range records[1:] {
		r := Row{
			GroupID:   col(rec, "group_id"),
			GroupName: col(rec, "group_name"),
			CropID:    col(rec, "crop_id"),
			CropName:  col(rec, "crop_name"),
			Icon:      col(rec, "icon"),
			SVGFile:   col(rec, "svg_file"),
		}
		if r == (Row{}) {
			continue
		}
		if r.CropID == "" || r.CropName == "" {
			return nil, fmt.Errorf("line %d: crop_id and crop_name are required", n+2)
		}
		out = append(out, r)
	}
	return out, nil
}

// Build turns rows into catalog entities. Groups keep the order they first
// appear in; icon art is keyed "icon-<crop_id>".
func Build(rows []Row, readSVG func(name string) ([]byte, error)) (repository.Catalog, error) {
	var c repository.Catalog
	seen := map[string]bool{}
	for _, r := range rows {
		crop := entities.Crop{ID: r.CropID, Name: r.CropName}
		if r.GroupID != "" {
			gid := r.GroupID
			crop.GroupID = &gid
			if !seen[gid] {
				seen[gid] = true
				name := r.GroupName
				if name == "" {
					name = gid
				}
				c.Groups = append(c.Groups, entities.CropGroup{ID: gid, Name: name})
			}
		}
		if r.Icon != "" {
			icon := r.Icon
			crop.Icon = &icon
		}
		if r.SVGFile != "" {
			if readSVG == nil {
				return c, fmt.Errorf("%s: svg_file given but no reader", r.CropID)
			}
			b, err := readSVG(r.SVGFile)
			if err != nil {
				return c, fmt.Errorf("%s: %w", r.CropID, err)
			}
			svg, err := ExtractSVG(bytes.NewReader(b))
			if err != nil {
				return c, fmt.Errorf("%s: %s: %w", r.CropID, r.SVGFile, err)
			}
			iconID := "icon-" + r.CropID
			crop.IconID = &iconID
			c.Icons = append(c.Icons, entities.IconArt{ID: iconID, SVG: svg})
		}
		c.Crops = append(c.Crops, crop)
	}
	return c, nil
}

// ExtractSVG returns the outer markup of the first <svg> element in an SVG or
// HTML document.
func ExtractSVG(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	sel := doc.Find("svg").First()
	if sel.Length() == 0 {
		return "", ErrNoSVG
	}
	return goquery.OuterHtml(sel)
}
