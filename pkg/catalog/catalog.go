// Package catalog derives crop groups and per-group crop lists from the flat
// crop catalog.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"garden/entities"
)

// Groups returns the distinct groups in the order they are first seen in
// catalog. Crops without a group, or whose group has no name, are skipped.
func Groups(catalog []entities.Crop) []entities.CropGroup {
	seen := map[string]bool{}
	var out []entities.CropGroup
	for _, c := range catalog {
		if c.Group == nil || c.Group.ID == "" || strings.TrimSpace(c.Group.Name) == "" {
			continue
		}
		if seen[c.Group.ID] {
			continue
		}
		seen[c.Group.ID] = true
		out = append(out, *c.Group)
	}
	return out
}

// CropsInGroup returns the crops of groupID ordered by name under the
// collation rules of locale. An empty groupID yields no crops.
func CropsInGroup(catalog []entities.Crop, groupID, locale string) []entities.Crop {
	if groupID == "" {
		return nil
	}
	var out []entities.Crop
	for _, c := range catalog {
		if c.GroupKey() == groupID {
			out = append(out, c)
		}
	}
	SortByName(out, locale)
	return out
}

// SortByName sorts crops by locale-aware name comparison. Ties keep their
// catalog order.
func SortByName(crops []entities.Crop, locale string) {
	col := collate.New(tag(locale))
	sort.SliceStable(crops, func(i, j int) bool {
		return col.CompareString(crops[i].Name, crops[j].Name) < 0
	})
}

func tag(locale string) language.Tag {
	t, err := language.Parse(locale)
	if err != nil {
		return language.Japanese
	}
	return t
}

// Find returns the catalog entry with id.
func Find(catalog []entities.Crop, id string) (entities.Crop, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return entities.Crop{}, false
}

// ResolveGroupOf returns the group of cropID, if the crop exists and has one.
func ResolveGroupOf(catalog []entities.Crop, cropID string) (string, bool) {
	if cropID == "" {
		return "", false
	}
	c, ok := Find(catalog, cropID)
	if !ok {
		return "", false
	}
	g := c.GroupKey()
	return g, g != ""
}

// ActiveGroup picks the group the editor opens on: the group of cropID when
// it resolves, otherwise the first group, otherwise "".
func ActiveGroup(catalog []entities.Crop, cropID string) string {
	if g, ok := ResolveGroupOf(catalog, cropID); ok {
		return g
	}
	if gs := Groups(catalog); len(gs) > 0 {
		return gs[0].ID
	}
	return ""
}

// HasGroup reports whether groupID appears in the catalog.
func HasGroup(catalog []entities.Crop, groupID string) bool {
	for _, g := range Groups(catalog) {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

type GlyphKind string

const (
	GlyphNone  GlyphKind = ""
	GlyphEmoji GlyphKind = "emoji"
	GlyphSVG   GlyphKind = "svg"
)

// Glyph is opaque display content. The renderer is responsible for
// sanitizing SVG markup; nothing here interprets it.
type Glyph struct {
	Kind  GlyphKind `json:"kind,omitempty"`
	Value string    `json:"value,omitempty"`
}

// GlyphOf prefers the emoji and falls back to the SVG markup.
func GlyphOf(icon, svg string) Glyph {
	switch {
	case icon != "":
		return Glyph{Kind: GlyphEmoji, Value: icon}
	case svg != "":
		return Glyph{Kind: GlyphSVG, Value: svg}
	}
	return Glyph{}
}

func CropGlyph(c entities.Crop) Glyph {
	var icon, svg string
	if c.Icon != nil {
		icon = *c.Icon
	}
	if c.SVG != nil {
		svg = *c.SVG
	}
	return GlyphOf(icon, svg)
}
