package entities

type CropGroup struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

// IconArt holds vector glyph markup referenced by crops.
type IconArt struct {
	ID  string `gorm:"primaryKey" json:"id"`
	SVG string `json:"svg"`
}

func (IconArt) TableName() string { return "icons" }

// Crop is a catalog entry. Icon is an emoji glyph; SVG is joined from the
// icons table. Both are opaque display content.
type Crop struct {
	ID      string  `gorm:"primaryKey" json:"id"`
	Name    string  `json:"name"`
	Icon    *string `json:"icon,omitempty"`
	IconID  *string `json:"-"`
	GroupID *string `gorm:"index" json:"group_id"`

	Group *CropGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Art   *IconArt   `gorm:"foreignKey:IconID" json:"-"`
	SVG   *string    `gorm:"-" json:"svg,omitempty"`
}

// GroupKey returns the crop's group id, or "" when it has none.
func (c Crop) GroupKey() string {
	if c.Group != nil && c.Group.ID != "" {
		return c.Group.ID
	}
	return deref(c.GroupID)
}
