package models

import (
	"gorm.io/gorm"
)

type MaterialNuclide struct {
	gorm.Model
	MaterialRecordID uint    `gorm:"not null;uniqueIndex:idx_material_nuclide" json:"material_record_id"` // Parent Material row
	ZAID             int     `gorm:"column:zaid;not null;uniqueIndex:idx_material_nuclide" json:"zaid"`
	Fraction         float64 `gorm:"not null" json:"fraction"`
	Position         int     `gorm:"not null;default:0" json:"position"`

	// Optional library suffixes. Empty means the material default applies.
	NLib string `gorm:"type:varchar(16)" json:"nlib,omitempty"`
	PLib string `gorm:"type:varchar(16)" json:"plib,omitempty"`
	YLib string `gorm:"type:varchar(16)" json:"ylib,omitempty"`
}
