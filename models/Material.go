package models

import (
	"gorm.io/gorm"
)

// Material is the persisted form of a material composition.
type Material struct {
	gorm.Model
	MaterialID      int               `gorm:"uniqueIndex;not null" json:"material_id"`
	Name            string            `gorm:"not null" json:"name"`
	Notes           string            `gorm:"type:text" json:"notes"`
	Density         *float64          `json:"density"`
	DensityUnit     string            `gorm:"type:varchar(32);not null;default:g/cm3" json:"density_unit"`
	Temperature     *float64          `json:"temperature"`
	TemperatureUnit string            `gorm:"type:varchar(8);not null;default:K" json:"temperature_unit"`
	NLib            string            `gorm:"type:varchar(16)" json:"nlib"`
	PLib            string            `gorm:"type:varchar(16)" json:"plib"`
	YLib            string            `gorm:"type:varchar(16)" json:"ylib"`
	Source          string            `gorm:"type:varchar(64)" json:"source"`
	Nuclides        []MaterialNuclide `gorm:"foreignKey:MaterialRecordID;constraint:OnDelete:CASCADE" json:"nuclides"`
}
