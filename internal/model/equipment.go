package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Equipment is a unit installed at a customer site, tracked for service history
// and warranty coverage. Equipment placed on an estimate line carries no direct
// charge; it scopes the installation work billed through labor and parts lines.
type Equipment struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name              string     `gorm:"size:255;not null" json:"name"`
	ModelNumber       string     `gorm:"size:128" json:"model_number"`
	SerialNumber      string     `gorm:"size:128" json:"serial_number"`
	InstallDate       *time.Time `gorm:"type:date" json:"install_date,omitempty"`
	WarrantyExpiresAt *time.Time `gorm:"type:date" json:"warranty_expires_at,omitempty"`
	Location          string     `gorm:"size:255" json:"location"`
	Notes             string     `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (Equipment) TableName() string { return "equipment" }
