package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LaborRateKey string

const (
	LaborRateStandard   LaborRateKey = "standard"
	LaborRateAfterHours LaborRateKey = "after_hours"
	LaborRateEmergency  LaborRateKey = "emergency"
)

// LaborRateProfile holds the hourly rates used to price labor line items.
// Exactly one profile is active at a time; activating a new one deactivates
// the previous.
type LaborRateProfile struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	StandardRate   float64   `gorm:"type:decimal(15,2);not null" json:"standard_rate"`
	AfterHoursRate float64   `gorm:"type:decimal(15,2);not null" json:"after_hours_rate"`
	EmergencyRate  float64   `gorm:"type:decimal(15,2);not null" json:"emergency_rate"`
	Active         bool      `gorm:"not null;default:false;index" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *LaborRateProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (LaborRateProfile) TableName() string { return "labor_rate_profiles" }

// Rate returns the hourly rate for a key, with its display label.
// ok is false for an unknown key.
func (p *LaborRateProfile) Rate(key LaborRateKey) (rate float64, label string, ok bool) {
	switch key {
	case LaborRateStandard:
		return p.StandardRate, "Labor - Standard Rate", true
	case LaborRateAfterHours:
		return p.AfterHoursRate, "Labor - After Hours Rate", true
	case LaborRateEmergency:
		return p.EmergencyRate, "Labor - Emergency Rate", true
	default:
		return 0, "", false
	}
}
