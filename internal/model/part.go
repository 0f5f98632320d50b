package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Part struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SKU            string    `gorm:"size:64;unique;not null" json:"sku"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	UnitCost       float64   `gorm:"type:decimal(15,2);default:0" json:"unit_cost"`
	UnitPrice      float64   `gorm:"type:decimal(15,2);default:0" json:"unit_price"`
	QuantityOnHand int       `gorm:"not null;default:0" json:"quantity_on_hand"`
	ReorderLevel   int       `gorm:"not null;default:0" json:"reorder_level"`
	VendorName     string    `gorm:"size:255" json:"vendor_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Part) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Part) TableName() string { return "parts" }
