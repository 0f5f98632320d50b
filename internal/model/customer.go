package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	ContactName    string    `gorm:"size:255" json:"contact_name"`
	Email          string    `gorm:"size:255" json:"email"`
	Phone          string    `gorm:"size:64" json:"phone"`
	BillingAddress string    `gorm:"type:text" json:"billing_address"`
	SiteAddress    string    `gorm:"type:text" json:"site_address"`
	CreatedAt      time.Time `json:"created_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Customer) TableName() string { return "customers" }
