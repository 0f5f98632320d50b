package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EstimateStatus string

const (
	EstimateStatusDraft     EstimateStatus = "draft"
	EstimateStatusSent      EstimateStatus = "sent"
	EstimateStatusViewed    EstimateStatus = "viewed"
	EstimateStatusAccepted  EstimateStatus = "accepted"
	EstimateStatusRejected  EstimateStatus = "rejected"
	EstimateStatusConverted EstimateStatus = "converted"
)

type LineItemType string

const (
	LineItemTypeLabor     LineItemType = "labor"
	LineItemTypeParts     LineItemType = "parts"
	LineItemTypeEquipment LineItemType = "equipment"
	LineItemTypeDiscount  LineItemType = "discount"
	LineItemTypeOther     LineItemType = "other"
)

// Estimate is a quotation document for a prospective job. An accepted estimate
// is convertible, exactly once, into a ticket or a project; the converted
// reference columns hold the back-link. Estimates are never hard-deleted.
type Estimate struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Number               string         `gorm:"size:32;unique;not null" json:"number"`
	CustomerID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	JobTitle             string         `gorm:"size:255;not null" json:"job_title"`
	Description          string         `gorm:"type:text" json:"description"`
	SiteLocation         string         `gorm:"type:text" json:"site_location"`
	Status               EstimateStatus `gorm:"size:16;not null;default:'draft';index" json:"status"`
	Subtotal             float64        `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	DiscountTotal        float64        `gorm:"type:decimal(15,2);default:0" json:"discount_total"`
	TaxRate              float64        `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	TaxAmount            float64        `gorm:"type:decimal(15,2);default:0" json:"tax_amount"`
	Total                float64        `gorm:"type:decimal(15,2);default:0" json:"total"`
	EstimateDate         time.Time      `gorm:"type:date;not null" json:"estimate_date"`
	ExpiresAt            *time.Time     `gorm:"type:date" json:"expires_at,omitempty"`
	Notes                string         `gorm:"type:text" json:"notes"`
	Terms                string         `gorm:"type:text" json:"terms"`
	SentAt               *time.Time     `json:"sent_at,omitempty"`
	ViewedAt             *time.Time     `json:"viewed_at,omitempty"`
	AcceptedAt           *time.Time     `json:"accepted_at,omitempty"`
	RejectedAt           *time.Time     `json:"rejected_at,omitempty"`
	ConvertedAt          *time.Time     `json:"converted_at,omitempty"`
	ConvertedToTicketID  *uuid.UUID     `gorm:"type:uuid" json:"converted_to_ticket_id,omitempty"`
	ConvertedToProjectID *uuid.UUID     `gorm:"type:uuid" json:"converted_to_project_id,omitempty"`
	CreatedBy            *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	Customer *Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []EstimateLineItem `gorm:"foreignKey:EstimateID" json:"items,omitempty"`
}

func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (Estimate) TableName() string { return "estimates" }

// IsConverted reports whether a dependent record has already been created.
func (e *Estimate) IsConverted() bool {
	return e.ConvertedToTicketID != nil || e.ConvertedToProjectID != nil
}

// EstimateLineItem is one billable component of an estimate, ordered by
// LineOrder. Labor lines carry hours/rate; parts and equipment lines carry a
// reference to the catalog record they were priced from. Discount lines hold a
// negative line total.
type EstimateLineItem struct {
	ID          uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	EstimateID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"estimate_id"`
	LineOrder   int          `gorm:"not null" json:"line_order"`
	Type        LineItemType `gorm:"size:16;not null;default:'labor'" json:"type"`
	Description string       `gorm:"type:text" json:"description"`
	Quantity    float64      `gorm:"type:decimal(10,2);not null;default:1" json:"quantity"`
	UnitPrice   float64      `gorm:"type:decimal(15,2);not null;default:0" json:"unit_price"`
	LineTotal   float64      `gorm:"type:decimal(15,2);not null;default:0" json:"line_total"`
	PartID      *uuid.UUID   `gorm:"type:uuid" json:"part_id,omitempty"`
	EquipmentID *uuid.UUID   `gorm:"type:uuid" json:"equipment_id,omitempty"`
	LaborHours  *float64     `gorm:"type:decimal(10,2)" json:"labor_hours,omitempty"`
	LaborRate   *float64     `gorm:"type:decimal(15,2)" json:"labor_rate,omitempty"`
}

func (i *EstimateLineItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (EstimateLineItem) TableName() string { return "estimate_line_items" }
