package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusOnHold     TicketStatus = "on_hold"
	TicketStatusCompleted  TicketStatus = "completed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

type TicketPriority string

const (
	TicketPriorityLow       TicketPriority = "low"
	TicketPriorityNormal    TicketPriority = "normal"
	TicketPriorityHigh      TicketPriority = "high"
	TicketPriorityEmergency TicketPriority = "emergency"
)

type Ticket struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Number       string         `gorm:"size:32;unique;not null" json:"number"`
	CustomerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	SiteLocation string         `gorm:"type:text" json:"site_location"`
	Status       TicketStatus   `gorm:"size:16;not null;default:'open';index" json:"status"`
	Priority     TicketPriority `gorm:"size:16;not null;default:'normal'" json:"priority"`
	AssignedTo   *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	EstimateID   *uuid.UUID     `gorm:"type:uuid" json:"estimate_id,omitempty"`
	QuotedTotal  float64        `gorm:"type:decimal(15,2);default:0" json:"quoted_total"`
	ScheduledAt  *time.Time     `json:"scheduled_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Photos   []TicketPhoto `gorm:"foreignKey:TicketID" json:"photos,omitempty"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Ticket) TableName() string { return "tickets" }

type TicketPhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PublicURL   string    `gorm:"size:512;not null" json:"public_url"`
	UploadedBy  uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *TicketPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (TicketPhoto) TableName() string { return "ticket_photos" }
