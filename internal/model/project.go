package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Number      string        `gorm:"size:32;unique;not null" json:"number"`
	CustomerID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"size:16;not null;default:'planned';index" json:"status"`
	Budget      float64       `gorm:"type:decimal(15,2);default:0" json:"budget"`
	EstimateID  *uuid.UUID    `gorm:"type:uuid" json:"estimate_id,omitempty"`
	StartDate   *time.Time    `gorm:"type:date" json:"start_date,omitempty"`
	EndDate     *time.Time    `gorm:"type:date" json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Project) TableName() string { return "projects" }
