package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type TicketFilter struct {
	Status     *model.TicketStatus
	CustomerID *uuid.UUID
	AssignedTo *uuid.UUID
}

func (r *TicketRepository) Get(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) List(ctx context.Context, filter TicketFilter) ([]model.Ticket, error) {
	query := r.db.WithContext(ctx).Model(&model.Ticket{}).Order("created_at DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}

	var tickets []model.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ticket.Number == "" {
			number, err := nextNumber(tx, &model.Ticket{}, "TKT")
			if err != nil {
				return err
			}
			ticket.Number = number
		}
		return tx.Create(ticket).Error
	})
}

// SetStatus stamps a ticket status change guarded by the expected current
// status, with optional extra column updates (assignee, completion stamp).
func (r *TicketRepository) SetStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to model.TicketStatus,
	extra map[string]interface{},
) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for column, value := range extra {
		updates[column] = value
	}

	result := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TicketRepository) AddPhoto(ctx context.Context, photo *model.TicketPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *TicketRepository) ListPhotos(ctx context.Context, ticketID uuid.UUID) ([]model.TicketPhoto, error) {
	var photos []model.TicketPhoto
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}
