package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
)

// ErrConversionConflict is returned when the conversion stamp finds the
// estimate no longer accepted-and-unconverted (a concurrent conversion or
// status change won the race).
var ErrConversionConflict = errors.New("estimate not convertible")

type EstimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

type EstimateFilter struct {
	Status     *model.EstimateStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

func (r *EstimateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var estimate model.Estimate
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_order ASC")
		}).
		First(&estimate, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *EstimateRepository) List(ctx context.Context, filter EstimateFilter) ([]model.Estimate, error) {
	query := r.db.WithContext(ctx).Model(&model.Estimate{}).Order("estimate_date DESC, number DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("estimate_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("estimate_date <= ?", *filter.To)
	}

	var estimates []model.Estimate
	if err := query.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Create inserts the estimate header and its line items in one transaction.
func (r *EstimateRepository) Create(ctx context.Context, estimate *model.Estimate, items []model.EstimateLineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(estimate).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].EstimateID = estimate.ID
			items[i].LineOrder = i
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// Save replaces the estimate atomically: header columns and totals are
// updated, every existing line item is deleted, and the submitted items are
// re-inserted in order. A failure at any step rolls back the whole save.
func (r *EstimateRepository) Save(ctx context.Context, estimate *model.Estimate, items []model.EstimateLineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Estimate{}).
			Where("id = ?", estimate.ID).
			Updates(map[string]interface{}{
				"customer_id":    estimate.CustomerID,
				"job_title":      estimate.JobTitle,
				"description":    estimate.Description,
				"site_location":  estimate.SiteLocation,
				"subtotal":       estimate.Subtotal,
				"discount_total": estimate.DiscountTotal,
				"tax_rate":       estimate.TaxRate,
				"tax_amount":     estimate.TaxAmount,
				"total":          estimate.Total,
				"estimate_date":  estimate.EstimateDate,
				"expires_at":     estimate.ExpiresAt,
				"notes":          estimate.Notes,
				"terms":          estimate.Terms,
				"updated_at":     time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("estimate_id = ?", estimate.ID).
			Delete(&model.EstimateLineItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].EstimateID = estimate.ID
		}
		return tx.Create(&items).Error
	})
}

// SetStatus stamps a status transition. The caller validates legality; the
// WHERE clause on the expected current status closes the race against a
// concurrent transition, reported as RowsAffected 0.
func (r *EstimateRepository) SetStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to model.EstimateStatus,
	stamps map[string]interface{},
) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for column, value := range stamps {
		updates[column] = value
	}

	result := r.db.WithContext(ctx).Model(&model.Estimate{}).
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

// ConvertToTicket creates the dependent ticket and stamps the estimate as
// converted in one transaction. The guarded UPDATE rejects a second
// conversion racing this one.
func (r *EstimateRepository) ConvertToTicket(ctx context.Context, estimate *model.Estimate, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, &model.Ticket{}, "TKT")
		if err != nil {
			return err
		}
		ticket.Number = number
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}
		return stampConverted(tx, estimate.ID, map[string]interface{}{
			"converted_to_ticket_id": ticket.ID,
		})
	})
}

// ConvertToProject is the project counterpart of ConvertToTicket.
func (r *EstimateRepository) ConvertToProject(ctx context.Context, estimate *model.Estimate, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, &model.Project{}, "PRJ")
		if err != nil {
			return err
		}
		project.Number = number
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return stampConverted(tx, estimate.ID, map[string]interface{}{
			"converted_to_project_id": project.ID,
		})
	})
}

func stampConverted(tx *gorm.DB, estimateID uuid.UUID, backref map[string]interface{}) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       model.EstimateStatusConverted,
		"converted_at": now,
		"updated_at":   now,
	}
	for column, value := range backref {
		updates[column] = value
	}

	result := tx.Model(&model.Estimate{}).
		Where("id = ? AND status = ? AND converted_to_ticket_id IS NULL AND converted_to_project_id IS NULL",
			estimateID, model.EstimateStatusAccepted).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversionConflict
	}
	return nil
}

// NextNumber allocates the next document number for the estimate table.
func (r *EstimateRepository) NextNumber(ctx context.Context) (string, error) {
	return nextNumber(r.db.WithContext(ctx), &model.Estimate{}, "EST")
}

func nextNumber(tx *gorm.DB, rowModel interface{}, prefix string) (string, error) {
	var count int64
	if err := tx.Model(rowModel).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, time.Now().UTC().Year(), count+1), nil
}
