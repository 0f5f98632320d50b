package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
)

// ErrInsufficientStock is returned when a stock adjustment would take a part's
// quantity on hand below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// CatalogRepository covers the pricing reference data: customers, parts,
// equipment and the labor rate profile.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CatalogRepository) ListCustomers(ctx context.Context, search string) ([]model.Customer, error) {
	query := r.db.WithContext(ctx).Model(&model.Customer{}).Order("name ASC")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var customers []model.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CatalogRepository) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CatalogRepository) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	result := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"name":            customer.Name,
			"contact_name":    customer.ContactName,
			"email":           customer.Email,
			"phone":           customer.Phone,
			"billing_address": customer.BillingAddress,
			"site_address":    customer.SiteAddress,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CatalogRepository) GetPart(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *CatalogRepository) ListParts(ctx context.Context, lowStockOnly bool) ([]model.Part, error) {
	query := r.db.WithContext(ctx).Model(&model.Part{}).Order("name ASC")
	if lowStockOnly {
		query = query.Where("quantity_on_hand <= reorder_level")
	}

	var parts []model.Part
	if err := query.Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *CatalogRepository) CreatePart(ctx context.Context, part *model.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *CatalogRepository) UpdatePart(ctx context.Context, part *model.Part) error {
	result := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("id = ?", part.ID).
		Updates(map[string]interface{}{
			"sku":           part.SKU,
			"name":          part.Name,
			"description":   part.Description,
			"unit_cost":     part.UnitCost,
			"unit_price":    part.UnitPrice,
			"reorder_level": part.ReorderLevel,
			"vendor_name":   part.VendorName,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustStock applies a signed delta to a part's quantity on hand inside a
// transaction, rejecting any adjustment that would go negative.
func (r *CatalogRepository) AdjustStock(ctx context.Context, partID uuid.UUID, delta int) (*model.Part, error) {
	var part model.Part
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&part, "id = ?", partID).Error; err != nil {
			return err
		}
		next := part.QuantityOnHand + delta
		if next < 0 {
			return ErrInsufficientStock
		}
		if err := tx.Model(&model.Part{}).
			Where("id = ?", partID).
			Updates(map[string]interface{}{
				"quantity_on_hand": next,
				"updated_at":       time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		part.QuantityOnHand = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *CatalogRepository) GetEquipment(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	var equipment model.Equipment
	if err := r.db.WithContext(ctx).First(&equipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *CatalogRepository) ListEquipment(ctx context.Context, customerID *uuid.UUID) ([]model.Equipment, error) {
	query := r.db.WithContext(ctx).Model(&model.Equipment{}).Order("name ASC")
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}

	var units []model.Equipment
	if err := query.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *CatalogRepository) CreateEquipment(ctx context.Context, equipment *model.Equipment) error {
	return r.db.WithContext(ctx).Create(equipment).Error
}

// ListExpiringWarranties returns equipment whose warranty lapses within the
// window [now, now+days].
func (r *CatalogRepository) ListExpiringWarranties(ctx context.Context, days int) ([]model.Equipment, error) {
	now := time.Now().UTC()
	until := now.AddDate(0, 0, days)

	var units []model.Equipment
	err := r.db.WithContext(ctx).
		Where("warranty_expires_at IS NOT NULL AND warranty_expires_at >= ? AND warranty_expires_at <= ?", now, until).
		Order("warranty_expires_at ASC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

// GetActiveLaborRates returns the single active labor rate profile.
func (r *CatalogRepository) GetActiveLaborRates(ctx context.Context) (*model.LaborRateProfile, error) {
	var profile model.LaborRateProfile
	if err := r.db.WithContext(ctx).First(&profile, "active = ?", true).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ActivateLaborRates inserts the profile as active, deactivating the previous
// active profile in the same transaction.
func (r *CatalogRepository) ActivateLaborRates(ctx context.Context, profile *model.LaborRateProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LaborRateProfile{}).
			Where("active = ?", true).
			Updates(map[string]interface{}{
				"active":     false,
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		profile.Active = true
		return tx.Create(profile).Error
	})
}
