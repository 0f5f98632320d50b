package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
)

// CatalogService covers the reference data behind estimates and tickets:
// customers, parts inventory, equipment and the labor rate profile.
type CatalogService struct {
	catalog *repository.CatalogRepository
}

func NewCatalogService(catalog *repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.catalog.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CatalogService) ListCustomers(ctx context.Context, search string) ([]model.Customer, error) {
	return s.catalog.ListCustomers(ctx, search)
}

func (s *CatalogService) CreateCustomer(ctx context.Context, customer *model.Customer, principal model.Principal) (*model.Customer, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.catalog.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, customer *model.Customer, principal model.Principal) (*model.Customer, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.catalog.UpdateCustomer(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetCustomer(ctx, customer.ID)
}

func (s *CatalogService) GetPart(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	part, err := s.catalog.GetPart(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return part, nil
}

func (s *CatalogService) ListParts(ctx context.Context, lowStockOnly bool) ([]model.Part, error) {
	return s.catalog.ListParts(ctx, lowStockOnly)
}

func (s *CatalogService) CreatePart(ctx context.Context, part *model.Part, principal model.Principal) (*model.Part, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(part.SKU) == "" || strings.TrimSpace(part.Name) == "" {
		return nil, fmt.Errorf("%w: sku and name are required", ErrInvalidInput)
	}
	if part.QuantityOnHand < 0 {
		return nil, fmt.Errorf("%w: quantity_on_hand must not be negative", ErrInvalidInput)
	}
	if err := s.catalog.CreatePart(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

func (s *CatalogService) UpdatePart(ctx context.Context, part *model.Part, principal model.Principal) (*model.Part, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if err := s.catalog.UpdatePart(ctx, part); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetPart(ctx, part.ID)
}

// AdjustStock applies a signed delta to a part's quantity on hand. Deltas that
// would take the quantity below zero are rejected.
func (s *CatalogService) AdjustStock(ctx context.Context, partID uuid.UUID, delta int, principal model.Principal) (*model.Part, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", ErrInvalidInput)
	}

	part, err := s.catalog.AdjustStock(ctx, partID, delta)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, fmt.Errorf("%w: stock cannot go below zero", ErrConflict)
		default:
			return nil, err
		}
	}
	return part, nil
}

func (s *CatalogService) GetEquipment(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	equipment, err := s.catalog.GetEquipment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return equipment, nil
}

func (s *CatalogService) ListEquipment(ctx context.Context, customerID *uuid.UUID) ([]model.Equipment, error) {
	return s.catalog.ListEquipment(ctx, customerID)
}

func (s *CatalogService) CreateEquipment(ctx context.Context, equipment *model.Equipment, principal model.Principal) (*model.Equipment, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if equipment.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(equipment.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.catalog.CreateEquipment(ctx, equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

// ListExpiringWarranties returns equipment whose warranty lapses within the
// next N days, soonest first.
func (s *CatalogService) ListExpiringWarranties(ctx context.Context, days int) ([]model.Equipment, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	return s.catalog.ListExpiringWarranties(ctx, days)
}

// GetActiveLaborRates returns the process-wide active labor rate profile.
func (s *CatalogService) GetActiveLaborRates(ctx context.Context) (*model.LaborRateProfile, error) {
	profile, err := s.catalog.GetActiveLaborRates(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

type LaborRatesInput struct {
	Name           string
	StandardRate   float64
	AfterHoursRate float64
	EmergencyRate  float64
	Principal      model.Principal
}

// ActivateLaborRates installs a new active profile, retiring the previous one
// in the same transaction.
func (s *CatalogService) ActivateLaborRates(ctx context.Context, input LaborRatesInput) (*model.LaborRateProfile, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if input.StandardRate <= 0 || input.AfterHoursRate <= 0 || input.EmergencyRate <= 0 {
		return nil, fmt.Errorf("%w: all rates must be positive", ErrInvalidInput)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = fmt.Sprintf("Rates %s", time.Now().UTC().Format("2006-01-02"))
	}

	profile := &model.LaborRateProfile{
		Name:           name,
		StandardRate:   input.StandardRate,
		AfterHoursRate: input.AfterHoursRate,
		EmergencyRate:  input.EmergencyRate,
	}
	if err := s.catalog.ActivateLaborRates(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
