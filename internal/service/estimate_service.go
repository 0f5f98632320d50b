package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/config"
	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
)

type PDFGenerator interface {
	Generate(estimate model.Estimate) ([]byte, error)
}

type RegisterGenerator interface {
	Generate(register model.EstimateRegister) ([]byte, error)
}

type EstimateService struct {
	estimates *repository.EstimateRepository
	catalog   *repository.CatalogRepository
	pdf       PDFGenerator
	excel     RegisterGenerator
	cfg       *config.Config
}

func NewEstimateService(
	estimates *repository.EstimateRepository,
	catalog *repository.CatalogRepository,
	pdf PDFGenerator,
	excel RegisterGenerator,
	cfg *config.Config,
) *EstimateService {
	return &EstimateService{
		estimates: estimates,
		catalog:   catalog,
		pdf:       pdf,
		excel:     excel,
		cfg:       cfg,
	}
}

// LineItemInput is a submitted line item. LineTotal is recomputed server-side;
// whatever the client sends for it is ignored.
type LineItemInput struct {
	Type        model.LineItemType
	Description string
	Quantity    float64
	UnitPrice   float64
	PartID      *uuid.UUID
	EquipmentID *uuid.UUID
}

type CreateEstimateInput struct {
	CustomerID   uuid.UUID
	JobTitle     string
	Description  string
	SiteLocation string
	TaxRate      *float64
	EstimateDate time.Time
	Notes        string
	Terms        string
	Items        []LineItemInput
	Principal    model.Principal
}

type SaveEstimateInput struct {
	EstimateID   uuid.UUID
	CustomerID   uuid.UUID
	JobTitle     string
	Description  string
	SiteLocation string
	TaxRate      float64
	EstimateDate time.Time
	ExpiresAt    *time.Time
	Notes        string
	Terms        string
	Items        []LineItemInput
	Principal    model.Principal
}

// SaveResult reports the saved estimate. Warning is set when the save dropped
// every submitted line (all descriptions blank): the estimate now has zero
// line items, which callers must surface instead of treating as success.
type SaveResult struct {
	Estimate *model.Estimate
	Warning  string
}

type ConvertTarget string

const (
	ConvertTargetTicket  ConvertTarget = "ticket"
	ConvertTargetProject ConvertTarget = "project"
)

type ConvertInput struct {
	EstimateID uuid.UUID
	Target     ConvertTarget
	Principal  model.Principal
}

type ConvertResult struct {
	Estimate  *model.Estimate
	TicketID  *uuid.UUID
	ProjectID *uuid.UUID
}

type DocumentResult struct {
	FileName string
	Content  []byte
}

func (s *EstimateService) Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	estimate, err := s.estimates.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return estimate, nil
}

func (s *EstimateService) List(ctx context.Context, filter repository.EstimateFilter) ([]model.Estimate, error) {
	return s.estimates.List(ctx, filter)
}

type PriceLineInput struct {
	Quantity    float64
	PartID      *uuid.UUID
	EquipmentID *uuid.UUID
	LaborRate   *model.LaborRateKey
}

// PriceLine prices a single line item from the catalog without persisting
// anything: a part reference fills description and unit price from the part,
// an equipment reference yields a zero-charge line, and a labor rate key
// prices labor hours from the active rate profile. Exactly one source must be
// given.
func (s *EstimateService) PriceLine(ctx context.Context, input PriceLineInput) (*model.EstimateLineItem, error) {
	sources := 0
	if input.PartID != nil {
		sources++
	}
	if input.EquipmentID != nil {
		sources++
	}
	if input.LaborRate != nil {
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("%w: exactly one of part_id, equipment_id or labor_rate is required", ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	var profile *model.LaborRateProfile
	if input.LaborRate != nil {
		active, err := s.catalog.GetActiveLaborRates(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: no active labor rate profile", ErrNotFound)
			}
			return nil, err
		}
		profile = active
	}

	editor := NewEditor(nil, profile)
	line := editor.Items()[0]
	if err := editor.SetQuantity(line.ID, input.Quantity); err != nil {
		return nil, err
	}

	switch {
	case input.PartID != nil:
		part, err := s.catalog.GetPart(ctx, *input.PartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: part %s", ErrNotFound, *input.PartID)
			}
			return nil, err
		}
		if err := editor.ApplyPart(line.ID, *part); err != nil {
			return nil, err
		}
	case input.EquipmentID != nil:
		unit, err := s.catalog.GetEquipment(ctx, *input.EquipmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: equipment %s", ErrNotFound, *input.EquipmentID)
			}
			return nil, err
		}
		if err := editor.ApplyEquipment(line.ID, *unit); err != nil {
			return nil, err
		}
	default:
		if err := editor.ApplyLaborRate(line.ID, *input.LaborRate); err != nil {
			return nil, err
		}
	}

	priced := editor.Items()[0]
	return &priced, nil
}

func (s *EstimateService) Create(ctx context.Context, input CreateEstimateInput) (*model.Estimate, error) {
	if !input.Principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if input.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.JobTitle) == "" {
		return nil, fmt.Errorf("%w: job_title is required", ErrInvalidInput)
	}

	if _, err := s.catalog.GetCustomer(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, input.CustomerID)
		}
		return nil, err
	}

	taxRate := s.cfg.Estimates.DefaultTaxRate
	if input.TaxRate != nil {
		if *input.TaxRate < 0 {
			return nil, fmt.Errorf("%w: tax_rate must not be negative", ErrInvalidInput)
		}
		taxRate = *input.TaxRate
	}

	estimateDate := dateOnly(input.EstimateDate)
	if estimateDate.IsZero() {
		estimateDate = dateOnly(time.Now().UTC())
	}
	expiresAt := estimateDate.AddDate(0, 0, s.cfg.Estimates.ExpiryDays)

	number, err := s.estimates.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	items := buildLineItems(input.Items)
	totals := ComputeTotals(items, taxRate)

	createdBy := input.Principal.UserID
	estimate := &model.Estimate{
		Number:        number,
		CustomerID:    input.CustomerID,
		JobTitle:      strings.TrimSpace(input.JobTitle),
		Description:   input.Description,
		SiteLocation:  input.SiteLocation,
		Status:        model.EstimateStatusDraft,
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.Discount,
		TaxRate:       taxRate,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		EstimateDate:  estimateDate,
		ExpiresAt:     &expiresAt,
		Notes:         input.Notes,
		Terms:         input.Terms,
		CreatedBy:     &createdBy,
	}

	if err := s.estimates.Create(ctx, estimate, items); err != nil {
		return nil, err
	}
	return s.Get(ctx, estimate.ID)
}

// Save persists the estimate header with freshly computed totals and replaces
// every line item: existing lines are deleted and the submitted ones
// re-inserted in order, renumbered from zero, blank descriptions dropped. The
// whole replace runs in one transaction, so a failure at any step leaves the
// stored estimate untouched.
func (s *EstimateService) Save(ctx context.Context, input SaveEstimateInput) (*SaveResult, error) {
	if !input.Principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if input.TaxRate < 0 {
		return nil, fmt.Errorf("%w: tax_rate must not be negative", ErrInvalidInput)
	}

	current, err := s.Get(ctx, input.EstimateID)
	if err != nil {
		return nil, err
	}
	if current.Status == model.EstimateStatusConverted {
		return nil, fmt.Errorf("%w: converted estimates are read-only", ErrConflict)
	}

	items := buildLineItems(input.Items)
	kept := make([]model.EstimateLineItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			continue
		}
		item.LineOrder = len(kept)
		if item.Type == model.LineItemTypeLabor {
			hours := item.Quantity
			rate := item.UnitPrice
			item.LaborHours = &hours
			item.LaborRate = &rate
		} else {
			item.LaborHours = nil
			item.LaborRate = nil
		}
		kept = append(kept, item)
	}

	totals := ComputeTotals(kept, input.TaxRate)

	customerID := input.CustomerID
	if customerID == uuid.Nil {
		customerID = current.CustomerID
	}

	estimate := &model.Estimate{
		ID:            input.EstimateID,
		CustomerID:    customerID,
		JobTitle:      strings.TrimSpace(input.JobTitle),
		Description:   input.Description,
		SiteLocation:  input.SiteLocation,
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.Discount,
		TaxRate:       input.TaxRate,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		EstimateDate:  dateOnly(input.EstimateDate),
		ExpiresAt:     input.ExpiresAt,
		Notes:         input.Notes,
		Terms:         input.Terms,
	}
	if estimate.JobTitle == "" {
		estimate.JobTitle = current.JobTitle
	}
	if estimate.EstimateDate.IsZero() {
		estimate.EstimateDate = current.EstimateDate
	}

	if err := s.estimates.Save(ctx, estimate, kept); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	saved, err := s.Get(ctx, input.EstimateID)
	if err != nil {
		return nil, err
	}

	result := &SaveResult{Estimate: saved}
	if len(kept) == 0 && len(input.Items) > 0 {
		result.Warning = "all line items had blank descriptions; estimate saved with no line items"
	}
	return result, nil
}

func (s *EstimateService) MarkSent(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Estimate, error) {
	return s.transition(ctx, id, principal, model.EstimateStatusSent, "sent_at")
}

func (s *EstimateService) MarkViewed(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Estimate, error) {
	return s.transition(ctx, id, principal, model.EstimateStatusViewed, "viewed_at")
}

func (s *EstimateService) Accept(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Estimate, error) {
	return s.transition(ctx, id, principal, model.EstimateStatusAccepted, "accepted_at")
}

func (s *EstimateService) Reject(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Estimate, error) {
	return s.transition(ctx, id, principal, model.EstimateStatusRejected, "rejected_at")
}

func (s *EstimateService) transition(
	ctx context.Context,
	id uuid.UUID,
	principal model.Principal,
	to model.EstimateStatus,
	stampColumn string,
) (*model.Estimate, error) {
	if !principal.CanManage() {
		return nil, ErrPermissionDenied
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateEstimateTransition(current.Status, to); err != nil {
		return nil, err
	}

	stamps := map[string]interface{}{stampColumn: time.Now().UTC()}
	if err := s.estimates.SetStatus(ctx, id, current.Status, to, stamps); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrConflict)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Convert turns an accepted estimate into a ticket or project. The dependent
// record is seeded from the estimate's job title, description, customer and
// total; the estimate is stamped converted with a back-reference in the same
// transaction. A second conversion attempt fails with ErrAlreadyConverted.
func (s *EstimateService) Convert(ctx context.Context, input ConvertInput) (*ConvertResult, error) {
	if !input.Principal.CanManage() {
		return nil, ErrPermissionDenied
	}

	estimate, err := s.Get(ctx, input.EstimateID)
	if err != nil {
		return nil, err
	}
	if estimate.IsConverted() {
		return nil, ErrAlreadyConverted
	}
	if err := ValidateEstimateTransition(estimate.Status, model.EstimateStatusConverted); err != nil {
		return nil, err
	}

	estimateID := estimate.ID
	switch input.Target {
	case ConvertTargetTicket:
		ticket := &model.Ticket{
			CustomerID:   estimate.CustomerID,
			Title:        estimate.JobTitle,
			Description:  estimate.Description,
			SiteLocation: estimate.SiteLocation,
			Status:       model.TicketStatusOpen,
			Priority:     model.TicketPriorityNormal,
			EstimateID:   &estimateID,
			QuotedTotal:  estimate.Total,
		}
		if err := s.estimates.ConvertToTicket(ctx, estimate, ticket); err != nil {
			if errors.Is(err, repository.ErrConversionConflict) {
				return nil, ErrAlreadyConverted
			}
			return nil, err
		}
		converted, err := s.Get(ctx, estimate.ID)
		if err != nil {
			return nil, err
		}
		ticketID := ticket.ID
		return &ConvertResult{Estimate: converted, TicketID: &ticketID}, nil

	case ConvertTargetProject:
		project := &model.Project{
			CustomerID:  estimate.CustomerID,
			Name:        estimate.JobTitle,
			Description: estimate.Description,
			Status:      model.ProjectStatusPlanned,
			Budget:      estimate.Total,
			EstimateID:  &estimateID,
		}
		if err := s.estimates.ConvertToProject(ctx, estimate, project); err != nil {
			if errors.Is(err, repository.ErrConversionConflict) {
				return nil, ErrAlreadyConverted
			}
			return nil, err
		}
		converted, err := s.Get(ctx, estimate.ID)
		if err != nil {
			return nil, err
		}
		projectID := project.ID
		return &ConvertResult{Estimate: converted, ProjectID: &projectID}, nil

	default:
		return nil, fmt.Errorf("%w: unknown conversion target %q", ErrInvalidInput, input.Target)
	}
}

// RenderPDF produces the customer-facing quotation document.
func (s *EstimateService) RenderPDF(ctx context.Context, id uuid.UUID) (*DocumentResult, error) {
	estimate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(*estimate)
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(estimate.Number)
	if name == "" {
		name = estimate.ID.String()
	}
	return &DocumentResult{
		FileName: fmt.Sprintf("estimate-%s.pdf", name),
		Content:  content,
	}, nil
}

type ExportRegisterInput struct {
	Status    *model.EstimateStatus
	From      *time.Time
	To        *time.Time
	Principal model.Principal
}

// ExportRegister renders the estimate register workbook for the given filter.
func (s *EstimateService) ExportRegister(ctx context.Context, input ExportRegisterInput) (*DocumentResult, error) {
	if !input.Principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if input.From != nil && input.To != nil && input.From.After(*input.To) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}

	estimates, err := s.estimates.List(ctx, repository.EstimateFilter{
		Status: input.Status,
		From:   input.From,
		To:     input.To,
	})
	if err != nil {
		return nil, err
	}

	register := model.EstimateRegister{
		From:      input.From,
		To:        input.To,
		Estimates: estimates,
	}
	content, err := s.excel.Generate(register)
	if err != nil {
		return nil, err
	}

	return &DocumentResult{
		FileName: buildRegisterFileName(input.From, input.To),
		Content:  content,
	}, nil
}

func buildRegisterFileName(from, to *time.Time) string {
	period := "all"
	if from != nil && to != nil {
		period = fmt.Sprintf("%s-%s", from.Format("20060102"), to.Format("20060102"))
	}
	return fmt.Sprintf("estimates-%s.xlsx", period)
}

func buildLineItems(inputs []LineItemInput) []model.EstimateLineItem {
	items := make([]model.EstimateLineItem, 0, len(inputs))
	for i, input := range inputs {
		itemType := input.Type
		if itemType == "" {
			itemType = model.LineItemTypeLabor
		}
		items = append(items, model.EstimateLineItem{
			ID:          uuid.New(),
			LineOrder:   i,
			Type:        itemType,
			Description: input.Description,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			LineTotal:   LineTotal(itemType, input.Quantity, input.UnitPrice),
			PartID:      input.PartID,
			EquipmentID: input.EquipmentID,
		})
	}
	return items
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
