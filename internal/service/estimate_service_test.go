package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/config"
	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&model.Customer{},
		&model.Estimate{},
		&model.EstimateLineItem{},
		&model.Ticket{},
		&model.TicketPhoto{},
		&model.Project{},
		&model.Part{},
		&model.Equipment{},
		&model.LaborRateProfile{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB) model.Customer {
	t.Helper()
	customer := model.Customer{Name: "Acme Mechanical", Phone: "555-0100"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

type stubPDF struct{}

func (stubPDF) Generate(model.Estimate) ([]byte, error) { return []byte("%PDF-stub"), nil }

type stubExcel struct{}

func (stubExcel) Generate(model.EstimateRegister) ([]byte, error) { return []byte("xlsx-stub"), nil }

func newEstimateService(db *gorm.DB) *EstimateService {
	cfg := &config.Config{
		Estimates: config.EstimatesConfig{DefaultTaxRate: 8.25, ExpiryDays: 30},
	}
	return NewEstimateService(
		repository.NewEstimateRepository(db),
		repository.NewCatalogRepository(db),
		stubPDF{},
		stubExcel{},
		cfg,
	)
}

func dispatcher() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleDispatcher, FullName: "Dana Dispatcher"}
}

func technician() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleTechnician, FullName: "Terry Tech"}
}

func createDraft(t *testing.T, svc *EstimateService, customerID uuid.UUID, items []LineItemInput) *model.Estimate {
	t.Helper()
	estimate, err := svc.Create(context.Background(), CreateEstimateInput{
		CustomerID: customerID,
		JobTitle:   "Replace condenser",
		Items:      items,
		Principal:  dispatcher(),
	})
	if err != nil {
		t.Fatalf("create estimate: %v", err)
	}
	return estimate
}

func TestEstimateCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)

	estimate := createDraft(t, svc, customer.ID, []LineItemInput{
		{Type: model.LineItemTypeLabor, Description: "Install", Quantity: 2, UnitPrice: 100},
	})

	if estimate.Status != model.EstimateStatusDraft {
		t.Errorf("status = %v, want draft", estimate.Status)
	}
	if estimate.Number == "" || estimate.Number[:4] != "EST-" {
		t.Errorf("number = %q, want EST- prefix", estimate.Number)
	}
	if estimate.TaxRate != 8.25 {
		t.Errorf("tax rate = %v, want config default 8.25", estimate.TaxRate)
	}
	if estimate.ExpiresAt == nil {
		t.Error("expires_at should be derived from the expiry-days config")
	}
	if !almostEqual(estimate.Subtotal, 200) {
		t.Errorf("subtotal = %v, want 200", estimate.Subtotal)
	}
	if len(estimate.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(estimate.Items))
	}
}

func TestEstimateCreateRequiresManager(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)

	_, err := svc.Create(context.Background(), CreateEstimateInput{
		CustomerID: customer.ID,
		JobTitle:   "Job",
		Principal:  technician(),
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestEstimateSaveReplacesLines(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)
	ctx := context.Background()

	estimate := createDraft(t, svc, customer.ID, []LineItemInput{
		{Type: model.LineItemTypeLabor, Description: "Old line", Quantity: 1, UnitPrice: 50},
		{Type: model.LineItemTypeParts, Description: "Old part", Quantity: 1, UnitPrice: 10},
	})

	result, err := svc.Save(ctx, SaveEstimateInput{
		EstimateID: estimate.ID,
		JobTitle:   "Replace condenser and coil",
		TaxRate:    10,
		Items: []LineItemInput{
			{Type: model.LineItemTypeLabor, Description: "Labor - Standard Rate", Quantity: 2, UnitPrice: 100},
			{Type: model.LineItemTypeOther, Description: "   ", Quantity: 1, UnitPrice: 999},
			{Type: model.LineItemTypeDiscount, Description: "Returning customer", Quantity: 1, UnitPrice: 20},
		},
		Principal: dispatcher(),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning %q", result.Warning)
	}

	saved := result.Estimate
	if len(saved.Items) != 2 {
		t.Fatalf("expected 2 items after blank filter, got %d", len(saved.Items))
	}
	for i, item := range saved.Items {
		if item.LineOrder != i {
			t.Errorf("item %d has line_order %d, want sequential from zero", i, item.LineOrder)
		}
	}

	labor := saved.Items[0]
	if labor.LaborHours == nil || *labor.LaborHours != 2 {
		t.Errorf("labor hours = %v, want 2 (derived from quantity)", labor.LaborHours)
	}
	if labor.LaborRate == nil || *labor.LaborRate != 100 {
		t.Errorf("labor rate = %v, want 100 (derived from unit price)", labor.LaborRate)
	}
	discount := saved.Items[1]
	if discount.LaborHours != nil || discount.LaborRate != nil {
		t.Error("non-labor lines must not carry labor hours/rate")
	}
	if !almostEqual(discount.LineTotal, -20) {
		t.Errorf("discount line total = %v, want -20", discount.LineTotal)
	}

	if !almostEqual(saved.Subtotal, 200) || !almostEqual(saved.DiscountTotal, 20) ||
		!almostEqual(saved.TaxAmount, 18) || !almostEqual(saved.Total, 198) {
		t.Errorf("totals = %v/%v/%v/%v, want 200/20/18/198",
			saved.Subtotal, saved.DiscountTotal, saved.TaxAmount, saved.Total)
	}

	// the old lines are gone, not orphaned
	var count int64
	if err := db.Model(&model.EstimateLineItem{}).Where("estimate_id = ?", estimate.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("stored line items = %d, want 2", count)
	}
}

func TestEstimateSaveAllBlankWarns(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)

	estimate := createDraft(t, svc, customer.ID, []LineItemInput{
		{Type: model.LineItemTypeLabor, Description: "Line", Quantity: 1, UnitPrice: 50},
	})

	result, err := svc.Save(context.Background(), SaveEstimateInput{
		EstimateID: estimate.ID,
		TaxRate:    10,
		Items: []LineItemInput{
			{Type: model.LineItemTypeLabor, Description: "", Quantity: 1, UnitPrice: 50},
			{Type: model.LineItemTypeParts, Description: "  ", Quantity: 2, UnitPrice: 5},
		},
		Principal: dispatcher(),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Warning == "" {
		t.Fatal("all-blank save must surface a warning, not silent success")
	}
	if len(result.Estimate.Items) != 0 {
		t.Fatalf("expected zero stored items, got %d", len(result.Estimate.Items))
	}
	if !almostEqual(result.Estimate.Total, 0) {
		t.Errorf("total = %v, want 0", result.Estimate.Total)
	}
}

func TestEstimateTransitions(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)
	ctx := context.Background()
	principal := dispatcher()

	estimate := createDraft(t, svc, customer.ID, nil)

	// draft -> accept is illegal
	if _, err := svc.Accept(ctx, estimate.ID, principal); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("draft -> accepted should be illegal, got %v", err)
	}

	sent, err := svc.MarkSent(ctx, estimate.ID, principal)
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if sent.Status != model.EstimateStatusSent || sent.SentAt == nil {
		t.Fatalf("sent stamp missing: %+v", sent.Status)
	}

	// sending twice is illegal
	if _, err := svc.MarkSent(ctx, estimate.ID, principal); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("sent -> sent should be illegal, got %v", err)
	}

	viewed, err := svc.MarkViewed(ctx, estimate.ID, principal)
	if err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	if viewed.ViewedAt == nil {
		t.Fatal("viewed stamp missing")
	}

	accepted, err := svc.Accept(ctx, estimate.ID, principal)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.EstimateStatusAccepted || accepted.AcceptedAt == nil {
		t.Fatal("accepted stamp missing")
	}

	// accepted -> rejected is not in the table
	if _, err := svc.Reject(ctx, estimate.ID, principal); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("accepted -> rejected should be illegal, got %v", err)
	}
}

func TestEstimateConvertToTicket(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)
	ctx := context.Background()
	principal := dispatcher()

	estimate := createDraft(t, svc, customer.ID, []LineItemInput{
		{Type: model.LineItemTypeLabor, Description: "Install", Quantity: 2, UnitPrice: 100},
	})
	if _, err := svc.MarkSent(ctx, estimate.ID, principal); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Accept(ctx, estimate.ID, principal); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Convert(ctx, ConvertInput{
		EstimateID: estimate.ID,
		Target:     ConvertTargetTicket,
		Principal:  principal,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if result.TicketID == nil {
		t.Fatal("expected ticket id")
	}

	converted := result.Estimate
	if converted.Status != model.EstimateStatusConverted {
		t.Errorf("status = %v, want converted", converted.Status)
	}
	if converted.ConvertedToTicketID == nil || *converted.ConvertedToTicketID != *result.TicketID {
		t.Error("back-reference to ticket missing")
	}
	if converted.ConvertedAt == nil {
		t.Error("conversion stamp missing")
	}

	var ticket model.Ticket
	if err := db.First(&ticket, "id = ?", *result.TicketID).Error; err != nil {
		t.Fatalf("load ticket: %v", err)
	}
	if ticket.Title != converted.JobTitle {
		t.Errorf("ticket title = %q, want seeded from job title %q", ticket.Title, converted.JobTitle)
	}
	if ticket.CustomerID != customer.ID {
		t.Error("ticket customer not seeded from estimate")
	}
	if !almostEqual(ticket.QuotedTotal, converted.Total) {
		t.Errorf("quoted total = %v, want %v", ticket.QuotedTotal, converted.Total)
	}
	if ticket.EstimateID == nil || *ticket.EstimateID != converted.ID {
		t.Error("ticket does not reference its estimate")
	}

	// second conversion must be rejected
	_, err = svc.Convert(ctx, ConvertInput{
		EstimateID: estimate.ID,
		Target:     ConvertTargetProject,
		Principal:  principal,
	})
	if !errors.Is(err, ErrAlreadyConverted) {
		t.Fatalf("expected ErrAlreadyConverted, got %v", err)
	}
}

func TestEstimateConvertToProject(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)
	ctx := context.Background()
	principal := dispatcher()

	estimate := createDraft(t, svc, customer.ID, []LineItemInput{
		{Type: model.LineItemTypeLabor, Description: "Build-out", Quantity: 40, UnitPrice: 95},
	})
	if _, err := svc.MarkSent(ctx, estimate.ID, principal); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Accept(ctx, estimate.ID, principal); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Convert(ctx, ConvertInput{
		EstimateID: estimate.ID,
		Target:     ConvertTargetProject,
		Principal:  principal,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if result.ProjectID == nil {
		t.Fatal("expected project id")
	}

	var project model.Project
	if err := db.First(&project, "id = ?", *result.ProjectID).Error; err != nil {
		t.Fatalf("load project: %v", err)
	}
	if project.Status != model.ProjectStatusPlanned {
		t.Errorf("project status = %v, want planned", project.Status)
	}
	if !almostEqual(project.Budget, result.Estimate.Total) {
		t.Errorf("budget = %v, want estimate total %v", project.Budget, result.Estimate.Total)
	}
}

func TestEstimateConvertFromDraftIllegal(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)

	estimate := createDraft(t, svc, customer.ID, nil)
	_, err := svc.Convert(context.Background(), ConvertInput{
		EstimateID: estimate.ID,
		Target:     ConvertTargetTicket,
		Principal:  dispatcher(),
	})
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestEstimateSaveAfterConversionRejected(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)
	ctx := context.Background()
	principal := dispatcher()

	estimate := createDraft(t, svc, customer.ID, []LineItemInput{
		{Type: model.LineItemTypeLabor, Description: "Install", Quantity: 1, UnitPrice: 100},
	})
	if _, err := svc.MarkSent(ctx, estimate.ID, principal); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Accept(ctx, estimate.ID, principal); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Convert(ctx, ConvertInput{EstimateID: estimate.ID, Target: ConvertTargetTicket, Principal: principal}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Save(ctx, SaveEstimateInput{
		EstimateID: estimate.ID,
		TaxRate:    10,
		Items:      []LineItemInput{{Description: "Post-hoc edit", Quantity: 1, UnitPrice: 1}},
		Principal:  principal,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for converted estimate, got %v", err)
	}
}

func TestPriceLine(t *testing.T) {
	db := setupTestDB(t)
	svc := newEstimateService(db)
	ctx := context.Background()

	part := model.Part{SKU: "CAP-45", Name: "Run capacitor 45uF", UnitPrice: 18.75}
	if err := db.Create(&part).Error; err != nil {
		t.Fatal(err)
	}
	profile := model.LaborRateProfile{
		Name: "2026 rates", StandardRate: 95, AfterHoursRate: 142.50, EmergencyRate: 190, Active: true,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatal(err)
	}

	line, err := svc.PriceLine(ctx, PriceLineInput{Quantity: 4, PartID: &part.ID})
	if err != nil {
		t.Fatalf("price part line: %v", err)
	}
	if line.Type != model.LineItemTypeParts || line.Description != part.Name {
		t.Errorf("line = %+v, want parts line named after the part", line)
	}
	if !almostEqual(line.LineTotal, 75) {
		t.Errorf("line total = %v, want 75", line.LineTotal)
	}

	key := model.LaborRateAfterHours
	line, err = svc.PriceLine(ctx, PriceLineInput{Quantity: 3, LaborRate: &key})
	if err != nil {
		t.Fatalf("price labor line: %v", err)
	}
	if line.UnitPrice != 142.50 || !almostEqual(line.LineTotal, 427.50) {
		t.Errorf("labor line = %v/%v, want 142.50/427.50", line.UnitPrice, line.LineTotal)
	}

	// exactly one pricing source
	if _, err := svc.PriceLine(ctx, PriceLineInput{Quantity: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("no source should be invalid, got %v", err)
	}
	if _, err := svc.PriceLine(ctx, PriceLineInput{Quantity: 1, PartID: &part.ID, LaborRate: &key}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("two sources should be invalid, got %v", err)
	}

	missing := uuid.New()
	if _, err := svc.PriceLine(ctx, PriceLineInput{Quantity: 1, PartID: &missing}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown part should be not found, got %v", err)
	}
}

func TestPriceLineEquipmentCarriesNoCharge(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := newEstimateService(db)

	unit := model.Equipment{CustomerID: customer.ID, Name: "RTU-4"}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatal(err)
	}

	line, err := svc.PriceLine(context.Background(), PriceLineInput{Quantity: 1, EquipmentID: &unit.ID})
	if err != nil {
		t.Fatalf("price equipment line: %v", err)
	}
	if line.Type != model.LineItemTypeEquipment {
		t.Errorf("type = %v, want equipment", line.Type)
	}
	if line.UnitPrice != 0 || line.LineTotal != 0 {
		t.Errorf("equipment line must be zero-charge, got %v/%v", line.UnitPrice, line.LineTotal)
	}
}

func TestEstimateGetMissing(t *testing.T) {
	db := setupTestDB(t)
	svc := newEstimateService(db)

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
