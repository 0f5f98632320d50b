package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/fieldserve/internal/model"
)

func testProfile() *model.LaborRateProfile {
	return &model.LaborRateProfile{
		ID:             uuid.New(),
		Name:           "2026 rates",
		StandardRate:   95,
		AfterHoursRate: 142.50,
		EmergencyRate:  190,
		Active:         true,
	}
}

func TestEditorSeedsOneItem(t *testing.T) {
	e := NewEditor(nil, testProfile())
	items := e.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 seeded item, got %d", len(items))
	}
	if items[0].Type != model.LineItemTypeLabor || items[0].Quantity != 1 {
		t.Fatalf("unexpected seed item: %+v", items[0])
	}
	if items[0].UnitPrice != 0 || items[0].LineTotal != 0 {
		t.Fatalf("seed item should be unpriced: %+v", items[0])
	}
}

func TestEditorQuantityAndPriceRecompute(t *testing.T) {
	e := NewEditor(nil, testProfile())
	id := e.Items()[0].ID

	if err := e.SetUnitPrice(id, 80); err != nil {
		t.Fatalf("SetUnitPrice: %v", err)
	}
	if err := e.SetQuantity(id, 2.5); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	item := e.Items()[0]
	if !almostEqual(item.LineTotal, 200) {
		t.Fatalf("line total = %v, want 200", item.LineTotal)
	}

	if err := e.SetDescription(id, "Diagnostics"); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}
	if e.Items()[0].LineTotal != item.LineTotal {
		t.Fatal("description change must not touch the total")
	}
}

func TestEditorRemoveFloor(t *testing.T) {
	e := NewEditor(nil, testProfile())
	first := e.Items()[0].ID
	second := e.Add().ID

	if !e.Remove(second) {
		t.Fatal("expected removal of second item")
	}
	if e.Remove(first) {
		t.Fatal("removing the last remaining item must be a no-op")
	}
	if len(e.Items()) != 1 {
		t.Fatalf("expected 1 item, got %d", len(e.Items()))
	}
}

func TestEditorRemoveUnknown(t *testing.T) {
	e := NewEditor(nil, testProfile())
	e.Add()
	if e.Remove(uuid.New()) {
		t.Fatal("removing an unknown id must report false")
	}
	if len(e.Items()) != 2 {
		t.Fatalf("expected 2 items, got %d", len(e.Items()))
	}
}

func TestEditorApplyLaborRate(t *testing.T) {
	e := NewEditor(nil, testProfile())
	id := e.Items()[0].ID
	if err := e.SetQuantity(id, 3); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	if err := e.ApplyLaborRate(id, model.LaborRateAfterHours); err != nil {
		t.Fatalf("ApplyLaborRate: %v", err)
	}

	item := e.Items()[0]
	if item.UnitPrice != 142.50 {
		t.Errorf("unit price = %v, want 142.50", item.UnitPrice)
	}
	if item.LaborRate == nil || *item.LaborRate != 142.50 {
		t.Errorf("labor rate = %v, want 142.50", item.LaborRate)
	}
	if item.Description == "" {
		t.Error("description should be overwritten from the rate label")
	}
	if !almostEqual(item.LineTotal, 427.50) {
		t.Errorf("line total = %v, want 427.50", item.LineTotal)
	}
}

func TestEditorApplyLaborRateUnknownKey(t *testing.T) {
	e := NewEditor(nil, testProfile())
	err := e.ApplyLaborRate(e.Items()[0].ID, "weekend")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEditorApplyLaborRateNoProfile(t *testing.T) {
	e := NewEditor(nil, nil)
	err := e.ApplyLaborRate(e.Items()[0].ID, model.LaborRateStandard)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEditorApplyPart(t *testing.T) {
	e := NewEditor(nil, testProfile())
	id := e.Items()[0].ID
	if err := e.SetQuantity(id, 4); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	part := model.Part{ID: uuid.New(), SKU: "CAP-45", Name: "Run capacitor 45uF", UnitPrice: 18.75}
	if err := e.ApplyPart(id, part); err != nil {
		t.Fatalf("ApplyPart: %v", err)
	}

	item := e.Items()[0]
	if item.Type != model.LineItemTypeParts {
		t.Errorf("type = %v, want parts", item.Type)
	}
	if item.Description != part.Name {
		t.Errorf("description = %q, want %q", item.Description, part.Name)
	}
	if item.PartID == nil || *item.PartID != part.ID {
		t.Error("part reference not recorded")
	}
	if !almostEqual(item.LineTotal, 75) {
		t.Errorf("line total = %v, want 75", item.LineTotal)
	}
}

func TestEditorApplyEquipmentZeroPrice(t *testing.T) {
	e := NewEditor(nil, testProfile())
	id := e.Items()[0].ID
	if err := e.SetUnitPrice(id, 500); err != nil {
		t.Fatalf("SetUnitPrice: %v", err)
	}

	unit := model.Equipment{ID: uuid.New(), Name: "Rooftop unit RTU-4"}
	if err := e.ApplyEquipment(id, unit); err != nil {
		t.Fatalf("ApplyEquipment: %v", err)
	}

	item := e.Items()[0]
	if item.UnitPrice != 0 || item.LineTotal != 0 {
		t.Fatalf("equipment lines carry no charge, got price=%v total=%v", item.UnitPrice, item.LineTotal)
	}
	if item.EquipmentID == nil || *item.EquipmentID != unit.ID {
		t.Error("equipment reference not recorded")
	}
}

func TestEditorTotalsLive(t *testing.T) {
	e := NewEditor(nil, testProfile())
	id := e.Items()[0].ID
	if err := e.SetQuantity(id, 2); err != nil {
		t.Fatal(err)
	}
	if err := e.SetUnitPrice(id, 100); err != nil {
		t.Fatal(err)
	}

	discount := e.Add()
	if err := e.SetType(discount.ID, model.LineItemTypeDiscount); err != nil {
		t.Fatal(err)
	}
	if err := e.SetUnitPrice(discount.ID, 20); err != nil {
		t.Fatal(err)
	}

	totals := e.Totals(10)
	if !almostEqual(totals.Total, 198) {
		t.Fatalf("live total = %v, want 198", totals.Total)
	}
}
