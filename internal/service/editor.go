package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/fieldserve/internal/model"
)

// Editor holds the ordered line items of an estimate while it is being edited.
// Every mutation is local and synchronous; nothing touches the database until
// the estimate is saved. The list never drops below one item.
type Editor struct {
	items   []model.EstimateLineItem
	profile *model.LaborRateProfile
}

// NewEditor starts an editing session over the given items. An empty list is
// seeded with one default labor line so the floor-of-one invariant holds from
// the start. The labor rate profile may be nil; ApplyLaborRate then fails.
func NewEditor(items []model.EstimateLineItem, profile *model.LaborRateProfile) *Editor {
	e := &Editor{
		items:   append([]model.EstimateLineItem(nil), items...),
		profile: profile,
	}
	if len(e.items) == 0 {
		e.Add()
	}
	return e
}

// Items returns the current line items in order.
func (e *Editor) Items() []model.EstimateLineItem {
	return e.items
}

// Add appends a fresh line item: type labor, quantity 1, zero price and total.
func (e *Editor) Add() model.EstimateLineItem {
	item := model.EstimateLineItem{
		ID:        uuid.New(),
		LineOrder: len(e.items),
		Type:      model.LineItemTypeLabor,
		Quantity:  1,
	}
	e.items = append(e.items, item)
	return item
}

// Remove deletes the item unless it is the last one remaining; removing the
// last item is a no-op. Returns whether the item was removed.
func (e *Editor) Remove(itemID uuid.UUID) bool {
	if len(e.items) <= 1 {
		return false
	}
	for i := range e.items {
		if e.items[i].ID == itemID {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Editor) SetType(itemID uuid.UUID, itemType model.LineItemType) error {
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.Type = itemType
	item.LineTotal = LineTotal(item.Type, item.Quantity, item.UnitPrice)
	return nil
}

func (e *Editor) SetDescription(itemID uuid.UUID, description string) error {
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.Description = description
	return nil
}

func (e *Editor) SetQuantity(itemID uuid.UUID, quantity float64) error {
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	item.LineTotal = LineTotal(item.Type, item.Quantity, item.UnitPrice)
	return nil
}

func (e *Editor) SetUnitPrice(itemID uuid.UUID, unitPrice float64) error {
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.UnitPrice = unitPrice
	item.LineTotal = LineTotal(item.Type, item.Quantity, item.UnitPrice)
	return nil
}

// ApplyLaborRate prices the line from the active labor rate profile:
// description, unit price and labor rate are overwritten and the total
// recomputed against the current quantity.
func (e *Editor) ApplyLaborRate(itemID uuid.UUID, key model.LaborRateKey) error {
	if e.profile == nil {
		return fmt.Errorf("%w: no active labor rate profile", ErrInvalidInput)
	}
	rate, label, ok := e.profile.Rate(key)
	if !ok {
		return fmt.Errorf("%w: unknown labor rate %q", ErrInvalidInput, key)
	}
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.Type = model.LineItemTypeLabor
	item.Description = label
	item.UnitPrice = rate
	item.LaborRate = &rate
	item.LineTotal = LineTotal(item.Type, item.Quantity, item.UnitPrice)
	return nil
}

// ApplyPart prices the line from a catalog part.
func (e *Editor) ApplyPart(itemID uuid.UUID, part model.Part) error {
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.Type = model.LineItemTypeParts
	item.Description = part.Name
	item.UnitPrice = part.UnitPrice
	partID := part.ID
	item.PartID = &partID
	item.LaborRate = nil
	item.LineTotal = LineTotal(item.Type, item.Quantity, item.UnitPrice)
	return nil
}

// ApplyEquipment references an equipment unit on the line. Equipment lines
// carry no direct charge: unit price and line total are forced to zero, and
// the work itself is billed through labor and parts lines.
func (e *Editor) ApplyEquipment(itemID uuid.UUID, equipment model.Equipment) error {
	item, err := e.find(itemID)
	if err != nil {
		return err
	}
	item.Type = model.LineItemTypeEquipment
	item.Description = equipment.Name
	item.UnitPrice = 0
	item.LineTotal = 0
	equipmentID := equipment.ID
	item.EquipmentID = &equipmentID
	item.LaborRate = nil
	return nil
}

// Totals computes the current money breakdown for live display.
func (e *Editor) Totals(taxRate float64) Totals {
	return ComputeTotals(e.items, taxRate)
}

func (e *Editor) find(itemID uuid.UUID) (*model.EstimateLineItem, error) {
	for i := range e.items {
		if e.items[i].ID == itemID {
			return &e.items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: line item %s", ErrNotFound, itemID)
}
