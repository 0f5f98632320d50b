package service

import (
	"math"

	"github.com/nurpe/fieldserve/internal/model"
)

// Totals is the money breakdown of an estimate, derived entirely from its line
// items and tax rate. It can be recomputed from stored rows at any time and
// must match what was persisted at save.
type Totals struct {
	Subtotal  float64
	Discount  float64
	TaxAmount float64
	Total     float64
}

// LineTotal computes quantity * unit price rounded to cents. Discount lines
// store a negative total; the magnitude comes from the same product.
func LineTotal(itemType model.LineItemType, quantity, unitPrice float64) float64 {
	amount := round2(quantity * unitPrice)
	if itemType == model.LineItemTypeDiscount {
		return -math.Abs(amount)
	}
	return amount
}

// ComputeTotals aggregates line items into subtotal, discount, tax and total.
// Discount lines contribute nothing to the subtotal; their absolute value is
// subtracted before tax. tax = (subtotal - discount) * rate/100.
func ComputeTotals(items []model.EstimateLineItem, taxRate float64) Totals {
	var subtotal, discount float64
	for _, item := range items {
		if item.Type == model.LineItemTypeDiscount {
			discount += math.Abs(item.LineTotal)
			continue
		}
		subtotal += item.LineTotal
	}
	subtotal = round2(subtotal)
	discount = round2(discount)

	taxable := subtotal - discount
	taxAmount := round2(taxable * taxRate / 100)

	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		TaxAmount: taxAmount,
		Total:     round2(taxable + taxAmount),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
