package service

import (
	"math"
	"testing"

	"github.com/nurpe/fieldserve/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		name     string
		itemType model.LineItemType
		quantity float64
		price    float64
		want     float64
	}{
		{"labor", model.LineItemTypeLabor, 2, 100, 200},
		{"parts fractional", model.LineItemTypeParts, 1.5, 33.33, 50},
		{"rounding", model.LineItemTypeOther, 3, 0.1, 0.30},
		{"discount is negative", model.LineItemTypeDiscount, 1, 20, -20},
		{"discount from negative price", model.LineItemTypeDiscount, 1, -20, -20},
		{"zero quantity", model.LineItemTypeLabor, 0, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LineTotal(tc.itemType, tc.quantity, tc.price)
			if !almostEqual(got, tc.want) {
				t.Fatalf("LineTotal(%s, %v, %v) = %v, want %v", tc.itemType, tc.quantity, tc.price, got, tc.want)
			}
		})
	}
}

func TestComputeTotalsSpecExample(t *testing.T) {
	// Two labor units at 100 plus a 20 discount at 10% tax.
	items := []model.EstimateLineItem{
		{Type: model.LineItemTypeLabor, Quantity: 2, UnitPrice: 100, LineTotal: 200},
		{Type: model.LineItemTypeDiscount, Quantity: 1, UnitPrice: 20, LineTotal: -20},
	}

	totals := ComputeTotals(items, 10)
	if !almostEqual(totals.Subtotal, 200) {
		t.Errorf("subtotal = %v, want 200", totals.Subtotal)
	}
	if !almostEqual(totals.Discount, 20) {
		t.Errorf("discount = %v, want 20", totals.Discount)
	}
	if !almostEqual(totals.TaxAmount, 18) {
		t.Errorf("tax = %v, want 18", totals.TaxAmount)
	}
	if !almostEqual(totals.Total, 198) {
		t.Errorf("total = %v, want 198", totals.Total)
	}
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name    string
		items   []model.EstimateLineItem
		taxRate float64
		want    Totals
	}{
		{
			name:    "empty",
			items:   nil,
			taxRate: 10,
			want:    Totals{},
		},
		{
			name: "no tax",
			items: []model.EstimateLineItem{
				{Type: model.LineItemTypeParts, LineTotal: 59.97},
			},
			taxRate: 0,
			want:    Totals{Subtotal: 59.97, Total: 59.97},
		},
		{
			name: "discount only",
			items: []model.EstimateLineItem{
				{Type: model.LineItemTypeDiscount, LineTotal: -15},
			},
			taxRate: 8.25,
			want:    Totals{Discount: 15, TaxAmount: -1.24, Total: -16.24},
		},
		{
			name: "mixed types, equipment free",
			items: []model.EstimateLineItem{
				{Type: model.LineItemTypeLabor, LineTotal: 340},
				{Type: model.LineItemTypeParts, LineTotal: 125.50},
				{Type: model.LineItemTypeEquipment, LineTotal: 0},
				{Type: model.LineItemTypeDiscount, LineTotal: -50},
				{Type: model.LineItemTypeOther, LineTotal: 12.25},
			},
			taxRate: 7,
			want:    Totals{Subtotal: 477.75, Discount: 50, TaxAmount: 29.94, Total: 457.69},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.items, tc.taxRate)
			if !almostEqual(got.Subtotal, tc.want.Subtotal) ||
				!almostEqual(got.Discount, tc.want.Discount) ||
				!almostEqual(got.TaxAmount, tc.want.TaxAmount) ||
				!almostEqual(got.Total, tc.want.Total) {
				t.Fatalf("ComputeTotals = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []model.EstimateLineItem{
		{Type: model.LineItemTypeLabor, LineTotal: 123.45},
		{Type: model.LineItemTypeDiscount, LineTotal: -10},
	}
	first := ComputeTotals(items, 9.5)
	second := ComputeTotals(items, 9.5)
	if first != second {
		t.Fatalf("totals not stable: %+v vs %+v", first, second)
	}
	// total identity from the stored parts
	if !almostEqual(first.Total, first.Subtotal-first.Discount+first.TaxAmount) {
		t.Fatalf("total %v != subtotal-discount+tax %v", first.Total, first.Subtotal-first.Discount+first.TaxAmount)
	}
}
