package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/fieldserve/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the customer-facing quotation document for an estimate.
// The estimate must carry its customer and ordered line items.
func (g *Generator) Generate(estimate model.Estimate) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "ESTIMATE", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Estimate %s, %s", estimate.Number, formatDate(estimate.EstimateDate)), "", 1, "C", false, 0, "")
	if estimate.ExpiresAt != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Valid until %s", formatDate(*estimate.ExpiresAt)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if estimate.Customer != nil {
		addCustomerBlock(pdf, g.fontName, *estimate.Customer)
		pdf.Ln(2)
	}

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, estimate.JobTitle, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	if estimate.Description != "" {
		pdf.MultiCell(0, 5, estimate.Description, "", "L", false)
	}
	if estimate.SiteLocation != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Site: %s", estimate.SiteLocation), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	g.writeItemsTable(pdf, estimate.Items)
	pdf.Ln(2)
	g.writeTotals(pdf, estimate)

	if estimate.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 9)
		pdf.MultiCell(0, 4.5, estimate.Notes, "", "L", false)
	}
	if estimate.Terms != "" {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 10)
		pdf.CellFormat(0, 6, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 9)
		pdf.MultiCell(0, 4.5, estimate.Terms, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeItemsTable(pdf *gofpdf.Fpdf, items []model.EstimateLineItem) {
	widths := []float64{12, 24, 84, 18, 22, 20}
	headers := []string{"#", "Type", "Description", "Qty", "Unit", "Total"}

	pdf.SetFont(g.fontName, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 9)
	for i, item := range items {
		align := "R"
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, lineTypeLabel(item.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, truncate(item.Description, 52), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, formatQuantity(item.Quantity), "1", 0, align, false, 0, "")
		pdf.CellFormat(widths[4], 6, formatMoney(item.UnitPrice), "1", 0, align, false, 0, "")
		pdf.CellFormat(widths[5], 6, formatMoney(item.LineTotal), "1", 0, align, false, 0, "")
		pdf.Ln(-1)
	}
}

func (g *Generator) writeTotals(pdf *gofpdf.Fpdf, estimate model.Estimate) {
	rows := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal", formatMoney(estimate.Subtotal), false},
		{"Discount", "-" + formatMoney(estimate.DiscountTotal), false},
		{fmt.Sprintf("Tax (%.2f%%)", estimate.TaxRate), formatMoney(estimate.TaxAmount), false},
		{"Total", formatMoney(estimate.Total), true},
	}

	for _, row := range rows {
		if estimate.DiscountTotal == 0 && row.label == "Discount" {
			continue
		}
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont(g.fontName, style, 10)
		pdf.CellFormat(140, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, row.value, "", 1, "R", false, 0, "")
	}
}

func addCustomerBlock(pdf *gofpdf.Fpdf, fontName string, customer model.Customer) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(0, 6, "Prepared for", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 5, customer.Name, "", 1, "L", false, 0, "")
	if customer.ContactName != "" {
		pdf.CellFormat(0, 5, customer.ContactName, "", 1, "L", false, 0, "")
	}
	if customer.SiteAddress != "" {
		pdf.CellFormat(0, 5, customer.SiteAddress, "", 1, "L", false, 0, "")
	}
	contact := strings.TrimSpace(strings.Join(nonEmpty(customer.Phone, customer.Email), " / "))
	if contact != "" {
		pdf.CellFormat(0, 5, contact, "", 1, "L", false, 0, "")
	}
}

func lineTypeLabel(itemType model.LineItemType) string {
	switch itemType {
	case model.LineItemTypeLabor:
		return "Labor"
	case model.LineItemTypeParts:
		return "Parts"
	case model.LineItemTypeEquipment:
		return "Equipment"
	case model.LineItemTypeDiscount:
		return "Discount"
	default:
		return "Other"
	}
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatQuantity(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func nonEmpty(values ...string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			result = append(result, v)
		}
	}
	return result
}
