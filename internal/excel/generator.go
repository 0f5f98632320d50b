package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/fieldserve/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

var statusOrder = []model.EstimateStatus{
	model.EstimateStatusDraft,
	model.EstimateStatusSent,
	model.EstimateStatusViewed,
	model.EstimateStatusAccepted,
	model.EstimateStatusRejected,
	model.EstimateStatusConverted,
}

// Generate renders the estimate register workbook: a summary sheet with
// per-status counts and amounts, then one detail sheet per status that has
// estimates.
func (g *Generator) Generate(register model.EstimateRegister) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, register); err != nil {
		return nil, err
	}

	byStatus := make(map[model.EstimateStatus][]model.Estimate)
	for _, estimate := range register.Estimates {
		byStatus[estimate.Status] = append(byStatus[estimate.Status], estimate)
	}
	for _, status := range statusOrder {
		estimates := byStatus[status]
		if len(estimates) == 0 {
			continue
		}
		sheetName := sheetLabel(status)
		file.NewSheet(sheetName)
		if err := g.writeDetail(file, sheetName, estimates); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, register model.EstimateRegister) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Estimate register")
	set("A2", "Period start")
	set("B2", formatOptionalDate(register.From))
	set("A3", "Period end")
	set("B3", formatOptionalDate(register.To))
	set("A4", "Estimates")
	set("B4", len(register.Estimates))

	set("A6", "Status")
	set("B6", "Count")
	set("C6", "Total amount")

	counts := make(map[model.EstimateStatus]int)
	amounts := make(map[model.EstimateStatus]float64)
	var grandTotal float64
	for _, estimate := range register.Estimates {
		counts[estimate.Status]++
		amounts[estimate.Status] += estimate.Total
		grandTotal += estimate.Total
	}

	row := 7
	for _, status := range statusOrder {
		if counts[status] == 0 {
			continue
		}
		set(fmt.Sprintf("A%d", row), sheetLabel(status))
		set(fmt.Sprintf("B%d", row), counts[status])
		set(fmt.Sprintf("C%d", row), amounts[status])
		row++
	}
	set(fmt.Sprintf("A%d", row+1), "Grand total")
	set(fmt.Sprintf("C%d", row+1), grandTotal)

	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, estimates []model.Estimate) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Number", "Date", "Job title", "Subtotal", "Discount", "Tax", "Total"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, estimate := range estimates {
		row := i + 2
		set(fmt.Sprintf("A%d", row), estimate.Number)
		set(fmt.Sprintf("B%d", row), estimate.EstimateDate.Format("2006-01-02"))
		set(fmt.Sprintf("C%d", row), estimate.JobTitle)
		set(fmt.Sprintf("D%d", row), estimate.Subtotal)
		set(fmt.Sprintf("E%d", row), estimate.DiscountTotal)
		set(fmt.Sprintf("F%d", row), estimate.TaxAmount)
		set(fmt.Sprintf("G%d", row), estimate.Total)
	}
	return nil
}

func sheetLabel(status model.EstimateStatus) string {
	switch status {
	case model.EstimateStatusDraft:
		return "Draft"
	case model.EstimateStatusSent:
		return "Sent"
	case model.EstimateStatusViewed:
		return "Viewed"
	case model.EstimateStatusAccepted:
		return "Accepted"
	case model.EstimateStatusRejected:
		return "Rejected"
	case model.EstimateStatusConverted:
		return "Converted"
	default:
		return string(status)
	}
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
