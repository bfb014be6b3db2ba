package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/freight-market/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a single contract offer sheet.
func (g *Generator) Generate(doc model.OfferDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	c := doc.Contract

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(safeValue(c.Title)), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contract %s, region %s, week of %s", c.ID, doc.Region, formatDate(doc.WeekStart))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, "Issuer")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s (%s)", safeValue(c.Issuer.Name), c.Issuer.Kind)), "", "L", false)
	if strings.TrimSpace(c.Description) != "" {
		pdf.MultiCell(0, 5, tr(c.Description), "", "L", false)
	}
	pdf.Ln(2)

	section(pdf, g.fontName, "Requirements")
	req := c.Requirements
	widths := []float64{60, 120}
	rows := [][]string{
		{"Cargo", fmt.Sprintf("%s - %s", req.CargoKind, safeValue(req.CargoDescription))},
		{"Trailer", req.TrailerKind},
		{"Duration", fmt.Sprintf("%d months, %s", req.DurationMonths, req.Frequency)},
		{"Fleet", fmt.Sprintf("%d trucks, %d trailers", req.Equipment.Trucks, req.Equipment.Trailers)},
		{"Drivers", fmt.Sprintf("%d", req.DriverCount)},
		{"Licenses", strings.Join(req.Licenses, ", ")},
		{"Insurance minimum", formatAmount(req.InsuranceMinimum, c.Currency)},
	}
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, tr, row, widths, false)
	}
	pdf.Ln(2)

	section(pdf, g.fontName, "Financial estimate")
	fin := c.Financial
	headers := []string{"Item", "Per operation", "Total"}
	colWidths := []float64{60, 60, 60}
	drawTableRow(pdf, g.fontName, tr, headers, colWidths, true)
	ops := float64(fin.TotalOperations)
	costs := []struct {
		label string
		value float64
	}{
		{"Fuel", fin.Costs.Fuel},
		{"Maintenance", fin.Costs.Maintenance},
		{"Insurance", fin.Costs.Insurance},
		{"Driver salaries", fin.Costs.DriverSalaries},
		{"Trailer depreciation", fin.Costs.TrailerDepreciation},
		{"Administrative", fin.Costs.Administrative},
	}
	for _, item := range costs {
		drawTableRow(pdf, g.fontName, tr, []string{
			item.label,
			formatAmount(item.value, c.Currency),
			formatAmount(item.value*ops, c.Currency),
		}, colWidths, false)
	}
	drawTableRow(pdf, g.fontName, tr, []string{
		"Total costs",
		formatAmount(fin.CostPerOperation, c.Currency),
		formatAmount(fin.TotalCosts, c.Currency),
	}, colWidths, true)

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 10)
	summary := []string{
		fmt.Sprintf("Revenue: %s over %d operations", formatAmount(fin.TotalRevenue, c.Currency), fin.TotalOperations),
		fmt.Sprintf("Estimated profit: %s (%.1f%%)", formatAmount(fin.EstimatedProfit, c.Currency), fin.ProfitMargin),
		fmt.Sprintf("Monthly: %s revenue, %s costs. Daily rate %s",
			formatAmount(fin.MonthlyRevenue, c.Currency),
			formatAmount(fin.MonthlyCosts, c.Currency),
			formatAmount(fin.DailyRate, c.Currency),
		),
	}
	for _, line := range summary {
		pdf.CellFormat(0, 6, tr(line), "", 1, "R", false, 0, "")
	}
	if fin.Fallback {
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, "Note: detailed costs were unavailable, figures use the standard cost ratio.", "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	section(pdf, g.fontName, "Competition")
	pdf.SetFont(g.fontName, "", 10)
	comp := c.Competition
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Budget: %s", formatAmount(c.Budget, c.Currency))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Status: %s, %d participants, closes %s", comp.Status, comp.Participants, formatDateTime(comp.EndTime))), "", 1, "L", false, 0, "")
	best := "none"
	if comp.CurrentBestBid != nil {
		best = formatAmount(*comp.CurrentBestBid, c.Currency)
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Current best bid: %s", best)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 && len(cols) > 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, currency string) string {
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", value, currency))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04 MST")
}
