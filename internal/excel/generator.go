package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/freight-market/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a weekly board as a workbook: a summary sheet followed by
// one sheet per contract category.
func (g *Generator) Generate(board model.WeeklyBoard) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Summary"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	groups := groupByCategory(board.Batch.Contracts)
	if err := g.writeSummary(file, summarySheet, board, groups); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range groups {
		sheetName := buildSheetName(group.category, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeDetail(file, sheetName, board, group); err != nil {
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

type categoryGroup struct {
	category  string
	contracts []model.ContractJob
}

func groupByCategory(contracts []model.ContractJob) []categoryGroup {
	index := map[string]int{}
	var groups []categoryGroup
	for _, c := range contracts {
		i, ok := index[c.Category]
		if !ok {
			i = len(groups)
			index[c.Category] = i
			groups = append(groups, categoryGroup{category: c.Category})
		}
		groups[i].contracts = append(groups[i].contracts, c)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].category < groups[j].category })
	return groups
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, board model.WeeklyBoard, groups []categoryGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Region")
	set("B1", board.Region)
	set("A2", "Week start")
	set("B2", formatDate(board.WeekStart))
	set("A3", "Generated at")
	set("B3", formatDateTime(board.Batch.GeneratedAt))
	set("A4", "Contracts")
	set("B4", len(board.Batch.Contracts))
	set("A5", "Total value, USD")
	set("B5", formatMoney(sumValue(board.Batch.Contracts)))

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Category")
	set(fmt.Sprintf("B%d", tableRow), "Contracts")
	set(fmt.Sprintf("C%d", tableRow), "Total value, USD")
	set(fmt.Sprintf("D%d", tableRow), "Estimated profit, USD")

	for i, group := range groups {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), group.category)
		set(fmt.Sprintf("B%d", row), len(group.contracts))
		set(fmt.Sprintf("C%d", row), formatMoney(sumValue(group.contracts)))
		set(fmt.Sprintf("D%d", row), formatMoney(sumProfit(group.contracts)))
	}

	_ = file.SetColWidth(sheet, "A", "A", 30)
	_ = file.SetColWidth(sheet, "B", "B", 22)
	_ = file.SetColWidth(sheet, "C", "D", 22)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, board model.WeeklyBoard, group categoryGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Region")
	set("B1", board.Region)
	set("A2", "Category")
	set("B2", group.category)
	set("A3", "Week start")
	set("B3", formatDate(board.WeekStart))

	tableRow := 5
	headers := []string{
		"ID",
		"Title",
		"Issuer",
		"Cargo",
		"Trailer",
		"Frequency",
		"Months",
		"Value",
		"Budget",
		"Total costs",
		"Est. profit",
		"Margin, %",
		"Status",
		"Best bid",
		"Ends",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, c := range group.contracts {
		row := tableRow + 1 + i
		values := []interface{}{
			c.ID,
			c.Title,
			c.Issuer.Name,
			c.Requirements.CargoKind,
			c.Requirements.TrailerKind,
			string(c.Requirements.Frequency),
			c.Requirements.DurationMonths,
			formatMoney(c.Value),
			formatMoney(c.Budget),
			formatMoney(c.Financial.TotalCosts),
			formatMoney(c.Financial.EstimatedProfit),
			fmt.Sprintf("%.1f", c.Financial.ProfitMargin),
			string(c.Competition.Status),
			formatBid(c.Competition.CurrentBestBid),
			formatDateTime(c.Competition.EndTime),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			set(cell, value)
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 38)
	_ = file.SetColWidth(sheet, "B", "C", 32)
	_ = file.SetColWidth(sheet, "D", "F", 16)
	_ = file.SetColWidth(sheet, "G", "G", 8)
	_ = file.SetColWidth(sheet, "H", "N", 14)
	_ = file.SetColWidth(sheet, "O", "O", 20)
	return nil
}

func buildSheetName(category string, used map[string]struct{}) string {
	base := sanitizeSheetName(category)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Contracts"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Contracts"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func formatMoney(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatBid(value *float64) string {
	if value == nil {
		return ""
	}
	return formatMoney(*value)
}

func sumValue(contracts []model.ContractJob) float64 {
	total := 0.0
	for _, c := range contracts {
		total += c.Value
	}
	return total
}

func sumProfit(contracts []model.ContractJob) float64 {
	total := 0.0
	for _, c := range contracts {
		total += c.Financial.EstimatedProfit
	}
	return total
}
