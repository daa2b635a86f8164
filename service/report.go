package service

import (
	"context"
	"fmt"
	"regexp"

	"infraspend/database"
	"infraspend/models"

	"github.com/xuri/excelize/v2"
)

const (
	reportSheet  = "Expenditures"
	summarySheet = "Summary"
	// XLSXContentType is the media type of ExportProjectReport output.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Report is a generated file.
type Report struct {
	Filename string
	Content  []byte
}

// ExportProjectReport renders the expenditures and budget figures of a project as xlsx.
func (s *Service) ExportProjectReport(ctx context.Context, actor *models.User, projectID uint) (*Report, error) {
	if err := s.policy.Can(actor, ActionExport, ResourceProject, Target{ID: projectID}); err != nil {
		return nil, err
	}
	p, err := s.findProject(ctx, s.store, projectID)
	if err != nil {
		return nil, err
	}
	expenditures, err := s.store.Expenditures.FindAll(ctx, database.Filter{"project_id": projectID})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(expenditures))
	for _, e := range expenditures {
		ids = append(ids, e.CreatedBy)
	}
	names := map[uint]string{}
	if len(ids) > 0 {
		users, err := s.store.Users.FindAll(ctx, database.Filter{"id": ids})
		if err != nil {
			return nil, err
		}
		for i := range users {
			names[users[i].ID] = displayName(&users[i])
		}
	}

	content, err := renderProjectReport(p, expenditures, names)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return &Report{
		Filename: fmt.Sprintf("project-%d-%s.xlsx", p.ID, unsafeFilename.ReplaceAllString(p.Name, "_")),
		Content:  content,
	}, nil
}

func renderProjectReport(p *models.Project, expenditures []models.Expenditure, names map[uint]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border,
	})
	moneyFormat := "#,##0.00"
	moneyStyle, _ := f.NewStyle(&excelize.Style{
		CustomNumFmt: &moneyFormat,
		Border:       border,
	})

	widths := map[string]float64{"A": 8, "B": 12, "C": 18, "D": 15, "E": 12, "F": 40, "G": 20}
	for col, w := range widths {
		_ = f.SetColWidth(reportSheet, col, col, w)
	}

	headers := []string{"ID", "Date", "Category", "Amount", "Status", "Description", "Submitted by"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(reportSheet, cell, h)
		_ = f.SetCellStyle(reportSheet, cell, cell, headerStyle)
	}

	for i, e := range expenditures {
		row := i + 2
		amount, _ := e.Amount.Float64()
		values := []any{e.ID, e.Date, e.Category, amount, string(e.Status), e.Description, names[e.CreatedBy]}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return nil, err
			}
		}
		_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
		_ = f.SetCellStyle(reportSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), moneyStyle)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	sum := Summarize(p.Budget, p.TotalExpenditure)
	budget, _ := sum.Budget.Float64()
	total, _ := sum.TotalExpenditure.Float64()
	remaining, _ := sum.Remaining.Float64()
	rows := [][]any{
		{"Project", p.Name},
		{"Status", string(p.Status)},
		{"Start date", p.StartDate},
		{"Budget", budget},
		{"Total approved", total},
		{"Remaining", remaining},
		{"Utilization %", sum.Utilization},
		{"Expenditures", len(expenditures)},
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 18)
	_ = f.SetColWidth(summarySheet, "B", "B", 30)
	for i, r := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(summarySheet, "B4", "B6", moneyStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
