package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// exportHeader is the flat tabular shape shared by CSV and XLSX export.
// Both formats serialize the same filtered, sorted rows so a download
// and a print rendering never diverge.
var exportHeader = []string{"Date", "Type", "SubType", "Category", "Activity", "Description", "Total"}

func exportRecord(row Row) []string {
	return []string{
		row.Date,
		string(row.Type),
		string(row.SubType),
		row.Category,
		row.Activity,
		row.Description,
		fmt.Sprintf("%d", row.Total),
	}
}

// WriteCSV serializes rows as CSV with a header row. encoding/csv quotes
// any value containing the field delimiter.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(exportRecord(row)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

const xlsxSheet = "Report"

// WriteXLSX serializes the report as a spreadsheet: the summary block on
// top, then the header and rows.
func WriteXLSX(w io.Writer, rpt *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Income", rpt.Summary.Income},
		{"Expense", rpt.Summary.Expense},
		{"Reimburse Total", rpt.Summary.ReimburseTotal},
		{"Cash Expense", rpt.Summary.CashExpense},
		{"Balance", rpt.Summary.Balance},
	}
	for i, pair := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &pair); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	headerRow := len(summary) + 2
	cell, err := excelize.CoordinatesToCellName(1, headerRow)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rpt.Rows {
		cell, err := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		record := []interface{}{
			row.Date,
			string(row.Type),
			string(row.SubType),
			row.Category,
			row.Activity,
			row.Description,
			row.Total,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
