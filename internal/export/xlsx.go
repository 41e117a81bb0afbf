// Package export renders a batch manifest as a review spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/virtualmailroom/mailroom/internal/model"
)

// ManifestXLSX returns an XLSX workbook with one row per document.
// Unresolved and anomalous documents carry flag columns so a reviewer
// can filter straight to the ones needing attention.
func ManifestXLSX(m *model.Manifest) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Output File",
		"Type",
		"File Number",
		"Pages",
		"Page Count",
		"Unknown",
		"Unknown Reason",
		"Corrections",
		"Truncation Repair",
		"Best Rejected",
		"Anomaly",
		"Anomaly Detail",
		"AI Suggestion",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range m.Documents {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.OutputFile)
		write(2, rec.DocumentType)
		write(3, rec.Identifier)
		write(4, rec.Pages)
		write(5, rec.PageCount)
		write(6, rec.Unknown)
		write(7, string(rec.UnknownReason))
		write(8, flattenCorrections(rec.Corrections))
		write(9, rec.TruncationRepair)
		write(10, rec.BestRejected)
		write(11, rec.Anomaly)
		write(12, rec.AnomalyDetail)
		if rec.Assist != nil {
			write(13, rec.Assist.Suggestion)
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "H", "H", 32)
	_ = f.SetColWidth(sheet, "L", "L", 32)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenCorrections renders corrections as "pos0 1->L; pos1 L->1"
func flattenCorrections(corrections []model.Correction) string {
	if len(corrections) == 0 {
		return ""
	}
	parts := make([]string, 0, len(corrections))
	for _, c := range corrections {
		parts = append(parts, fmt.Sprintf("pos%d %s->%s", c.Position, c.Original, c.Replacement))
	}
	return strings.Join(parts, "; ")
}
