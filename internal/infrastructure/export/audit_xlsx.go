package export

import (
	"fmt"
	"io"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

// AuditSheet is the sheet name of an audit export
const AuditSheet = "Log"

// ContentTypeXLSX is the MIME type of a spreadsheet export
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var auditHeadings = []string{"Report", "Time", "Mismatch", "Message"}

// WriteAuditLog writes the audit lines of a report as an xlsx workbook
func WriteAuditLog(w io.Writer, r *report.Report, entries []report.LogEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AuditSheet); err != nil {
		return err
	}

	for i, h := range auditHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(AuditSheet, cell, h); err != nil {
			return err
		}
	}

	for i, e := range entries {
		row := i + 2
		values := []any{r.Name, e.CreatedAt.UTC().Format("2006-01-02 15:04:05"), e.Mismatch, e.Message}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(AuditSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(AuditSheet, "D", "D", 100); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// AuditFileName is the download name of the export of a report
func AuditFileName(r *report.Report) string {
	return fmt.Sprintf("%s-%s-log.xlsx", r.Type, r.ID)
}
