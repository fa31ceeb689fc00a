package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/swjin-lab/purchases-tracker/constants"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// Service produces XLSX bytes for purchase-record exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookFromRows renders display rows into an XLSX workbook. The caller
// decides what goes in: the committed (filtered, unpaginated) row set or the
// flattened full record list.
func (s *Service) WorkbookFromRows(rows []entity.DisplayRow) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheet := constants.ExportSheetName
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range constants.ExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for n, r := range rows {
		row := n + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.RecordID)
		write(2, formatTimestamp(r.Date))
		write(3, formatTimestamp(r.CreatedAt))
		write(4, r.Vendor)
		write(5, r.ItemID)
		write(6, r.Name)
		write(7, r.Category)
		write(8, r.Color)
		write(9, r.Size)
		write(10, r.Options)
		write(11, r.UnitPrice)
		write(12, r.Quantity)
		write(13, r.TotalAmount)
		write(14, r.MissingQuantity)
	}

	_ = f.SetColWidth(sheet, "A", "C", 16)
	_ = f.SetColWidth(sheet, "D", "F", 20)
	_ = f.SetColWidth(sheet, "K", "N", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// Filename returns the download name: 사입내역_YYMMDD_HHMMSS.xlsx.
func Filename(now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx",
		constants.ExportFilePrefix,
		now.Format("060102"),
		now.Format("150405"),
	)
}

// formatTimestamp renders timestamps the way the record table shows them:
// 12-hour clock with AM/PM.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 3:04:05 PM")
}
