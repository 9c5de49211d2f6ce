// Package export writes booking lists to Excel workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"marketplace/internal/booking"
	"marketplace/internal/dashboard"
	"marketplace/internal/format"
	"marketplace/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Reservas"

var headers = []string{"Data", "Início", "Fim", "Serviço", "Contraparte", "Estado", "Total (Kz)", "Motivo do cancelamento"}

var statusFills = map[models.BookingStatus]string{
	models.BookingPending:   "#FFF2CC",
	models.BookingConfirmed: "#E2EFDA",
	models.BookingCancelled: "#F8CBAD",
	models.BookingCompleted: "#DDEBF7",
}

type Exporter struct {
	dir    string
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Bookings writes the bookings of tab, as the viewer sees them, to a new
// workbook and returns its path.
func (e *Exporter) Bookings(bookings []models.Booking, tab dashboard.Tab, role models.Role, now time.Time) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := dashboard.Filter(bookings, tab)
	stats := dashboard.Count(bookings)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Reservas (%s) em %s", tabTitle(tab), format.DateTime(now)))
	_ = f.SetCellValue(sheetName, "A2", fmt.Sprintf("Total: %d | Pendentes: %d | Confirmadas: %d | Canceladas: %d | Concluídas: %d",
		stats.Total, stats.Pendente, stats.Confirmada, stats.Cancelada, stats.Concluida))

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	_ = f.MergeCell(sheetName, "A2", lastCol+"2")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	if err := writeHeaders(f); err != nil {
		return "", err
	}
	if err := writeRows(f, rows, role); err != nil {
		return "", err
	}

	_ = f.SetColWidth(sheetName, "A", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "E", 30)
	_ = f.SetColWidth(sheetName, "F", "G", 15)
	_ = f.SetColWidth(sheetName, "H", "H", 40)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservas_%s_%s.xlsx", tab, now.Format("20060102_150405"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(rows)).Msg("Excel file created")
	return filePath, nil
}

func writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
	return nil
}

func writeRows(f *excelize.File, rows []models.Booking, role models.Role) error {
	styles := make(map[models.BookingStatus]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating status style: %w", err)
		}
		styles[status] = id
	}

	for i := range rows {
		b := &rows[i]
		row := i + 4

		counterpart := ""
		if p := b.Counterpart(role); p != nil {
			counterpart = p.Name
		}
		reason := ""
		if b.CancellationReason != nil {
			reason = *b.CancellationReason
		}
		total, _ := b.TotalPrice.Float64()

		values := []interface{}{
			format.Date(b.BookingDate.Time),
			format.Time(b.StartTime),
			format.Time(b.EndTime),
			b.ServiceName(),
			counterpart,
			booking.Label(b.Status),
			total,
			reason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		if id, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(6, row)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, id)
		}
	}
	return nil
}

func tabTitle(tab dashboard.Tab) string {
	if status, ok := dashboard.StatusForTab(tab); ok {
		return booking.Label(status)
	}
	return "Todas"
}
