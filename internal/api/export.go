package api

import (
	"fmt"
	"io"
	"net/http"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheet     = "Bookings"
	exportTimeFmt   = "2006-01-02 15:04"
)

var exportHeaders = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

// handleOwnerBookingsExport streams the owner's bookings for ?state= as XLSX.
// from/size select the window the same way the JSON listing does.
func (s *HTTPServer) handleOwnerBookingsExport(w http.ResponseWriter, r *http.Request) {
	bookings, ok := s.listBookings(w, r, s.svc.Bookings.GetOwnerBookings)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="owner_bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := writeBookingsXLSX(w, bookings); err != nil {
		s.log.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("export failed")
	}
}

func writeBookingsXLSX(out io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, title)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		values := []any{
			b.ID,
			b.Item.Name,
			b.Booker.Name,
			b.Start.UTC().Format(exportTimeFmt),
			b.End.UTC().Format(exportTimeFmt),
			string(b.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "C", 25)
	_ = f.SetColWidth(exportSheet, "D", "F", 18)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
