package accounting

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

const exportSheet = "Servicios completados"

var exportHeaders = []string{"Fecha", "Hora", "Cliente", "Servicio", "Ubicación", "Método de pago", "Precio"}

// ExportCompleted writes an xlsx workbook listing completed appointments
// followed by a total row.
func (s *Service) ExportCompleted(ctx context.Context, w io.Writer) error {
	status := domain.StatusCompleted
	appts, err := s.repo.List(ctx, store.ListFilter{Status: &status})
	if err != nil {
		return err
	}
	return WriteCompletedWorkbook(w, appts)
}

func WriteCompletedWorkbook(w io.Writer, appts []domain.Appointment) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	completed := Completed(appts)
	for i, a := range completed {
		row := i + 2
		location := "Taller"
		if a.IsHomeService {
			location = "Domicilio"
		}
		payment := "No especificado"
		if a.PaymentMethod != nil {
			payment = string(*a.PaymentMethod)
		}
		values := []any{a.Date.Display(), a.Time, a.ClientName, a.ServiceType, location, payment, price(a).InexactFloat64()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	totalRow := len(completed) + 2
	labelCell, _ := excelize.CoordinatesToCellName(len(exportHeaders)-1, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), totalRow)
	_ = f.SetCellValue(exportSheet, labelCell, "Total")
	_ = f.SetCellValue(exportSheet, totalCell, ComputeTotalRevenue(completed).InexactFloat64())
	_ = f.SetCellStyle(exportSheet, labelCell, totalCell, headerStyle)

	_ = f.SetColWidth(exportSheet, "A", "B", 12)
	_ = f.SetColWidth(exportSheet, "C", "F", 22)
	_ = f.SetColWidth(exportSheet, "G", "G", 14)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
