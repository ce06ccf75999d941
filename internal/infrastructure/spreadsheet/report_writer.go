package spreadsheet

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v3"

	"github.com/jhoicas/climatiza-api/internal/domain/repository"
)

var orderReportHeader = []string{
	"Número", "Cliente", "Tipo", "Estado", "Prioridad", "Técnico",
	"Inicio programado", "Completada", "Horas", "Coste repuestos",
}

// ReportWriter genera informes .xlsx.
type ReportWriter struct{}

// NewReportWriter construye el escritor.
func NewReportWriter() *ReportWriter { return &ReportWriter{} }

// WriteServiceOrders escribe una hoja "Órdenes" con una fila por orden.
func (ReportWriter) WriteServiceOrders(w io.Writer, rows []repository.ServiceOrderReportRow) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Órdenes")
	if err != nil {
		return fmt.Errorf("crear hoja: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range orderReportHeader {
		c := header.AddCell()
		c.SetString(h)
		c.GetStyle().Font.Bold = true
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Number)
		row.AddCell().SetString(r.CustomerName)
		row.AddCell().SetString(r.Type)
		row.AddCell().SetString(r.Status)
		row.AddCell().SetString(r.Priority)
		row.AddCell().SetString(r.TechnicianName)
		if r.ScheduledStart != nil {
			row.AddCell().SetDateTime(*r.ScheduledStart)
		} else {
			row.AddCell()
		}
		if r.CompletedAt != nil {
			row.AddCell().SetDateTime(*r.CompletedAt)
		} else {
			row.AddCell()
		}
		row.AddCell().SetFloat(r.LaborHours.InexactFloat64())
		row.AddCell().SetFloat(r.PartsCost.InexactFloat64())
	}
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("escribir xlsx: %w", err)
	}
	return nil
}
