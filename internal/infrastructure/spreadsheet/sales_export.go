// Package spreadsheet exporta reportes de ventas a XLSX con excelize.
package spreadsheet

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/buildmaster/backoffice-api/internal/application/sales"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

var _ sales.SalesExporter = (*SalesExporter)(nil)

const (
	salesSheet = "Ventas"
	linesSheet = "Lineas"
)

// SalesExporter implementa sales.SalesExporter: hoja de ventas y hoja de líneas.
type SalesExporter struct{}

// NewSalesExporter construye el exportador.
func NewSalesExporter() *SalesExporter { return &SalesExporter{} }

// ExportSales genera el libro con las ventas recibidas (ya filtradas por rango).
func (e *SalesExporter) ExportSales(_ context.Context, list []*entity.Sale, from, to *time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return nil, err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeHeader(f, salesSheet, headerStyle, "Venta", "Fecha", "Cajero", "Detalle", "Total"); err != nil {
		return nil, err
	}
	if err := writeHeader(f, linesSheet, headerStyle, "Venta", "Producto", "Nombre", "Cantidad", "Precio", "Subtotal"); err != nil {
		return nil, err
	}

	lineRow := 2
	for i, s := range list {
		r := i + 2
		total, _ := s.Total.Float64()
		if err := setRow(f, salesSheet, r, s.ID, s.Date.Format("2006-01-02 15:04"), s.CreatedBy, s.ItemsSummary(), total); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(salesSheet, cell(5, r), cell(5, r), moneyStyle); err != nil {
			return nil, err
		}
		for _, it := range s.Items {
			price, _ := it.Price.Float64()
			sub, _ := it.Subtotal().Float64()
			if err := setRow(f, linesSheet, lineRow, s.ID, it.ProductID, it.Name, it.Qty, price, sub); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(linesSheet, cell(5, lineRow), cell(6, lineRow), moneyStyle); err != nil {
				return nil, err
			}
			lineRow++
		}
	}

	// Fila de totales al pie de la hoja de ventas.
	if n := len(list); n > 0 {
		r := n + 2
		if err := f.SetCellValue(salesSheet, cell(4, r), rangeLabel(from, to)); err != nil {
			return nil, err
		}
		if err := f.SetCellFormula(salesSheet, cell(5, r), fmt.Sprintf("SUM(E2:E%d)", r-1)); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(salesSheet, cell(4, r), cell(5, r), headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, style int, headings ...string) error {
	values := make([]any, len(headings))
	for i, h := range headings {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values...); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, 1), cell(len(headings), 1), style)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func rangeLabel(from, to *time.Time) string {
	label := "Total"
	if from != nil {
		label += " desde " + from.Format("2006-01-02")
	}
	if to != nil {
		// to es exclusivo (inicio del día siguiente).
		label += " hasta " + to.AddDate(0, 0, -1).Format("2006-01-02")
	}
	return label
}
