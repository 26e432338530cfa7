package spreadsheet_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/spreadsheet"
)

func TestExportSales_HojasYFilas(t *testing.T) {
	list := []*entity.Sale{
		{
			ID: 2, Date: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), CreatedBy: "cajero1",
			Items: []entity.SaleItem{
				{ProductID: 1, Name: "Cement", Price: decimal.NewFromInt(280), Qty: 5},
				{ProductID: 2, Name: "Steel Bar 10mm", Price: decimal.NewFromInt(185), Qty: 2},
			},
			Total: decimal.NewFromInt(1770),
		},
		{
			ID: 1, Date: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), CreatedBy: "cajero2",
			Items: []entity.SaleItem{{ProductID: 1, Name: "Cement", Price: decimal.NewFromInt(280), Qty: 1}},
			Total: decimal.NewFromInt(280),
		},
	}

	out, err := spreadsheet.NewSalesExporter().ExportSales(context.Background(), list, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ventas", "Lineas"}, f.GetSheetList())

	v, err := f.GetCellValue("Ventas", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Venta", v)

	v, _ = f.GetCellValue("Ventas", "C2")
	assert.Equal(t, "cajero1", v)
	v, _ = f.GetCellValue("Ventas", "D2")
	assert.Equal(t, "Cement (x5), Steel Bar 10mm (x2)", v)

	rows, err := f.GetRows("Lineas")
	require.NoError(t, err)
	assert.Len(t, rows, 4, "encabezado + tres líneas")

	formula, err := f.GetCellFormula("Ventas", "E4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(E2:E3)", formula)
}

func TestExportSales_SinVentas(t *testing.T) {
	out, err := spreadsheet.NewSalesExporter().ExportSales(context.Background(), nil, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Ventas")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
