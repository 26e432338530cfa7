// Package pdf genera el recibo imprimible de una venta del POS.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: Nombre del negocio │ N° Venta + Fecha │
//	│  Cajero                                        │
//	│  ───────────────────────────────────────────── │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal │
//	│  ───────────────────────────────────────────── │
//	│  TOTAL                                         │
//	│  FOOTER: leyenda                               │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/buildmaster/backoffice-api/internal/application/sales"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

var _ sales.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 191, Green: 87, Blue: 0}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa sales.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderReceipt(_ context.Context, businessName string, sale *entity.Sale) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Recibo venta #%d", sale.ID), true).
		WithAuthor(businessName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(businessName, sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(sale.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(sale))
	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: negocio + cajero (izq) y N° venta + fecha (der).
func headerRow(businessName string, sale *entity.Sale) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(businessName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Cajero: "+nonEmpty(sale.CreatedBy, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RECIBO DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("#%d", sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New(sale.Date.Local().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRows: una fila por línea, con el nombre y precio del snapshot de la venta.
func itemRows(items []entity.SaleItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Qty), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(FormatMoney(it.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(FormatMoney(it.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(sale *entity.Sale) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(FormatMoney(sale.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Gracias por su compra. Conserve este recibo para cualquier reclamo.", props.Text{
			Size: 7, Align: align.Center, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
