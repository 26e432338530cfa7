package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el tablero.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetInventoryTotals unidades totales y valor del inventario a precio de venta.
func (r *AnalyticsRepo) GetInventoryTotals(ctx context.Context) (repository.InventoryTotals, error) {
	var out repository.InventoryTotals
	var items int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(stock), 0), COALESCE(SUM(price * stock), 0)
		FROM products`).Scan(&items, &out.TotalValue)
	if err != nil {
		return out, fmt.Errorf("inventory totals: %w", err)
	}
	out.TotalItems = int(items)
	return out, nil
}

// GetLowStock productos bajo el umbral, menor stock primero.
func (r *AnalyticsRepo) GetLowStock(ctx context.Context, threshold int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE stock < $1
		ORDER BY stock ASC, id ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetSalesTotals número de ventas activas e ingreso bruto en [from, to).
func (r *AnalyticsRepo) GetSalesTotals(ctx context.Context, from, to *time.Time) (repository.SalesTotals, error) {
	var out repository.SalesTotals
	var count int64
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE voided_at IS NULL
		  AND ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date < $2)`, from, to).Scan(&count, &out.Revenue)
	if err != nil {
		return out, fmt.Errorf("sales totals: %w", err)
	}
	out.Count = int(count)
	return out, nil
}

// GetTopProducts desagrega las líneas JSONB de las ventas activas y las agrupa por producto.
// El nombre es el del snapshot más reciente.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, from, to *time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    (it->>'id')::BIGINT                                         AS product_id,
	    (ARRAY_AGG(it->>'name' ORDER BY s.id DESC))[1]              AS name,
	    SUM((it->>'qty')::INT)                                      AS qty_sold,
	    SUM((it->>'price')::NUMERIC * (it->>'qty')::INT)            AS revenue
	FROM sales s
	CROSS JOIN LATERAL jsonb_array_elements(s.items) AS it
	WHERE s.voided_at IS NULL
	  AND ($1::timestamptz IS NULL OR s.date >= $1)
	  AND ($2::timestamptz IS NULL OR s.date < $2)
	GROUP BY 1
	ORDER BY revenue DESC, qty_sold DESC, product_id ASC
	LIMIT $3`

	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var out []repository.TopProductResult
	for rows.Next() {
		var res repository.TopProductResult
		var qty int64
		var revenue decimal.Decimal
		if err := rows.Scan(&res.ProductID, &res.Name, &qty, &revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		res.QtySold = int(qty)
		res.Revenue = revenue
		out = append(out, res)
	}
	return out, rows.Err()
}
