package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, date, items, total, created_by, voided_at, COALESCE(voided_by, '')`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas se guardan como JSONB con el snapshot de nombre y precio.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta; la fecha la asigna el servidor de BD.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return fmt.Errorf("marshal sale items: %w", err)
	}
	err = r.q.QueryRow(ctx, `
		INSERT INTO sales (items, total, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, date`, items, sale.Total, sale.CreatedBy).Scan(&sale.ID, &sale.Date)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetActiveByID devuelve la venta no anulada; (nil, nil) si no existe o está anulada.
func (r *SaleRepo) GetActiveByID(ctx context.Context, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1 AND voided_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// ListActive ventas no anuladas en [from, to), más recientes primero.
func (r *SaleRepo) ListActive(ctx context.Context, from, to *time.Time) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE voided_at IS NULL
		  AND ($1::timestamptz IS NULL OR date >= $1)
		  AND ($2::timestamptz IS NULL OR date < $2)
		ORDER BY id DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// MarkVoided marca la venta como anulada solo si aún no lo estaba. Entre dos anulaciones
// concurrentes exactamente una obtiene la fila; la otra recibe domain.ErrNotFound.
func (r *SaleRepo) MarkVoided(ctx context.Context, id int64, approvedBy string, at time.Time) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `
		UPDATE sales SET voided_at = $2, voided_by = $3
		WHERE id = $1 AND voided_at IS NULL
		RETURNING `+saleColumns, id, at, approvedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("void sale: %w", err)
	}
	return s, nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var items []byte
	if err := row.Scan(&s.ID, &s.Date, &items, &s.Total, &s.CreatedBy, &s.VoidedAt, &s.VoidedBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("decode sale %d items: %w", s.ID, err)
	}
	return &s, nil
}
