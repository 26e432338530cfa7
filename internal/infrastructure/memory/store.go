// Package memory implementación en memoria de los puertos de persistencia (tests y desarrollo local).
// Las transacciones se serializan y se revierten restaurando una copia de productos y ventas.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products      map[int64]entity.Product
	nextProductID int64

	sales      map[int64]entity.Sale
	nextSaleID int64

	logs      []entity.ActivityLog
	appendErr error

	users      map[int64]entity.User
	nextUserID int64

	// Empleados conocidos; replica la FK users.employee_id.
	employees map[int64]struct{}
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products:  make(map[int64]entity.Product),
		sales:     make(map[int64]entity.Sale),
		users:     make(map[int64]entity.User),
		employees: make(map[int64]struct{}),
	}
}

// AddEmployee registra un empleado al que pueden enlazarse cuentas de usuario.
func (s *Store) AddEmployee(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id] = struct{}{}
}

// FailAppends hace que Append devuelva err (nil restablece). Simula caída del almacenamiento de auditoría.
func (s *Store) FailAppends(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Sales repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// ActivityLogs repositorio del registro de actividad.
func (s *Store) ActivityLogs() *ActivityLogRepo { return &ActivityLogRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// RunSales ejecuta fn de forma serializada; si fn falla, productos y ventas vuelven al estado previo.
func (s *Store) RunSales(ctx context.Context, fn func(sales repository.SaleRepository, products repository.ProductRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	products := make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	sales := make(map[int64]entity.Sale, len(s.sales))
	for k, v := range s.sales {
		sales[k] = v
	}
	nextSale := s.nextSaleID
	s.mu.RUnlock()

	if err := fn(s.Sales(), s.Products()); err != nil {
		s.mu.Lock()
		s.products, s.sales, s.nextSaleID = products, sales, nextSale
		s.mu.Unlock()
		return err
	}
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextProductID++
	p.ID = r.s.nextProductID
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *ProductRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.products), nil
}

// AdjustStock equivalente en memoria del UPDATE condicional: comprobación y escritura bajo el mismo lock.
func (r *ProductRepo) AdjustStock(_ context.Context, id int64, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return p.Stock, domain.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	r.s.products[id] = p
	return p.Stock, nil
}

// ── Ventas ───────────────────────────────────────────────────────────────────

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct{ s *Store }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSaleID++
	sale.ID = r.s.nextSaleID
	sale.Date = time.Now().UTC()
	cp := *sale
	cp.Items = append([]entity.SaleItem(nil), sale.Items...)
	r.s.sales[sale.ID] = cp
	return nil
}

func (r *SaleRepo) GetActiveByID(_ context.Context, id int64) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.IsVoided() {
		return nil, nil
	}
	return &sale, nil
}

func (r *SaleRepo) ListActive(_ context.Context, from, to *time.Time) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		if sale.IsVoided() {
			continue
		}
		if from != nil && sale.Date.Before(*from) {
			continue
		}
		if to != nil && !sale.Date.Before(*to) {
			continue
		}
		sale := sale
		out = append(out, &sale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *SaleRepo) MarkVoided(_ context.Context, id int64, approvedBy string, at time.Time) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.IsVoided() {
		return nil, domain.ErrNotFound
	}
	orig := sale
	sale.VoidedAt = &at
	sale.VoidedBy = approvedBy
	r.s.sales[id] = sale
	return &orig, nil
}

// ── Registro de actividad ────────────────────────────────────────────────────

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo registro append-only en memoria.
type ActivityLogRepo struct{ s *Store }

func (r *ActivityLogRepo) Append(_ context.Context, e *entity.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.appendErr != nil {
		return r.s.appendErr
	}
	e.ID = int64(len(r.s.logs) + 1)
	r.s.logs = append(r.s.logs, *e)
	return nil
}

func (r *ActivityLogRepo) ListRecent(_ context.Context, limit int) ([]*entity.ActivityLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.ActivityLog, 0, limit)
	for i := len(r.s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.s.logs[i]
		out = append(out, &e)
	}
	return out, nil
}

func (r *ActivityLogRepo) GetByID(_ context.Context, id int64) (*entity.ActivityLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if id < 1 || id > int64(len(r.s.logs)) {
		return nil, nil
	}
	e := r.s.logs[id-1]
	return &e, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	if u.EmployeeID != nil {
		if _, ok := r.s.employees[*u.EmployeeID]; !ok {
			return fmt.Errorf("%w: el empleado %d no existe", domain.ErrInvalidInput, *u.EmployeeID)
		}
	}
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// ── Analítica ────────────────────────────────────────────────────────────────

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// Analytics consultas del tablero sobre el mismo estado.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// AnalyticsRepo agregados calculados en memoria.
type AnalyticsRepo struct{ s *Store }

func (r *AnalyticsRepo) GetInventoryTotals(_ context.Context) (repository.InventoryTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := repository.InventoryTotals{TotalValue: decimal.Zero}
	for _, p := range r.s.products {
		out.TotalItems += p.Stock
		out.TotalValue = out.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return out, nil
}

func (r *AnalyticsRepo) GetLowStock(_ context.Context, threshold int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.Stock < threshold {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *AnalyticsRepo) GetSalesTotals(ctx context.Context, from, to *time.Time) (repository.SalesTotals, error) {
	sales, _ := r.s.Sales().ListActive(ctx, from, to)
	out := repository.SalesTotals{Revenue: decimal.Zero}
	for _, sale := range sales {
		out.Count++
		out.Revenue = out.Revenue.Add(sale.Total)
	}
	return out, nil
}

func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, from, to *time.Time, limit int) ([]repository.TopProductResult, error) {
	sales, _ := r.s.Sales().ListActive(ctx, from, to)
	byID := map[int64]*repository.TopProductResult{}
	// ListActive viene del más reciente al más antiguo: el primer nombre visto es el snapshot vigente.
	for _, sale := range sales {
		for _, it := range sale.Items {
			res, ok := byID[it.ProductID]
			if !ok {
				res = &repository.TopProductResult{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero}
				byID[it.ProductID] = res
			}
			res.QtySold += it.Qty
			res.Revenue = res.Revenue.Add(it.Subtotal())
		}
	}
	out := make([]repository.TopProductResult, 0, len(byID))
	for _, res := range byID {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		if out[i].QtySold != out[j].QtySold {
			return out[i].QtySold > out[j].QtySold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
