package sales_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildmaster/backoffice-api/internal/application/audit"
	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/application/sales"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/memory"
	"github.com/buildmaster/backoffice-api/pkg/jwt"
)

const (
	testSecret   = "test-secret-key-for-unit-tests"
	testPassword = "secret123"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	checkout *sales.CheckoutUseCase
	void     *sales.VoidUseCase
	query    *sales.QueryUseCase
	cement   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	cement := &entity.Product{Name: "Cement", Category: "Structural", Price: decimal.NewFromInt(280), Stock: 150, Unit: "Bag(s)"}
	require.NoError(t, store.Products().Create(ctx, cement))

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range []*entity.User{
		{Username: "supervisor1", PasswordHash: string(hash), Permissions: []string{entity.PermReports, entity.PermVoidAuthorize}},
		{Username: "cajero1", PasswordHash: string(hash), Permissions: []string{entity.PermPOS}},
	} {
		require.NoError(t, store.Users().Create(ctx, u))
	}

	adjuster := sales.NewStockAdjuster(zerolog.Nop())
	recorder := audit.NewLogger(store.ActivityLogs(), zerolog.Nop())
	return &fixture{
		store:    store,
		checkout: sales.NewCheckoutUseCase(store, adjuster, recorder, zerolog.Nop()),
		void: sales.NewVoidUseCase(store.Users(), store, adjuster, recorder, sales.ApprovalConfig{
			Secret: testSecret, Issuer: "test", TTL: time.Minute,
		}, zerolog.Nop()),
		query:  sales.NewQueryUseCase(store.Sales(), nil, nil, "TEST"),
		cement: cement.ID,
	}
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) logsOf(t *testing.T, action string) []*entity.ActivityLog {
	t.Helper()
	all, err := f.store.ActivityLogs().ListRecent(context.Background(), 1000)
	require.NoError(t, err)
	var out []*entity.ActivityLog
	for _, e := range all {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) approve(t *testing.T) dto.VoidRequest {
	t.Helper()
	a, err := f.void.Authorize(context.Background(), "supervisor1", testPassword)
	require.NoError(t, err)
	return dto.VoidRequest{ApprovedBy: a.Supervisor(), ApprovalToken: a.Token()}
}

func cementCart(id int64, qty int) dto.CheckoutRequest {
	price := decimal.RequireFromString("280.00")
	return dto.CheckoutRequest{
		Cart:  []dto.CartItem{{ID: id, Name: "Cement", Price: price, Qty: qty}},
		Total: price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo: venta y anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestCementScenario_VentaYAnulacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart := cementCart(f.cement, 5)

	res, err := f.checkout.Checkout(ctx, "cajero1", cart)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotZero(t, res.SaleID)
	assert.False(t, res.Date.IsZero())
	assert.Equal(t, 145, f.stock(t, f.cement))

	sale, err := f.query.Get(ctx, res.SaleID)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("1400.00")))
	assert.Equal(t, "Cement (x5)", sale.ItemsSummary)

	saleLogs := f.logsOf(t, entity.ActionSale)
	require.Len(t, saleLogs, 1)
	assert.Equal(t, "cajero1", saleLogs[0].User)

	// La metadata debe coincidir con el carrito enviado tras el round-trip JSON.
	var meta map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(saleLogs[0].Metadata, &meta))
	wantItems, _ := json.Marshal(cart.Cart)
	assert.JSONEq(t, string(wantItems), string(meta["items"]))
	wantTotal, _ := json.Marshal(cart.Total)
	assert.JSONEq(t, string(wantTotal), string(meta["total"]))

	vres, err := f.void.Void(ctx, "cajero1", res.SaleID, f.approve(t))
	require.NoError(t, err)
	assert.Equal(t, "Voided", vres.Message)
	assert.Equal(t, 150, f.stock(t, f.cement))

	active, err := f.query.List(ctx, dto.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, active, "la venta anulada no debe aparecer en el historial")

	voidLogs := f.logsOf(t, entity.ActionVoid)
	require.Len(t, voidLogs, 1)
	assert.Equal(t, "cajero1", voidLogs[0].User, "la anulación se atribuye al cajero, no al supervisor")
	decoded, err := entity.DecodeMetadata(voidLogs[0].Action, voidLogs[0].Metadata)
	require.NoError(t, err)
	vm := decoded.(entity.VoidMetadata)
	assert.Equal(t, "supervisor1", vm.ApprovedBy)
	assert.Equal(t, res.SaleID, vm.SaleID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CarritoVacioSinEscrituras(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Checkout(context.Background(), "cajero1", dto.CheckoutRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, _ := f.query.List(context.Background(), dto.DateRange{})
	assert.Empty(t, list)
	assert.Empty(t, f.logsOf(t, entity.ActionSale))
}

func TestCheckout_Validaciones(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		req  dto.CheckoutRequest
	}{
		{"cantidad cero", dto.CheckoutRequest{Cart: []dto.CartItem{{ID: f.cement, Name: "Cement", Price: decimal.NewFromInt(280), Qty: 0}}}},
		{"sin producto", dto.CheckoutRequest{Cart: []dto.CartItem{{Name: "X", Price: decimal.NewFromInt(1), Qty: 1}}, Total: decimal.NewFromInt(1)}},
		{"precio negativo", dto.CheckoutRequest{Cart: []dto.CartItem{{ID: f.cement, Price: decimal.NewFromInt(-1), Qty: 1}}, Total: decimal.NewFromInt(-1)}},
		{"cantidad fuera de rango", dto.CheckoutRequest{Cart: []dto.CartItem{{ID: f.cement, Price: decimal.Zero, Qty: math.MaxInt32 + 1}}}},
		{"total no cuadra", dto.CheckoutRequest{Cart: []dto.CartItem{{ID: f.cement, Price: decimal.NewFromInt(280), Qty: 2}}, Total: decimal.NewFromInt(500)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.checkout.Checkout(context.Background(), "cajero1", tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 150, f.stock(t, f.cement))
		})
	}
}

func TestCheckout_SobreventaRechazadaConRollback(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Checkout(context.Background(), "cajero1", cementCart(f.cement, 151))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 150, f.stock(t, f.cement))
	list, _ := f.query.List(context.Background(), dto.DateRange{})
	assert.Empty(t, list, "la venta no debe quedar persistida")
	assert.Empty(t, f.logsOf(t, entity.ActionSale))
}

// Ver nota en TestVoid_ConcurrentesSobreLaMismaVenta sobre el alcance de estas pruebas.
func TestCheckout_ConcurrentesNoSobrevenden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &entity.Product{Name: "Steel Bar 10mm", Price: decimal.NewFromInt(185), Stock: 5, Unit: "Piece(s)"}
	require.NoError(t, f.store.Products().Create(ctx, p))

	req := dto.CheckoutRequest{
		Cart:  []dto.CartItem{{ID: p.ID, Name: p.Name, Price: p.Price, Qty: 3}},
		Total: decimal.NewFromInt(555),
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.checkout.Checkout(ctx, "cajero1", req)
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 2, f.stock(t, p.ID))
	assert.Len(t, f.logsOf(t, entity.ActionSale), 1)
}

func TestCheckout_ProductoInexistenteSeOmite(t *testing.T) {
	f := newFixture(t)
	req := dto.CheckoutRequest{
		Cart: []dto.CartItem{
			{ID: 999, Name: "Descontinuado", Price: decimal.NewFromInt(10), Qty: 1},
			{ID: f.cement, Name: "Cement", Price: decimal.NewFromInt(280), Qty: 2},
		},
		Total: decimal.NewFromInt(570),
	}
	res, err := f.checkout.Checkout(context.Background(), "cajero1", req)
	require.NoError(t, err)
	require.Len(t, res.Adjustments, 2)
	assert.Equal(t, entity.AdjustmentSkipped, res.Adjustments[0].Status)
	assert.Equal(t, entity.AdjustmentApplied, res.Adjustments[1].Status)
	assert.Equal(t, 148, f.stock(t, f.cement))
}

func TestCheckout_FalloDeAuditoriaNoRevierteVenta(t *testing.T) {
	f := newFixture(t)
	f.store.FailAppends(errors.New("log storage down"))

	res, err := f.checkout.Checkout(context.Background(), "cajero1", cementCart(f.cement, 1))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 149, f.stock(t, f.cement))
}

// ──────────────────────────────────────────────────────────────────────────────
// Authorize
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthorize_RechazosDistinguibles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.checkout.Checkout(ctx, "cajero1", cementCart(f.cement, 5))
	require.NoError(t, err)

	_, err = f.void.Authorize(ctx, "nadie", testPassword)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.void.Authorize(ctx, "supervisor1", "incorrecta")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = f.void.Authorize(ctx, "cajero1", testPassword)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// Ningún rechazo modifica ventas ni stock.
	assert.Equal(t, 145, f.stock(t, f.cement))
	_, err = f.query.Get(ctx, res.SaleID)
	assert.NoError(t, err)
	assert.Empty(t, f.logsOf(t, entity.ActionVoid))
}

func TestAuthorize_EmiteTokenVerificable(t *testing.T) {
	f := newFixture(t)
	a, err := f.void.Authorize(context.Background(), "supervisor1", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "supervisor1", a.Supervisor())
	assert.True(t, a.ExpiresAt().After(time.Now()))

	sup, capability, err := jwt.ParseApproval(testSecret, a.Token())
	require.NoError(t, err)
	assert.Equal(t, "supervisor1", sup)
	assert.Equal(t, entity.PermVoidAuthorize, capability)
}

// ──────────────────────────────────────────────────────────────────────────────
// Void
// ──────────────────────────────────────────────────────────────────────────────

func TestVoid_DosVecesEsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.checkout.Checkout(ctx, "cajero1", cementCart(f.cement, 5))
	require.NoError(t, err)

	approval := f.approve(t)
	_, err = f.void.Void(ctx, "cajero1", res.SaleID, approval)
	require.NoError(t, err)

	_, err = f.void.Void(ctx, "cajero1", res.SaleID, approval)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 150, f.stock(t, f.cement), "el stock se repone una sola vez")
	assert.Len(t, f.logsOf(t, entity.ActionVoid), 1)
}

func TestVoid_VentaInexistente(t *testing.T) {
	f := newFixture(t)
	// Sin aprobación válida no se revela si la venta existe.
	_, err := f.void.Void(context.Background(), "cajero1", 4242, dto.VoidRequest{ApprovedBy: "supervisor1"})
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	_, err = f.void.Void(context.Background(), "cajero1", 4242, f.approve(t))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 150, f.stock(t, f.cement))
	assert.Empty(t, f.logsOf(t, entity.ActionVoid))
}

func TestVoid_SinAprobacionValida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.checkout.Checkout(ctx, "cajero1", cementCart(f.cement, 5))
	require.NoError(t, err)

	_, err = f.void.Void(ctx, "cajero1", res.SaleID, dto.VoidRequest{ApprovedBy: "supervisor1"})
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	_, err = f.void.Void(ctx, "cajero1", res.SaleID, dto.VoidRequest{ApprovedBy: "supervisor1", ApprovalToken: "basura"})
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	approval := f.approve(t)
	approval.ApprovedBy = "otro"
	_, err = f.void.Void(ctx, "cajero1", res.SaleID, approval)
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	// Un token de sesión normal no sirve como aprobación.
	session, err := jwt.Generate(testSecret, jwt.Identity{UserID: 1, Username: "supervisor1"}, "test", 10)
	require.NoError(t, err)
	_, err = f.void.Void(ctx, "cajero1", res.SaleID, dto.VoidRequest{ApprovedBy: "supervisor1", ApprovalToken: session})
	assert.ErrorIs(t, err, domain.ErrApprovalRequired)

	assert.Equal(t, 145, f.stock(t, f.cement))
	assert.Empty(t, f.logsOf(t, entity.ActionVoid))
}

func TestVoid_SupervisorNoApruebaSuPropiaVenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.checkout.Checkout(ctx, "supervisor1", cementCart(f.cement, 5))
	require.NoError(t, err)

	_, err = f.void.Void(ctx, "supervisor1", res.SaleID, f.approve(t))
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Equal(t, 145, f.stock(t, f.cement))
	assert.Empty(t, f.logsOf(t, entity.ActionVoid))

	// Con otro usuario como cajero la misma aprobación sí vale.
	_, err = f.void.Void(ctx, "cajero1", res.SaleID, f.approve(t))
	require.NoError(t, err)
	assert.Equal(t, 150, f.stock(t, f.cement))
}

// Las pruebas concurrentes sobre memory.Store verifican el resultado observable
// (un ganador, stock correcto). El store serializa las transacciones con un mutex,
// así que no ejercitan la atomicidad del UPDATE condicional de PostgreSQL.
func TestVoid_ConcurrentesSobreLaMismaVenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.checkout.Checkout(ctx, "cajero1", cementCart(f.cement, 5))
	require.NoError(t, err)
	approval := f.approve(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.void.Void(ctx, "cajero1", res.SaleID, approval)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, domain.ErrNotFound) {
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)
	assert.Equal(t, 150, f.stock(t, f.cement))
	assert.Len(t, f.logsOf(t, entity.ActionVoid), 1)
}

func TestVoid_ProductoInexistenteNoBloqueaLaAnulacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dto.CheckoutRequest{
		Cart: []dto.CartItem{
			{ID: f.cement, Name: "Cement", Price: decimal.NewFromInt(280), Qty: 1},
			{ID: 777, Name: "Borrado", Price: decimal.NewFromInt(20), Qty: 2},
		},
		Total: decimal.NewFromInt(320),
	}
	res, err := f.checkout.Checkout(ctx, "cajero1", req)
	require.NoError(t, err)

	vres, err := f.void.Void(ctx, "cajero1", res.SaleID, f.approve(t))
	require.NoError(t, err)
	require.Len(t, vres.Adjustments, 2)
	assert.Equal(t, entity.AdjustmentApplied, vres.Adjustments[0].Status)
	assert.Equal(t, entity.AdjustmentSkipped, vres.Adjustments[1].Status)
	assert.Equal(t, 150, f.stock(t, f.cement))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestQuery_ListMasRecientesPrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.checkout.Checkout(ctx, "cajero1", cementCart(f.cement, 1))
	require.NoError(t, err)
	second, err := f.checkout.Checkout(ctx, "cajero1", cementCart(f.cement, 2))
	require.NoError(t, err)

	list, err := f.query.List(ctx, dto.DateRange{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.SaleID, list[0].ID)
	assert.Equal(t, first.SaleID, list[1].ID)
	assert.Equal(t, "cajero1", list[0].Cashier)
	require.Len(t, list[0].Details, 1)
	assert.True(t, list[0].Details[0].Subtotal.Equal(decimal.NewFromInt(560)))
}

func TestParseRange(t *testing.T) {
	from, to, err := sales.ParseRange(dto.DateRange{From: "2026-01-01", To: "2026-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", from.Format("2006-01-02"))
	assert.Equal(t, "2026-02-01", to.Format("2006-01-02"), "to es inclusivo")

	_, _, err = sales.ParseRange(dto.DateRange{From: "01/01/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = sales.ParseRange(dto.DateRange{From: "2026-02-01", To: "2026-01-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
