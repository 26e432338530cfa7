package audit_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildmaster/backoffice-api/internal/application/audit"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/memory"
)

func TestRecord_GuardaEntradaConMetadata(t *testing.T) {
	store := memory.New()
	l := audit.NewLogger(store.ActivityLogs(), zerolog.Nop())

	l.Record(context.Background(), entity.ActionSale, "Sale #1", "cajero1", entity.SaleMetadata{
		Items:  []entity.SaleItem{{ProductID: 1, Name: "Cement", Price: decimal.NewFromInt(280), Qty: 5}},
		Total:  decimal.NewFromInt(1400),
		SaleID: 1,
	})

	logs, err := store.ActivityLogs().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.ActionSale, logs[0].Action)
	assert.Equal(t, "Sale #1", logs[0].Details)
	assert.Equal(t, "cajero1", logs[0].User)
	assert.False(t, logs[0].Timestamp.IsZero())
	assert.Contains(t, string(logs[0].Metadata), `"id":1`)
}

func TestRecord_FalloDeAlmacenamientoNoSePropaga(t *testing.T) {
	store := memory.New()
	store.FailAppends(errors.New("disk full"))
	var buf bytes.Buffer
	l := audit.NewLogger(store.ActivityLogs(), zerolog.New(&buf))

	assert.NotPanics(t, func() {
		l.Record(context.Background(), entity.ActionLogin, "Login", "admin", nil)
	})
	assert.Contains(t, buf.String(), "disk full", "el fallo debe quedar en el canal operativo")
}

func TestRecord_MetadataDeOtraAccionSeOmite(t *testing.T) {
	store := memory.New()
	l := audit.NewLogger(store.ActivityLogs(), zerolog.Nop())

	l.Record(context.Background(), entity.ActionLogin, "Login", "admin", entity.SaleMetadata{SaleID: 3})

	logs, _ := store.ActivityLogs().ListRecent(context.Background(), 10)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Metadata)
}

func TestQuery_ListRecentMasNuevasPrimeroYLimite(t *testing.T) {
	store := memory.New()
	l := audit.NewLogger(store.ActivityLogs(), zerolog.Nop())
	for i := 0; i < audit.RecentLimit+5; i++ {
		l.Record(context.Background(), entity.ActionLogin, "Login", "admin", nil)
	}

	list, err := audit.NewQueryUseCase(store.ActivityLogs()).ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, list, audit.RecentLimit)
	assert.Greater(t, list[0].ID, list[1].ID)
}

func TestQuery_GetDecodificaVariante(t *testing.T) {
	store := memory.New()
	l := audit.NewLogger(store.ActivityLogs(), zerolog.Nop())
	l.Record(context.Background(), entity.ActionVoid, "Voided Sale #4", "cajero1", entity.VoidMetadata{
		SaleID: 4, Total: decimal.NewFromInt(10), ApprovedBy: "supervisor1",
	})

	q := audit.NewQueryUseCase(store.ActivityLogs())
	out, err := q.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "void", out.MetadataType)
	vm, ok := out.Payload.(entity.VoidMetadata)
	require.True(t, ok)
	assert.Equal(t, "supervisor1", vm.ApprovedBy)

	_, err = q.Get(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
