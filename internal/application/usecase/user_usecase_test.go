package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildmaster/backoffice-api/internal/application/audit"
	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/application/usecase"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/memory"
)

func newUsers(t *testing.T) (*usecase.UserUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	return usecase.NewUserUseCase(store.Users(), audit.NewLogger(store.ActivityLogs(), zerolog.Nop())), store
}

func TestUserCreate_HasheaYAudita(t *testing.T) {
	uc, store := newUsers(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, "admin", dto.CreateUserRequest{
		Username:    "supervisor1",
		Password:    "clave-segura",
		Permissions: []string{entity.PermReports, entity.PermVoidAuthorize, entity.PermReports},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.PermReports, entity.PermVoidAuthorize}, out.Permissions, "sin duplicados")

	u, err := store.Users().GetByUsername(ctx, "supervisor1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, "clave-segura", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("clave-segura")))

	logs, _ := store.ActivityLogs().ListRecent(ctx, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.ActionAddUser, logs[0].Action)
	assert.Equal(t, "admin", logs[0].User)
	assert.NotContains(t, string(logs[0].Metadata), "clave-segura")
}

func TestUserCreate_Rechazos(t *testing.T) {
	uc, _ := newUsers(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "admin", dto.CreateUserRequest{Username: " ", Password: "123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "ana", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "ana", Password: "123456", Permissions: []string{"root"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "ana", Password: "123456"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "ana", Password: "123456"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUserCreate_EmpleadoVinculado(t *testing.T) {
	uc, store := newUsers(t)
	ctx := context.Background()
	store.AddEmployee(5)

	unknown := int64(6)
	_, err := uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "ana", Password: "123456", EmployeeID: &unknown})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	known := int64(5)
	out, err := uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "ana", Password: "123456", EmployeeID: &known})
	require.NoError(t, err)
	require.NotNil(t, out.EmployeeID)
	assert.Equal(t, int64(5), *out.EmployeeID)
}

func TestUserDelete(t *testing.T) {
	uc, store := newUsers(t)
	ctx := context.Background()
	created, err := uc.Create(ctx, "admin", dto.CreateUserRequest{Username: "temporal", Password: "123456"})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, created.ID, "temporal", created.ID), domain.ErrInvalidInput, "no puede borrarse a sí mismo")
	require.NoError(t, uc.Delete(ctx, 999, "admin", created.ID))
	assert.ErrorIs(t, uc.Delete(ctx, 999, "admin", created.ID), domain.ErrNotFound)

	logs, _ := store.ActivityLogs().ListRecent(ctx, 10)
	require.Len(t, logs, 2)
	assert.Equal(t, entity.ActionDeleteUser, logs[0].Action)
	assert.Equal(t, "Deleted User: temporal", logs[0].Details)
}
