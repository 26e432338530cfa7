package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

const minPasswordLen = 6

// UserUseCase aplica reglas de negocio para cuentas de usuario.
type UserUseCase struct {
	repo  repository.UserRepository
	audit AuditRecorder
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, audit AuditRecorder) *UserUseCase {
	return &UserUseCase{repo: repo, audit: audit}
}

// List devuelve todos los usuarios (sin hash de contraseña).
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *ToUserResponse(u))
	}
	return out, nil
}

// Create hashea la contraseña con bcrypt y persiste el usuario. Registra "Add User".
func (uc *UserUseCase) Create(ctx context.Context, actor string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username es obligatorio", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	perms := make([]string, 0, len(in.Permissions))
	for _, p := range in.Permissions {
		if !entity.IsKnownPermission(p) {
			return nil, fmt.Errorf("%w: permiso desconocido %q", domain.ErrInvalidInput, p)
		}
		if !slices.Contains(perms, p) {
			perms = append(perms, p)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		Permissions:  perms,
		EmployeeID:   in.EmployeeID,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	fields := map[string]any{"username": user.Username, "permissions": user.Permissions}
	if user.EmployeeID != nil {
		fields["employeeId"] = *user.EmployeeID
	}
	uc.audit.Record(ctx, entity.ActionAddUser, "Created user: "+user.Username, actor,
		entity.EntityMetadata{Kind: entity.ActionAddUser, Fields: fields})
	return ToUserResponse(user), nil
}

// Delete elimina el usuario. Un usuario no puede eliminarse a sí mismo. Registra "Delete User".
func (uc *UserUseCase) Delete(ctx context.Context, actorID int64, actor string, id int64) error {
	if id == actorID {
		return fmt.Errorf("%w: no puede eliminar su propio usuario", domain.ErrInvalidInput)
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, entity.ActionDeleteUser, "Deleted User: "+user.Username, actor,
		entity.EntityMetadata{Kind: entity.ActionDeleteUser, Fields: map[string]any{"id": user.ID, "username": user.Username}})
	return nil
}

// ToUserResponse mapea la entidad a la salida pública.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Permissions: perms,
		EmployeeID:  u.EmployeeID,
		CreatedAt:   u.CreatedAt,
	}
}
