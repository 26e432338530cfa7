package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/application/usecase"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
	"github.com/buildmaster/backoffice-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de sesión: login, identidad actual y logout.
type AuthUseCase struct {
	userRepo repository.UserRepository
	audit    usecase.AuditRecorder
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, audit usecase.AuditRecorder, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, audit: audit, jwtCfg: jwtCfg}
}

// Login verifica username/password, genera JWT y retorna token + usuario.
// Usuario inexistente y contraseña incorrecta responden igual (domain.ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Permissions: user.Permissions,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.ActionLogin, "User logged in", user.Username, nil)
	return &dto.LoginResponse{
		Token: token,
		User:  *usecase.ToUserResponse(user),
	}, nil
}

// Me devuelve el usuario de la sesión. Si fue eliminado después de emitir el token: domain.ErrUnauthorized.
func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return usecase.ToUserResponse(user), nil
}

// Logout es un acuse sin estado (el cliente descarta el token); solo deja rastro en auditoría.
func (uc *AuthUseCase) Logout(ctx context.Context, username string) {
	uc.audit.Record(ctx, entity.ActionLogout, "User logged out", username, nil)
}
