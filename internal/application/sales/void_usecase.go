package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/domain"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
	"github.com/buildmaster/backoffice-api/pkg/jwt"
)

// ApprovalConfig firma de los tokens de aprobación de supervisor.
type ApprovalConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Approval prueba de que un supervisor se re-autenticó y puede autorizar anulaciones.
// Solo Authorize la construye; viaja al cliente como token firmado de corta vida.
type Approval struct {
	supervisor string
	token      string
	expiresAt  time.Time
}

// Supervisor username que aprobó.
func (a *Approval) Supervisor() string { return a.supervisor }

// Token representación firmada para presentar en la anulación.
func (a *Approval) Token() string { return a.token }

// ExpiresAt vencimiento del token.
func (a *Approval) ExpiresAt() time.Time { return a.expiresAt }

// VoidUseCase protocolo de anulación en dos fases:
//
//	Pending -> Authorize -> (Denied | Reversing) -> Voided
//
// Fase 1 (Authorize) no toca ventas ni stock. Fase 2 (Void) exige el token de la fase 1.
type VoidUseCase struct {
	users    repository.UserRepository
	tx       TxRunner
	adjuster *StockAdjuster
	audit    AuditRecorder
	cfg      ApprovalConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewVoidUseCase construye el caso de uso inyectando sus dependencias.
func NewVoidUseCase(
	users repository.UserRepository,
	tx TxRunner,
	adjuster *StockAdjuster,
	audit AuditRecorder,
	cfg ApprovalConfig,
	log zerolog.Logger,
) *VoidUseCase {
	return &VoidUseCase{
		users:    users,
		tx:       tx,
		adjuster: adjuster,
		audit:    audit,
		cfg:      cfg,
		log:      log.With().Str("component", "void").Logger(),
		now:      time.Now,
	}
}

// Authorize verifica las credenciales del supervisor y su capacidad void_authorize.
//
// Retorna:
//   - domain.ErrUserNotFound    el username no existe.
//   - domain.ErrInvalidPassword el username existe pero la contraseña no coincide.
//   - domain.ErrNotAuthorized   credenciales correctas sin la capacidad requerida.
//
// Un rechazo no cambia ningún estado; se puede reintentar (el límite lo impone la capa HTTP).
func (uc *VoidUseCase) Authorize(ctx context.Context, username, password string) (*Approval, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: usuario y contraseña son obligatorios", domain.ErrInvalidInput)
	}
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidPassword
	}
	if !user.HasPermission(entity.PermVoidAuthorize) {
		return nil, domain.ErrNotAuthorized
	}

	token, err := jwt.GenerateApproval(uc.cfg.Secret, user.Username, entity.PermVoidAuthorize, uc.cfg.Issuer, uc.cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("firmar aprobación: %w", err)
	}
	uc.log.Info().Str("supervisor", user.Username).Msg("supervisor verificado")
	return &Approval{supervisor: user.Username, token: token, expiresAt: uc.now().Add(uc.cfg.TTL)}, nil
}

// Void anula la venta saleID a nombre del cajero actor, con la aprobación emitida por Authorize.
// approvedBy debe coincidir con el supervisor del token.
//
// Retorna:
//   - domain.ErrApprovalRequired token ausente, inválido, vencido o de otro supervisor.
//   - domain.ErrNotAuthorized    el supervisor que aprueba es el mismo usuario que anula.
//   - domain.ErrNotFound         la venta no existe o ya fue anulada (estado terminal).
func (uc *VoidUseCase) Void(ctx context.Context, actor string, saleID int64, in dto.VoidRequest) (*dto.VoidResponse, error) {
	supervisor, err := uc.verifyApproval(in)
	if err != nil {
		return nil, err
	}
	// La aprobación exige una segunda identidad.
	if supervisor == actor {
		return nil, fmt.Errorf("%w: el supervisor no puede aprobar su propia anulación", domain.ErrNotAuthorized)
	}

	var sale *entity.Sale
	var adjustments []entity.StockAdjustment
	err = uc.tx.RunSales(ctx, func(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) error {
		// La marca condicional decide quién gana si dos anulaciones compiten por la misma venta.
		s, err := saleRepo.MarkVoided(ctx, saleID, supervisor, uc.now().UTC())
		if err != nil {
			return err
		}
		adj, err := uc.adjuster.ApplyLines(ctx, productRepo, s.Items, +1)
		if err != nil {
			return err
		}
		sale, adjustments = s, adj
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).Int64("sale_id", saleID).Msg("anulación fallida")
		}
		return nil, err
	}

	uc.audit.Record(ctx, entity.ActionVoid, fmt.Sprintf("Voided Sale #%d", sale.ID), actor, entity.VoidMetadata{
		Items:      sale.Items,
		Total:      sale.Total,
		SaleID:     sale.ID,
		ApprovedBy: supervisor,
	})
	uc.log.Info().Int64("sale_id", sale.ID).Str("user", actor).Str("approved_by", supervisor).Msg("venta anulada")

	return &dto.VoidResponse{Message: "Voided", Adjustments: toAdjustmentDTOs(adjustments)}, nil
}

func (uc *VoidUseCase) verifyApproval(in dto.VoidRequest) (string, error) {
	if in.ApprovalToken == "" || in.ApprovedBy == "" {
		return "", domain.ErrApprovalRequired
	}
	supervisor, capability, err := jwt.ParseApproval(uc.cfg.Secret, in.ApprovalToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrApprovalRequired, err)
	}
	if capability != entity.PermVoidAuthorize {
		return "", domain.ErrNotAuthorized
	}
	if supervisor != in.ApprovedBy {
		return "", fmt.Errorf("%w: la aprobación pertenece a otro supervisor", domain.ErrApprovalRequired)
	}
	return supervisor, nil
}
