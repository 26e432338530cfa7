package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidPassword   = errors.New("contraseña inválida")
	ErrNotAuthorized     = errors.New("usuario sin autorización para anular ventas")
	ErrUsernameTaken     = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrApprovalRequired  = errors.New("se requiere aprobación de supervisor")
)
