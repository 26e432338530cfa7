package entity

import (
	"slices"
	"time"
)

// Capacidades (permisos) asignables a un usuario.
const (
	PermDashboard     = "dashboard"
	PermInventory     = "inventory"
	PermPOS           = "pos"
	PermReports       = "reports"
	PermActivity      = "activity"
	PermEmployees     = "employees"
	PermVoidAuthorize = "void_authorize" // puede autorizar anulaciones como supervisor
)

// AllPermissions lista completa, usada para el usuario administrador inicial.
var AllPermissions = []string{
	PermDashboard, PermInventory, PermPOS, PermReports, PermActivity, PermEmployees, PermVoidAuthorize,
}

// IsKnownPermission indica si p es una capacidad válida.
func IsKnownPermission(p string) bool {
	return slices.Contains(AllPermissions, p)
}

// User cuenta de acceso. EmployeeID enlaza opcionalmente con un empleado de RR.HH.;
// borrar el empleado no borra el usuario.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt
	Permissions  []string
	EmployeeID   *int64
	CreatedAt    time.Time
}

// HasPermission indica si el usuario posee la capacidad.
func (u *User) HasPermission(p string) bool {
	return slices.Contains(u.Permissions, p)
}
