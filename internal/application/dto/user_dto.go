package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
	EmployeeID  *int64   `json:"employeeId,omitempty"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Permissions []string  `json:"permissions"`
	EmployeeID  *int64    `json:"employeeId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreatedResponse id asignado a un recurso nuevo.
type CreatedResponse struct {
	ID int64 `json:"id"`
}
