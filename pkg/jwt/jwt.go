package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audiencias: un token de aprobación nunca sirve como sesión y viceversa.
const (
	audienceSession  = "session"
	audienceApproval = "void-approval"
)

// Claims incluye los claims estándar JWT más la identidad y permisos del usuario.
// Los permisos viajan en el token para que el middleware decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64    `json:"user_id"`
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
}

// Identity datos de sesión extraídos de un token válido.
type Identity struct {
	UserID      int64
	Username    string
	Permissions []string
}

// Generate genera un token de sesión firmado.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(id.UserID, 10),
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:      id.UserID,
		Username:    id.Username,
		Permissions: id.Permissions,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token de sesión y devuelve la identidad.
// Retorna error si el token es inválido, expirado, de otra audiencia o tiene firma incorrecta.
func Parse(secret, tokenString string) (*Identity, error) {
	claims, err := parse(secret, tokenString, audienceSession)
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:      claims.UserID,
		Username:    claims.Username,
		Permissions: claims.Permissions,
	}, nil
}

// ApprovalClaims prueba firmada de que un supervisor se re-autenticó con la capacidad requerida.
type ApprovalClaims struct {
	jwt.RegisteredClaims
	Supervisor string `json:"supervisor"`
	Capability string `json:"capability"`
}

// GenerateApproval firma un token de aprobación de corta vida para el supervisor indicado.
func GenerateApproval(secret, supervisor, capability, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := ApprovalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   supervisor,
			Audience:  jwt.ClaimStrings{audienceApproval},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Supervisor: supervisor,
		Capability: capability,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseApproval valida un token de aprobación y devuelve supervisor y capacidad.
func ParseApproval(secret, tokenString string) (supervisor, capability string, err error) {
	if secret == "" {
		return "", "", fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &ApprovalClaims{}, keyFunc(secret),
		jwt.WithAudience(audienceApproval))
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(*ApprovalClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("claims inválidos")
	}
	return claims.Supervisor, claims.Capability, nil
}

func parse(secret, tokenString, audience string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc(secret), jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}
