package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/buildmaster/backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/buildmaster/backoffice-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "buildmaster-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequirePermission para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(perms ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission(perms...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":       true,
				"username": apphttp.GetUsername(c),
			})
		},
	)
	return app
}

// tokenWith genera un JWT de sesión con las capacidades indicadas.
func tokenWith(t *testing.T, username string, perms ...string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: 1, Username: username, Permissions: perms}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el usuario tiene la capacidad requerida → HTTP 200.
func TestRequirePermission_CajeroAccedeAlPOS(t *testing.T) {
	app := buildTestApp("pos")
	resp := doRequest(t, app, tokenWith(t, "cajero1", "pos"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "cajero1", body["username"])
}

// Caso 1b: basta con una de las capacidades permitidas.
func TestRequirePermission_UnaDeVarias(t *testing.T) {
	app := buildTestApp("inventory", "pos")
	resp := doRequest(t, app, tokenWith(t, "cajero1", "pos"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 2: sin la capacidad → HTTP 403 FORBIDDEN.
func TestRequirePermission_SinCapacidad_Retorna403(t *testing.T) {
	app := buildTestApp("activity")
	resp := doRequest(t, app, tokenWith(t, "cajero1", "pos", "reports"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Caso 3: token válido sin ninguna capacidad → HTTP 403.
func TestRequirePermission_TokenSinPermisos_Retorna403(t *testing.T) {
	app := buildTestApp("pos")
	resp := doRequest(t, app, tokenWith(t, "nadie"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Caso 4: sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestRequirePermission_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp("pos")
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso 5: token malformado → HTTP 401 INVALID_TOKEN.
func TestRequirePermission_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp("pos")
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso 6: un token de aprobación de supervisor no sirve como sesión.
func TestRequirePermission_TokenDeAprobacion_Retorna401(t *testing.T) {
	tok, err := pkgjwt.GenerateApproval(testJWTSecret, "supervisor1", "void_authorize", testIssuer, time.Minute)
	require.NoError(t, err)

	app := buildTestApp("pos")
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware — extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeIdentidad(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":     apphttp.GetUserID(c),
			"username":    apphttp.GetUsername(c),
			"permissions": apphttp.GetPermissions(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenWith(t, "admin", "pos", "activity"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID      int64    `json:"user_id"`
		Username    string   `json:"username"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.UserID)
	assert.Equal(t, "admin", body.Username)
	assert.Equal(t, []string{"pos", "activity"}, body.Permissions)
}
