package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	appanalytics "github.com/buildmaster/backoffice-api/internal/application/analytics"
	"github.com/buildmaster/backoffice-api/internal/application/audit"
	"github.com/buildmaster/backoffice-api/internal/application/auth"
	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/application/sales"
	"github.com/buildmaster/backoffice-api/internal/application/usecase"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CheckoutUC  *sales.CheckoutUseCase
	VoidUC      *sales.VoidUseCase
	SalesUC     *sales.QueryUseCase
	AuditUC     *audit.QueryUseCase
	DashboardUC *appanalytics.DashboardUseCase
	ProductUC   *usecase.ProductUseCase
	UserUC      *usecase.UserUseCase
	JWTSecret   string

	// Intentos fallidos de verify-supervisor permitidos por ventana (IP + username).
	SupervisorMaxAttempts int
	SupervisorWindow      time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/logout", authHandler.Logout)

	// Ventas: checkout desde el POS, anulación con aprobación de supervisor
	salesHandler := NewSalesHandler(deps.CheckoutUC, deps.VoidUC, deps.SalesUC)
	protected.Post("/checkout", RequirePermission(entity.PermPOS), salesHandler.Checkout)
	protected.Post("/verify-supervisor",
		RequirePermission(entity.PermPOS, entity.PermReports),
		supervisorLimiter(deps.SupervisorMaxAttempts, deps.SupervisorWindow),
		salesHandler.VerifySupervisor,
	)

	salesGroup := protected.Group("/sales", RequirePermission(entity.PermReports))
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/export", salesHandler.Export)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesHandler.Receipt)
	salesGroup.Post("/:id/void", salesHandler.Void)

	// Registro de actividad
	logs := protected.Group("/logs", RequirePermission(entity.PermActivity))
	activityHandler := NewActivityHandler(deps.AuditUC)
	logs.Get("/", activityHandler.List)
	logs.Get("/:id", activityHandler.GetByID)

	// Tablero de resumen
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", RequirePermission(entity.PermDashboard), dashboardHandler.GetSummary)

	// Inventario (lectura; el POS también lo necesita)
	inventory := protected.Group("/inventory", RequirePermission(entity.PermInventory, entity.PermPOS))
	inventoryHandler := NewInventoryHandler(deps.ProductUC)
	inventory.Get("/", inventoryHandler.List)
	inventory.Get("/:id", inventoryHandler.GetByID)

	// Usuarios
	users := protected.Group("/users", RequirePermission(entity.PermEmployees))
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Delete("/:id", userHandler.Delete)
}

// supervisorLimiter limita los intentos fallidos de autorización por IP y username.
// Las respuestas exitosas no consumen cupo.
func supervisorLimiter(maxAttempts int, window time.Duration) fiber.Handler {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:                    maxAttempts,
		Expiration:             window,
		SkipSuccessfulRequests: true,
		KeyGenerator: func(c *fiber.Ctx) string {
			var in dto.VerifySupervisorRequest
			_ = c.BodyParser(&in)
			return c.IP() + "|" + in.Username
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "TOO_MANY_ATTEMPTS",
				Message: "demasiados intentos fallidos, espere antes de reintentar",
			})
		},
	})
}
