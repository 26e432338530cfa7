package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appanalytics "github.com/buildmaster/backoffice-api/internal/application/analytics"
	"github.com/buildmaster/backoffice-api/internal/application/audit"
	"github.com/buildmaster/backoffice-api/internal/application/auth"
	"github.com/buildmaster/backoffice-api/internal/application/sales"
	"github.com/buildmaster/backoffice-api/internal/application/usecase"
	infrapdf "github.com/buildmaster/backoffice-api/internal/infrastructure/pdf"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/postgres"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/buildmaster/backoffice-api/internal/interfaces/http"
	"github.com/buildmaster/backoffice-api/pkg/config"
	"github.com/buildmaster/backoffice-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Montos como número JSON (280.00) y no como string.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Auditoría: se escribe después del commit; un fallo se registra y no revierte la operación.
	recorder := audit.NewLogger(activityRepo, log.Component("audit"))
	adjuster := sales.NewStockAdjuster(log.Component("stock"))

	checkoutUC := sales.NewCheckoutUseCase(txRunner, adjuster, recorder, log.Component("checkout"))
	voidUC := sales.NewVoidUseCase(userRepo, txRunner, adjuster, recorder, sales.ApprovalConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.ApprovalTTL) * time.Second,
	}, log.Component("void"))
	salesQueryUC := sales.NewQueryUseCase(saleRepo,
		infrapdf.NewReceiptGenerator(), spreadsheet.NewSalesExporter(), cfg.POS.BusinessName)
	auditUC := audit.NewQueryUseCase(activityRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	userUC := usecase.NewUserUseCase(userRepo, recorder)
	authUC := auth.NewAuthUseCase(userRepo, recorder, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.HTTP.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.Docs.Enabled {
		if _, err := os.Stat(cfg.Docs.FilePath); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.Docs.FilePath,
				Path:     "docs",
				Title:    "BuildMaster Back-office API",
			}))
		} else {
			log.Warn().Str("file", cfg.Docs.FilePath).Msg("swagger habilitado pero el archivo no existe")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:                authUC,
		CheckoutUC:            checkoutUC,
		VoidUC:                voidUC,
		SalesUC:               salesQueryUC,
		AuditUC:               auditUC,
		DashboardUC:           dashboardUC,
		ProductUC:             productUC,
		UserUC:                userUC,
		JWTSecret:             cfg.JWT.Secret,
		SupervisorMaxAttempts: cfg.POS.SupervisorMaxAttempts,
		SupervisorWindow:      time.Duration(cfg.POS.SupervisorWindowSeconds) * time.Second,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func corsOrigins(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "*"
	}
	return raw
}
