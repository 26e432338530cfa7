// seed prepara una base nueva: aplica migraciones, carga productos si la tabla está vacía
// y crea el usuario admin con todas las capacidades si no existe ningún usuario.
//
// Uso: go run ./cmd/seed [-products productos.csv] [-latin1]
// Sin -products se cargan los productos de muestra.
package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/infrastructure/postgres"
	"github.com/buildmaster/backoffice-api/pkg/config"
	"github.com/buildmaster/backoffice-api/pkg/logger"
)

const (
	adminUsername = "admin"
	adminPassword = "admin123"
)

func main() {
	csvPath := flag.String("products", "", "CSV name,category,price,stock,unit")
	latin1 := flag.Bool("latin1", false, "el CSV está codificado en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	products := postgres.NewProductRepository(pool)
	n, err := products.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("contar productos")
	}
	if n == 0 {
		list := sampleProducts()
		if *csvPath != "" {
			f, err := os.Open(*csvPath)
			if err != nil {
				log.Fatal().Err(err).Str("file", *csvPath).Msg("abrir CSV")
			}
			list, err = parseProductsCSV(f, *latin1)
			f.Close()
			if err != nil {
				log.Fatal().Err(err).Str("file", *csvPath).Msg("leer CSV")
			}
		}
		for _, p := range list {
			if err := products.Create(ctx, p); err != nil {
				log.Fatal().Err(err).Str("product", p.Name).Msg("insertar producto")
			}
		}
		log.Info().Int("count", len(list)).Msg("productos cargados")
	} else {
		log.Info().Int("count", n).Msg("inventario existente, sin cambios")
	}

	users := postgres.NewUserRepository(pool)
	n, err = users.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("contar usuarios")
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("usuarios existentes, no se crea admin")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash de contraseña")
	}
	admin := &entity.User{Username: adminUsername, PasswordHash: string(hash), Permissions: entity.AllPermissions}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("crear admin")
	}
	log.Warn().Str("username", adminUsername).Msg("usuario admin creado con contraseña por defecto; cámbiela")
}
