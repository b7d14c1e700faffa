// seed aplica las migraciones y puebla el catálogo con los datos base:
// tipos de atributo por defecto y la categoría "Default Product".
//
// Uso: go run ./cmd/seed
// La conexión se configura vía DATABASE_URL o DB_HOST, DB_PORT, etc.
// Es seguro correrlo más de una vez: cada paso de seed es idempotente.
package main

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/seed"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando seed del catálogo")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}

	store := postgres.NewStore(pool)
	if err := seed.New(store, log).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("ejecutar seed")
	}

	log.Info().Msg("seed completado")
}
