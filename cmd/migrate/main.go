// Comando migrate: aplica las migraciones de esquema embebidas y reporta la versión.
package main

import (
	"os"

	"github.com/jhoicas/Inventario-componentes/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-componentes/pkg/config"
	"github.com/jhoicas/Inventario-componentes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	dsn := cfg.DB.ConnectionString()
	if err := postgres.Migrate(dsn); err != nil {
		log.Error().Err(err).Msg("migración fallida")
		os.Exit(1)
	}
	version, err := postgres.MigrationVersion(dsn)
	if err != nil {
		log.Error().Err(err).Msg("leer versión de esquema")
		os.Exit(1)
	}
	log.Info().Int64("version", version).Msg("esquema al día")
}
