package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/climatiza-api/internal/infrastructure/postgres"
	"github.com/jhoicas/climatiza-api/pkg/config"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// Globals flags comunes a todos los comandos.
type Globals struct {
	Debug   bool
	Version string
}

func (g *Globals) logger(cfg *config.Config) *logger.Logger {
	level := cfg.App.LogLevel
	if g.Debug {
		level = "debug"
	}
	// Consola legible: hvacctl se usa a mano.
	return logger.New(logger.Config{Env: "development", Level: level, Output: os.Stderr})
}

// connect carga la configuración y abre el pool. El llamador cierra el pool.
func (g *Globals) connect(ctx context.Context) (*config.Config, *pgxpool.Pool, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := g.logger(cfg)
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return cfg, pool, log, nil
}
