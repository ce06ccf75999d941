package commands

import (
	"context"
	"fmt"

	"github.com/jhoicas/climatiza-api/internal/infrastructure/postgres"
)

type MigrateCmd struct {
	Print bool `help:"Imprime el SQL sin aplicarlo"`
}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	if m.Print {
		fmt.Println(postgres.Schema())
		return nil
	}
	_, pool, log, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrar: %w", err)
	}
	log.Info().Msg("esquema aplicado")
	return nil
}
