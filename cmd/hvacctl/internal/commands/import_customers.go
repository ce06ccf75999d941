package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jhoicas/climatiza-api/internal/application/crm"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/geo"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/postgres"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/spreadsheet"
)

type ImportCustomersCmd struct {
	Company string `help:"ID de la empresa" required:""`
	File    string `arg:"" help:"Fichero .xlsx" type:"existingfile"`
	DryRun  bool   `help:"Valida sin guardar"`
	Geocode bool   `help:"Geocodifica las direcciones importadas"`
}

func (cmd *ImportCustomersCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, pool, log, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer f.Close()

	var geocoder ports.Geocoder
	if cmd.Geocode {
		geocoder = geo.NewNominatim(cfg.Geo)
	}
	customers := crm.NewCustomerUseCase(postgres.NewCustomerRepository(pool), geocoder, log)
	importer := crm.NewImportUseCase(spreadsheet.NewCustomerReader(), customers)

	res, err := importer.Import(ctx, cmd.Company, f, cmd.DryRun)
	if err != nil {
		return fmt.Errorf("importar %s: %w", cmd.File, err)
	}
	log.Info().
		Int("total", res.Total).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("errors", len(res.Errors)).
		Bool("dry_run", res.DryRun).
		Msg("importación de clientes")

	if len(res.Errors) > 0 {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Errors)
	}
	return nil
}
