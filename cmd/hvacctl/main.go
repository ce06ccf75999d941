// hvacctl tareas de operación: migraciones, carga de catálogo, importación de clientes y tokens de desarrollo.
package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/jhoicas/climatiza-api/cmd/hvacctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Migrate         commands.MigrateCmd         `cmd:"" help:"Aplica el esquema de base de datos"`
		SeedCatalog     commands.SeedCatalogCmd     `cmd:"" help:"Carga un catálogo de repuestos desde CSV"`
		ImportCustomers commands.ImportCustomersCmd `cmd:"" help:"Importa clientes desde un .xlsx"`
		Token           commands.TokenCmd           `cmd:"" help:"Genera un JWT de desarrollo"`
		Debug           bool                        `help:"Logs en nivel debug."`
		Version         kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("hvacctl"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
