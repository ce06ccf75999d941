package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/postgres"
	"github.com/jhoicas/climatiza-api/pkg/textnorm"
)

type SeedCatalogCmd struct {
	Company   string `help:"ID de la empresa" required:""`
	File      string `arg:"" help:"CSV del catálogo" type:"existingfile"`
	Encoding  string `help:"Codificación del fichero" enum:"auto,utf-8,latin1" default:"auto"`
	Delimiter string `help:"Separador de campos; vacío detecta ; o ,"`
	DryRun    bool   `help:"Valida sin guardar"`
}

func (cmd *SeedCatalogCmd) Run(ctx context.Context, globals *Globals) error {
	raw, err := os.ReadFile(cmd.File)
	if err != nil {
		return err
	}
	var delim rune
	if cmd.Delimiter != "" {
		delim, _ = utf8.DecodeRuneInString(cmd.Delimiter)
	}
	items, rowErrs, err := ParseCatalog(raw, cmd.Encoding, delim)
	if err != nil {
		return err
	}
	for _, e := range rowErrs {
		fmt.Fprintf(os.Stderr, "fila %d: %s\n", e.Row, e.Message)
	}
	if cmd.DryRun {
		fmt.Printf("%d artículos válidos, %d filas con error\n", len(items), len(rowErrs))
		return nil
	}

	_, pool, log, err := globals.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	products := inventory.NewProductUseCase(postgres.NewProductRepository(pool))
	var created, skipped int
	for _, in := range items {
		_, err := products.Create(ctx, cmd.Company, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			return fmt.Errorf("sku %s: %w", in.SKU, err)
		}
	}
	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("row_errors", len(rowErrs)).
		Msg("catálogo cargado")
	return nil
}

// catalogColumns alias de cabecera (normalizados con textnorm.Key) por campo.
var catalogColumns = map[string]string{
	"sku": "sku", "referencia": "sku", "ref": "sku", "codigo": "sku",
	"nombre": "name", "name": "name", "articulo": "name",
	"descripcion": "description", "description": "description",
	"categoria": "category", "category": "category", "tipo": "category",
	"marca": "brand", "brand": "brand", "fabricante": "brand",
	"precio": "price", "price": "price", "pvp": "price",
	"iva": "tax_rate", "tax rate": "tax_rate", "impuesto": "tax_rate",
	"unidad": "unit", "unit": "unit",
	"punto de pedido": "reorder_point", "reorder point": "reorder_point", "stock minimo": "reorder_point",
}

var categoryAliases = map[string]string{
	"repuesto": entity.ProductPart, "pieza": entity.ProductPart,
	"refrigerante": entity.ProductRefrigerant, "gas": entity.ProductRefrigerant,
	"equipo": entity.ProductEquipment, "maquina": entity.ProductEquipment,
	"consumible": entity.ProductConsumable,
	"mano de obra": entity.ProductLabor, "servicio": entity.ProductLabor,
}

// CatalogRowError fila descartada del CSV. Row es la línea del fichero (la cabecera es la 1).
type CatalogRowError struct {
	Row     int
	Message string
}

// ParseCatalog decodifica el CSV. encoding "auto" toma ISO-8859-1 cuando el fichero no es UTF-8 válido;
// delim 0 detecta ';' o ',' en la cabecera.
func ParseCatalog(raw []byte, encoding string, delim rune) ([]dto.CreateProductRequest, []CatalogRowError, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var r io.Reader = bytes.NewReader(raw)
	if encoding == "latin1" || (encoding == "auto" && !utf8.Valid(raw)) {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	if delim == 0 {
		delim = ','
		header, _, _ := bytes.Cut(raw, []byte("\n"))
		if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
			delim = ';'
		}
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer cabecera: %w", err)
	}
	idx := make(map[string]int)
	for i, h := range header {
		if field, ok := catalogColumns[textnorm.Key(h)]; ok {
			if _, dup := idx[field]; !dup {
				idx[field] = i
			}
		}
	}
	if _, ok := idx["sku"]; !ok {
		return nil, nil, errors.New("falta la columna sku/referencia")
	}
	if _, ok := idx["name"]; !ok {
		return nil, nil, errors.New("falta la columna nombre")
	}

	var (
		items []dto.CreateProductRequest
		bad   []CatalogRowError
		seen  = make(map[string]int)
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, nil, err
			}
			bad = append(bad, CatalogRowError{Row: pe.Line, Message: pe.Err.Error()})
			continue
		}
		row, _ := cr.FieldPos(0)
		get := func(field string) string {
			i, ok := idx[field]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if strings.Join(rec, "") == "" {
			continue
		}

		in := dto.CreateProductRequest{
			SKU:         get("sku"),
			Name:        get("name"),
			Description: get("description"),
			Brand:       get("brand"),
			Unit:        get("unit"),
		}
		if in.SKU == "" || in.Name == "" {
			bad = append(bad, CatalogRowError{Row: row, Message: "sku y nombre son obligatorios"})
			continue
		}
		if first, ok := seen[in.SKU]; ok {
			bad = append(bad, CatalogRowError{Row: row, Message: fmt.Sprintf("sku %s repetido (fila %d)", in.SKU, first)})
			continue
		}
		if in.Category, err = parseCategory(get("category")); err != nil {
			bad = append(bad, CatalogRowError{Row: row, Message: err.Error()})
			continue
		}
		if in.Price, err = parseAmount(get("price")); err != nil {
			bad = append(bad, CatalogRowError{Row: row, Message: "precio: " + err.Error()})
			continue
		}
		if in.TaxRate, err = parseAmount(strings.TrimSuffix(get("tax_rate"), "%")); err != nil {
			bad = append(bad, CatalogRowError{Row: row, Message: "iva: " + err.Error()})
			continue
		}
		if in.ReorderPoint, err = parseAmount(get("reorder_point")); err != nil {
			bad = append(bad, CatalogRowError{Row: row, Message: "punto de pedido: " + err.Error()})
			continue
		}
		seen[in.SKU] = row
		items = append(items, in)
	}
	return items, bad, nil
}

func parseCategory(s string) (string, error) {
	if s == "" {
		return entity.ProductPart, nil
	}
	k := textnorm.Key(s)
	if entity.ValidProductCategory(k) {
		return k, nil
	}
	if c, ok := categoryAliases[k]; ok {
		return c, nil
	}
	return "", fmt.Errorf("categoría desconocida %q", s)
}

// parseAmount acepta "1234.5", "1234,5" y "1.234,50". Vacío es cero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("importe inválido %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("importe negativo %q", s)
	}
	return d, nil
}
