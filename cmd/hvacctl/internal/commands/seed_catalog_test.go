package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestParseCatalog_CabecerasEnEspanolYComaDecimal(t *testing.T) {
	csv := "Referencia;Nombre;Categoría;Precio;IVA;Punto de pedido\n" +
		"CAP-35;Condensador 35µF;repuesto;12,50;21%;5\n" +
		"R32-3;Botella R32 3kg;gas;1.180,00;21;2\n" +
		"\n" +
		"CAP-35;Duplicado;repuesto;1;21;0\n" +
		";Sin referencia;repuesto;1;21;0\n"

	items, bad, err := ParseCatalog([]byte(csv), "auto", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "CAP-35", items[0].SKU)
	assert.Equal(t, entity.ProductPart, items[0].Category)
	assert.Equal(t, "12.5", items[0].Price.String())
	assert.Equal(t, "21", items[0].TaxRate.String())
	assert.Equal(t, entity.ProductRefrigerant, items[1].Category)
	assert.Equal(t, "1180", items[1].Price.String())

	require.Len(t, bad, 2)
	assert.Equal(t, 5, bad[0].Row)
	assert.Contains(t, bad[0].Message, "repetido")
	assert.Equal(t, 6, bad[1].Row)
}

func TestParseCatalog_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("sku,nombre,categoría\nVAL-1,Válvula de expansión,equipo\n")
	require.NoError(t, err)

	items, bad, err := ParseCatalog([]byte(latin1), "auto", 0)
	require.NoError(t, err)
	require.Empty(t, bad)
	require.Len(t, items, 1)
	assert.Equal(t, "Válvula de expansión", items[0].Name)
	assert.Equal(t, entity.ProductEquipment, items[0].Category)
}

func TestParseCatalog_SinColumnaSKU(t *testing.T) {
	_, _, err := ParseCatalog([]byte("nombre,precio\nFiltro,3\n"), "utf-8", 0)
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]string{"": "0", "7": "7", "7.25": "7.25", "7,25": "7.25", "1.234,5": "1234.5"} {
		d, err := parseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.String(), in)
	}
	_, err := parseAmount("-3")
	assert.Error(t, err)
	_, err = parseAmount("abc")
	assert.Error(t, err)
}
