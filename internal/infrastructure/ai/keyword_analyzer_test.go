package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func newAnalyzer(t *testing.T) *KeywordAnalyzer {
	t.Helper()
	a, err := NewKeywordAnalyzer()
	require.NoError(t, err)
	return a
}

func TestAnalyze_Fuga(t *testing.T) {
	res := newAnalyzer(t).Analyze("La unidad interior gotea y hay un charco en el suelo")
	assert.Equal(t, "leak", res.Category)
	assert.Equal(t, entity.PriorityHigh, res.Priority)
	assert.Contains(t, res.Keywords, "charco")
	assert.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "keywords", res.Source)
}

func TestAnalyze_GasEsUrgente(t *testing.T) {
	res := newAnalyzer(t).Analyze("Huele a gas junto a la caldera")
	assert.Equal(t, "gas", res.Category)
	assert.Equal(t, entity.PriorityUrgent, res.Priority)
}

func TestAnalyze_PalabraUrgenteElevaPrioridad(t *testing.T) {
	res := newAnalyzer(t).Analyze("Ruido fuerte en la máquina, es URGENTE")
	assert.Equal(t, "noise", res.Category)
	assert.Equal(t, entity.PriorityUrgent, res.Priority)
}

func TestAnalyze_SinCoincidencias(t *testing.T) {
	res := newAnalyzer(t).Analyze("Hola, quería información")
	assert.Equal(t, "general", res.Category)
	assert.Equal(t, entity.PriorityNormal, res.Priority)
	assert.Empty(t, res.Keywords)
	assert.Len(t, res.Suggestions, 1)
}

func TestLoadKeywordAnalyzer_Errores(t *testing.T) {
	_, err := LoadKeywordAnalyzer([]byte("rules:\n  - category: x\n    priority: altisima\n"))
	assert.Error(t, err)

	_, err = LoadKeywordAnalyzer([]byte("rules:\n  - category: x\n    priority: low\n    keywords: ['(']\n"))
	assert.Error(t, err)
}

func TestAnalyze_GanaLaReglaConMasCoincidencias(t *testing.T) {
	a, err := LoadKeywordAnalyzer([]byte(`
rules:
  - category: primera
    priority: low
    keywords: ['filtro']
  - category: segunda
    priority: low
    keywords: ['ruido', 'vibra']
`))
	require.NoError(t, err)

	assert.Equal(t, "segunda", a.Analyze("Filtro sucio, hace ruido y vibra").Category)
	// Empate: se queda la primera regla del fichero.
	assert.Equal(t, "primera", a.Analyze("Filtro con ruido").Category)
}
