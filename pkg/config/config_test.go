package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 60, cfg.JWT.Expiration)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 72*time.Hour, cfg.Links.DefaultTTL)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Calendar.Enabled())
}

func TestFromViper_SobrescribeDesdeEntorno(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "6543")
	v.Set("HTTP_PORT", 9090)
	v.Set("AI_PROVIDER", "Gemini")
	v.Set("METRICS_ENABLED", "true")
	v.Set("LINKS_PUBLIC_BASE_URL", "https://crm.example.com/")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "https://crm.example.com", cfg.Links.PublicBaseURL)
}

func TestFromViper_TTLNegativoEsError(t *testing.T) {
	v := viper.New()
	v.Set("LINKS_DEFAULT_TTL_HOURS", -1)

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "crm", Password: "p@ss:word", DBName: "climatiza", SSLMode: "disable"}
	assert.Equal(t, "postgres://crm:p%40ss%3Aword@db:5432/climatiza?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
