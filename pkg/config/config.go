package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	AI       AIConfig
	Geo      GeoConfig
	Calendar CalendarConfig
	Links    LinksConfig
	Metrics  MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	// PlatformCompanyID empresa operadora: sus admins pueden listar y gestionar otras empresas.
	PlatformCompanyID string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string // lista separada por comas; "*" = cualquiera
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIConfig proveedores de IA y transcripción.
// Provider: "anthropic", "gemini" o "" (solo analizador por palabras clave).
type AIConfig struct {
	Provider          string
	AnthropicAPIKey   string
	AnthropicModel    string
	GeminiAPIKey      string
	GeminiModel       string
	TranscriptionURL  string // endpoint compatible con OpenAI /v1/audio/transcriptions
	TranscriptionKey  string
	TranscriptionLang string
}

// GeoConfig geocodificador compatible con Nominatim.
type GeoConfig struct {
	BaseURL   string
	UserAgent string
	Email     string
}

// CalendarConfig federación con calendario externo (Microsoft Graph, client credentials).
type CalendarConfig struct {
	TenantTokenURL string
	ClientID       string
	ClientSecret   string
	Scope          string
	GraphBaseURL   string
	CalendarUser   string // buzón/usuario cuyo calendario se sincroniza
}

// Enabled indica si hay credenciales suficientes para sincronizar.
func (c CalendarConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TenantTokenURL != "" && c.CalendarUser != ""
}

// LinksConfig enlaces dinámicos compartibles.
type LinksConfig struct {
	PublicBaseURL string
	DefaultTTL    time.Duration
}

// MetricsConfig exposición de métricas Prometheus.
type MetricsConfig struct {
	Enabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	ttlHours := getInt(v, "LINKS_DEFAULT_TTL_HOURS", 72)
	if ttlHours < 0 {
		return nil, fmt.Errorf("config: LINKS_DEFAULT_TTL_HOURS no puede ser negativo")
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "climatiza-crm"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),

			PlatformCompanyID: getString(v, "PLATFORM_COMPANY_ID", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "climatiza"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "climatiza-crm"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "*"),
		},
		AI: AIConfig{
			Provider:          strings.ToLower(getString(v, "AI_PROVIDER", "")),
			AnthropicAPIKey:   getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel:    getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
			GeminiAPIKey:      getString(v, "GEMINI_API_KEY", ""),
			GeminiModel:       getString(v, "GEMINI_MODEL", "gemini-2.0-flash"),
			TranscriptionURL:  getString(v, "TRANSCRIPTION_URL", "https://api.openai.com/v1/audio/transcriptions"),
			TranscriptionKey:  getString(v, "TRANSCRIPTION_API_KEY", ""),
			TranscriptionLang: getString(v, "TRANSCRIPTION_LANGUAGE", "es"),
		},
		Geo: GeoConfig{
			BaseURL:   getString(v, "GEO_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getString(v, "GEO_USER_AGENT", "climatiza-crm/1.0"),
			Email:     getString(v, "GEO_EMAIL", ""),
		},
		Calendar: CalendarConfig{
			TenantTokenURL: getString(v, "CALENDAR_TOKEN_URL", ""),
			ClientID:       getString(v, "CALENDAR_CLIENT_ID", ""),
			ClientSecret:   getString(v, "CALENDAR_CLIENT_SECRET", ""),
			Scope:          getString(v, "CALENDAR_SCOPE", "https://graph.microsoft.com/.default"),
			GraphBaseURL:   getString(v, "CALENDAR_GRAPH_URL", "https://graph.microsoft.com/v1.0"),
			CalendarUser:   getString(v, "CALENDAR_USER", ""),
		},
		Links: LinksConfig{
			PublicBaseURL: strings.TrimRight(getString(v, "LINKS_PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			DefaultTTL:    time.Duration(ttlHours) * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", false),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
