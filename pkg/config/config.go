package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Tables   TableConfig
	CORS     CORSConfig
	Log      LogConfig
	Realtime RealtimeConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig carries the signing secret sources and per-type token lifetimes.
// SecretValue wins over SecretRef; SecretRef names an entry in the managed
// secret store and is resolved once at startup.
type JWTConfig struct {
	SecretValue string
	SecretRef   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

// TableConfig names the backing tables so deployments can point the service
// at environment-specific schemas.
type TableConfig struct {
	Users            string
	Incidents        string
	IncidentComments string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RealtimeConfig governs the connection registry and incident event fan-out.
type RealtimeConfig struct {
	Enabled       bool
	EventChannel  string
	AlertChannel  string
	ConnectionTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		SecretValue: v.GetString("JWT_SECRET_VALUE"),
		SecretRef:   v.GetString("JWT_SECRET_REF"),
		AccessTTL:   parseDuration(v.GetString("ACCESS_TOKEN_TTL"), 15*time.Minute),
		RefreshTTL:  parseDuration(v.GetString("REFRESH_TOKEN_TTL"), 12*time.Hour),
	}

	cfg.Tables = TableConfig{
		Users:            v.GetString("USERS_TABLE"),
		Incidents:        v.GetString("INCIDENTS_TABLE"),
		IncidentComments: v.GetString("INCIDENT_COMMENTS_TABLE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Realtime = RealtimeConfig{
		Enabled:       v.GetBool("ENABLE_REALTIME"),
		EventChannel:  v.GetString("REALTIME_EVENT_CHANNEL"),
		AlertChannel:  v.GetString("REALTIME_ALERT_CHANNEL"),
		ConnectionTTL: parseDuration(v.GetString("REALTIME_CONNECTION_TTL"), 2*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "alerta_utec")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET_VALUE", "")
	v.SetDefault("JWT_SECRET_REF", "")
	v.SetDefault("ACCESS_TOKEN_TTL", "900s")
	v.SetDefault("REFRESH_TOKEN_TTL", "43200s")

	v.SetDefault("USERS_TABLE", "users")
	v.SetDefault("INCIDENTS_TABLE", "incidents")
	v.SetDefault("INCIDENT_COMMENTS_TABLE", "incident_comments")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_REALTIME", false)
	v.SetDefault("REALTIME_EVENT_CHANNEL", "incidents:events")
	v.SetDefault("REALTIME_ALERT_CHANNEL", "incidents:alerts")
	v.SetDefault("REALTIME_CONNECTION_TTL", "2h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
