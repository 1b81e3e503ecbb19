package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const devJWTSecret = "flavorfleet-dev-secret"

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Session       SessionConfig
	Events        EventsConfig
	Observability ObservabilityConfig
	Reports       ReportsConfig
	Log           LogConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	CORSOrigins    []string
	TrustedProxies []string
}

type DatabaseConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

type AuthConfig struct {
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
	LoginRatePerMin   int
	LoginBurst        int
}

type StorageConfig struct {
	UploadDir     string
	PublicBaseURL string
}

type SessionConfig struct {
	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type EventsConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
}

type ObservabilityConfig struct {
	ServiceName    string
	JaegerEndpoint string
}

type ReportsConfig struct {
	Timezone string
	Currency string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env when present and fills every section from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			GinMode:        getEnv("GIN_MODE", "debug"),
			CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1")),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:         getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=flavorfleet port=5432 sslmode=disable"),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			AdminUsername:     getEnv("ADMIN_USERNAME", ""),
			AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TokenTTL:          getDuration("TOKEN_TTL", 12*time.Hour),
			LoginRatePerMin:   getInt("LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:        getInt("LOGIN_BURST", 5),
		},
		Storage: StorageConfig{
			UploadDir:     getEnv("UPLOAD_DIR", "./public/uploads"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(getEnv("SESSION_STORE", "memory")),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0),
			KeyPrefix:     getEnv("SESSION_KEY_PREFIX", "flavorfleet:session:"),
		},
		Events: EventsConfig{
			KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
			KafkaTopic:   getEnv("KAFKA_TOPIC_CATALOG_EVENTS", "catalog-events"),
		},
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("SERVICE_NAME", "flavorfleet-admin"),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Reports: ReportsConfig{
			Timezone: getEnv("REPORT_TIMEZONE", "UTC"),
			Currency: getEnv("REPORT_CURRENCY", "Rs."),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		log.Printf("Warning: JWT_SECRET not set, using development secret")
		cfg.Auth.JWTSecret = devJWTSecret
	}
	if cfg.Auth.AdminUsername == "" || (cfg.Auth.AdminPassword == "" && cfg.Auth.AdminPasswordHash == "") {
		log.Printf("Warning: ADMIN_USERNAME and ADMIN_PASSWORD (or ADMIN_PASSWORD_HASH) must be set to log in")
	}

	log.Printf("Config loaded: driver=%s, port=%s, session=%s", cfg.Database.Driver, cfg.Server.Port, cfg.Session.Store)
	return cfg
}

// Location resolves the report timezone, falling back to UTC.
func (r ReportsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		log.Printf("Warning: unknown REPORT_TIMEZONE %q, using UTC", r.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return v
}

func getBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultVal.String()))
	if err != nil {
		return defaultVal
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
