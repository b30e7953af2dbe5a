package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DBDriver   string
	DSN        string
	SQLitePath string

	RedisURL      string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	StorageDir string

	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails map[string]bool

	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string
	CORSOrigins        []string

	Seed bool
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		Port:               getEnv("PORT", "8080"),
		AppEnv:             strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		SQLitePath:         getEnv("SQLITE_PATH", "cosmetica.db"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		StorageDir:         getEnv("STORAGE_DIR", "uploads"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AdminEmails:        map[string]bool{},
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		BaseURL:            strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigins:        splitList(os.Getenv("CORS_ORIGINS")),
	}
	c.DSN = postgresDSN()

	var err error
	if c.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return c, err
	}
	if c.CacheTTL, err = durationEnv("CACHE_TTL", 5*time.Minute); err != nil {
		return c, err
	}
	if c.TokenTTL, err = durationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return c, err
	}
	if v := os.Getenv("SEED"); v != "" {
		if c.Seed, err = strconv.ParseBool(v); err != nil {
			return c, fmt.Errorf("SEED: %w", err)
		}
	}
	for _, e := range splitList(os.Getenv("ADMIN_EMAILS")) {
		c.AdminEmails[strings.ToLower(e)] = true
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return c, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return c, fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	return c, nil
}

func postgresDSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", getEnv("POSTGRES_USER", "postgres"))
	pass := getEnv("DB_PASSWORD", getEnv("POSTGRES_PASSWORD", "postgres"))
	name := getEnv("DB_NAME", getEnv("POSTGRES_DB", "cosmetica"))
	ssl := getEnv("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
