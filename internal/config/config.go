package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port           string
	Env            string
	RequestTimeout time.Duration

	StorageDriver        string
	DatabaseURL          string
	SQLitePath           string
	MongoURI             string
	DBName               string
	MaxOpenConns         int
	MaxIdleConns         int
	ConnMaxLifetime      time.Duration
	HydrationConcurrency int

	JWTSecret         string
	AccessTokenTTL    time.Duration
	OIDCIssuer        string
	OIDCAudience      string
	AdminEmail        string
	AdminPasswordHash string

	StripeSecretKey string
	PaymentCurrency string
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	cfg := Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("APP_ENV", "production"),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT_SECONDS", 5, time.Second),

		StorageDriver:        strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", DriverPostgres)),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		SQLitePath:           getEnvOrDefault("SQLITE_PATH", "farmdirect.db"),
		MongoURI:             getEnvOrDefault("MONGO_URI", ""),
		DBName:               getEnvOrDefault("DB_NAME", "farmdirect"),
		MaxOpenConns:         getIntEnv("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:         getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:      getDurationEnv("DB_CONN_MAX_LIFETIME_MINUTES", 30, time.Minute),
		HydrationConcurrency: getIntEnv("HYDRATION_CONCURRENCY", 4),

		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		OIDCIssuer:        getEnvOrDefault("OIDC_ISSUER", ""),
		OIDCAudience:      getEnvOrDefault("OIDC_AUDIENCE", ""),
		AdminEmail:        strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPasswordHash: getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),

		StripeSecretKey: getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		PaymentCurrency: strings.ToLower(getEnvOrDefault("PAYMENT_CURRENCY", "usd")),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if (c.OIDCIssuer == "") != (c.OIDCAudience == "") {
		errs = append(errs, errors.New("OIDC_ISSUER and OIDC_AUDIENCE must be set together"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
