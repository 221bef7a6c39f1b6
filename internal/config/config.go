package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingCredentials = errors.New("VIVA_MERCHANT_ID and VIVA_API_KEY must be set")

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// DBURL overrides the discrete DB_* fields when set.
	DBURL string

	AppPort string
	AppEnv  string

	JWTSecret         string
	InternalSecretKey string

	VivaMerchantID  string
	VivaAPIKey      string
	VivaTestMode    bool
	VivaSourceCode  string
	VivaRequestLang string
	VivaHTTPTimeout time.Duration
}

// LoadConfig reads a .env file when present and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBURL:             os.Getenv("DB_URL"),
		AppPort:           getEnv("APP_PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
		VivaMerchantID:    os.Getenv("VIVA_MERCHANT_ID"),
		VivaAPIKey:        os.Getenv("VIVA_API_KEY"),
		VivaTestMode:      getBool("VIVA_TEST_MODE", true),
		VivaSourceCode:    os.Getenv("VIVA_SOURCE_CODE"),
		VivaRequestLang:   os.Getenv("VIVA_REQUEST_LANG"),
		VivaHTTPTimeout:   getDuration("VIVA_HTTP_TIMEOUT", 15*time.Second),
	}

	if cfg.VivaMerchantID == "" || cfg.VivaAPIKey == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
