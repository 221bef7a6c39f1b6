package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"vivapay-be/internal/config"
	"vivapay-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

var dsnQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// buildDSN renders the lib/pq connection string. DB_URL wins when set;
// otherwise the discrete fields are quoted so passwords may hold spaces or quotes.
func buildDSN(cfg *config.Config) (string, error) {
	if cfg.DBURL != "" {
		dsn, err := pq.ParseURL(cfg.DBURL)
		if err != nil {
			return "", fmt.Errorf("invalid DB_URL: %w", err)
		}
		return dsn, nil
	}

	sslmode := cfg.DBSSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	fields := [][2]string{
		{"host", cfg.DBHost},
		{"port", cfg.DBPort},
		{"user", cfg.DBUser},
		{"password", cfg.DBPassword},
		{"dbname", cfg.DBName},
		{"sslmode", sslmode},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s='%s'", f[0], dsnQuoter.Replace(f[1])))
	}
	return strings.Join(parts, " "), nil
}

// NewDatabase opens and pings the Postgres pool holding payments and webhook events.
func NewDatabase(cfg *config.Config) (*sql.DB, error) {
	return newDatabaseWithDriver(cfg, "postgres")
}

func newDatabaseWithDriver(cfg *config.Config, driverName string) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.L().Info("Database connection established",
		zap.String("host", cfg.DBHost),
		zap.String("db", cfg.DBName),
		zap.Int("max_open_conns", maxOpenConns),
	)
	return db, nil
}

// InitDB is NewDatabase for process startup; it exits on failure.
func InitDB(cfg *config.Config) *sql.DB {
	db, err := NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("Database unavailable", zap.Error(err))
	}
	return db
}
