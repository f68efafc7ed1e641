// Package db opens the gorm connection, applies the schema and seeds the
// first administrator.
package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/smithpartners/lawdesk/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var passwordRegex = regexp.MustCompile(`(password=)([^\s]+)`)

// ConnectAttempts bounds the retries while the database starts up.
var ConnectAttempts = 10

// Open connects to the configured database, retrying while it starts.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.DSN()
	if cfg.Driver == "postgres" {
		dsn = NormalizeDSN(dsn)
	}
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty, check DATABASE_DSN")
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < ConnectAttempts; i++ {
		gdb, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Warn("retrying db connection", zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := Ping(ctx, gdb); err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(dsn)))
	return gdb, nil
}

// Ping checks basic connectivity.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

// MaskDSN hides the password of a key=value or URL style DSN.
func MaskDSN(dsn string) string {
	if strings.Contains(dsn, "password=") {
		return passwordRegex.ReplaceAllString(dsn, `${1}***`)
	}
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		if at := strings.Index(rest, "@"); at >= 0 {
			if colon := strings.Index(rest[:at], ":"); colon >= 0 {
				return dsn[:i+3] + rest[:colon] + ":***" + rest[at:]
			}
		}
	}
	return dsn
}
