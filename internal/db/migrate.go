package db

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/smithpartners/lawdesk/internal/config"
	"github.com/smithpartners/lawdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// coreTables must exist after any migration path.
var coreTables = []string{"users", "cases", "clients", "documents", "events", "campaigns", "workflows", "chatbot_qas"}

// Migrate applies the schema according to cfg.Migrations: "auto" runs
// gorm AutoMigrate, "sql" runs the embedded SQL migrations, "off" only
// checks that the core tables exist.
func Migrate(gdb *gorm.DB, cfg config.DatabaseConfig, log *zap.Logger) error {
	switch cfg.Migrations {
	case "sql":
		if err := MigrateSQL(ToURLDSN(NormalizeDSN(cfg.DSN()))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	case "off":
	default:
		if err := AutoMigrate(gdb); err != nil {
			return err
		}
	}
	for _, table := range coreTables {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	log.Info("schema ready", zap.String("mode", cfg.Migrations))
	return nil
}

// AutoMigrate creates or updates every model table.
func AutoMigrate(gdb *gorm.DB) error {
	for _, m := range models.All() {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL executes the embedded migrations against a postgres URL.
func MigrateSQL(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
