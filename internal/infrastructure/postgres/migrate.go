package postgres

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // driver database/sql para goose
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations aplica las migraciones embebidas al arrancar.
func RunMigrations(dsn string) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("abrir DB para migraciones: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	return nil
}
