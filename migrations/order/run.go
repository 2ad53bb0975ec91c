// Package order embeds the order and occupancy schema migrations.
package order

import (
	"database/sql"
	"embed"

	"github.com/ghuser/tablepos/pkg/migrator"
)

const versionTable = "goose_order_version"

//go:embed *.sql
var MigrationsFS embed.FS

// Run applies pending order migrations against dbURL.
func Run(dbURL string) error {
	return migrator.RunMigrations(dbURL, MigrationsFS, versionTable)
}

// Up applies pending order migrations on an open handle.
func Up(db *sql.DB) error {
	return migrator.Up(db, MigrationsFS, versionTable)
}
