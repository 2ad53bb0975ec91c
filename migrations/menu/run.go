// Package menu embeds the menu catalog schema migrations.
package menu

import (
	"database/sql"
	"embed"

	"github.com/ghuser/tablepos/pkg/migrator"
)

const versionTable = "goose_menu_version"

//go:embed *.sql
var MigrationsFS embed.FS

// Run applies pending menu migrations against dbURL.
func Run(dbURL string) error {
	return migrator.RunMigrations(dbURL, MigrationsFS, versionTable)
}

// Up applies pending menu migrations on an open handle.
func Up(db *sql.DB) error {
	return migrator.Up(db, MigrationsFS, versionTable)
}
