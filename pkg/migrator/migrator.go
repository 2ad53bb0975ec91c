package migrator

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its dialect, base FS and version table in package state.
var mu sync.Mutex

// RunMigrations runs all pending goose migrations from files against dbUrl.
// Each bounded context tracks its own versions in versionTable so contexts
// can share one database without colliding version numbers.
func RunMigrations(dbUrl string, files fs.FS, versionTable string) error {
	db, err := sql.Open("pgx", dbUrl)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	return Up(db, files, versionTable)
}

// Up applies pending migrations using an already opened handle.
func Up(db *sql.DB, files fs.FS, versionTable string) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(versionTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to up migrations (%s): %w", versionTable, err)
	}
	return nil
}
