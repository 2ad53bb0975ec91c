package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/ghuser/tablepos/pkg/logger"
)

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", logger.Nop())
	if err == nil {
		t.Fatal("expected error for unreachable database, got nil")
	}
}

// txDriver records the options of every transaction it begins.
type txDriver struct {
	mu   sync.Mutex
	opts []driver.TxOptions
	done []string
}

func (d *txDriver) Open(string) (driver.Conn, error) { return &txConn{d: d}, nil }

type txConn struct{ d *txDriver }

func (c *txConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *txConn) Close() error                        { return nil }
func (c *txConn) Begin() (driver.Tx, error)           { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c *txConn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.opts = append(c.d.opts, opts)
	return &recTx{d: c.d}, nil
}

type recTx struct{ d *txDriver }

func (t *recTx) Commit() error   { return t.record("commit") }
func (t *recTx) Rollback() error { return t.record("rollback") }

func (t *recTx) record(s string) error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.done = append(t.d.done, s)
	return nil
}

func TestWithSnapshot_ReadOnlyRepeatableRead(t *testing.T) {
	drv := &txDriver{}
	db := New(sql.OpenDB(connector{drv}), logger.Nop())
	defer db.Close()
	ctx := context.Background()

	if err := db.WithSnapshot(ctx, func(*sql.Tx) error { return nil }); err != nil {
		t.Fatalf("WithSnapshot: %v", err)
	}
	sentinel := errors.New("abort")
	if err := db.WithSnapshot(ctx, func(*sql.Tx) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if err := db.WithTx(ctx, func(*sql.Tx) error { return nil }); err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	tests := []struct {
		name     string
		readOnly bool
		level    sql.IsolationLevel
		done     string
	}{
		{"snapshot commits", true, sql.LevelRepeatableRead, "commit"},
		{"snapshot rolls back on error", true, sql.LevelRepeatableRead, "rollback"},
		{"plain tx keeps driver defaults", false, sql.LevelDefault, "commit"},
	}
	if len(drv.opts) != len(tests) {
		t.Fatalf("expected %d transactions, got %d", len(tests), len(drv.opts))
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if drv.opts[i].ReadOnly != tt.readOnly {
				t.Errorf("ReadOnly = %v, want %v", drv.opts[i].ReadOnly, tt.readOnly)
			}
			if sql.IsolationLevel(drv.opts[i].Isolation) != tt.level {
				t.Errorf("Isolation = %v, want %v", sql.IsolationLevel(drv.opts[i].Isolation), tt.level)
			}
			if drv.done[i] != tt.done {
				t.Errorf("ended with %s, want %s", drv.done[i], tt.done)
			}
		})
	}
}

type connector struct{ d *txDriver }

func (c connector) Connect(context.Context) (driver.Conn, error) { return c.d.Open("") }
func (c connector) Driver() driver.Driver                        { return c.d }

// Integration tests; skipped unless DATABASE_URL is set.
func TestDatabaseIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	ctx := context.Background()
	db, err := NewPool(ctx, url, logger.Nop())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer db.Close()

	t.Run("Ping", func(t *testing.T) {
		if err := db.Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})

	t.Run("WithTx_RollsBackOnError", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE tx_scratch (id int)"); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}
	})

	t.Run("WithTx_Commits", func(t *testing.T) {
		var got int
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			return tx.QueryRowContext(ctx, "SELECT 1").Scan(&got)
		})
		if err != nil {
			t.Fatalf("WithTx: %v", err)
		}
		if got != 1 {
			t.Fatalf("expected 1, got %d", got)
		}
	})
}
