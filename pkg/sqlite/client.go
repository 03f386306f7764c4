package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

type ClientConfig struct {
	Path        string
	BusyTimeout time.Duration
}

func WithPath(path string) ClientOption {
	return func(c *ClientConfig) { c.Path = path }
}

func WithBusyTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if d > 0 {
			c.BusyTimeout = d
		}
	}
}

// Client owns a single-writer SQLite pool in WAL mode.
type Client struct {
	db   *sql.DB
	path string
}

func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		Path:        "data/signals.db",
		BusyTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", buildDSN(*cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// one connection serialises writers; WAL keeps readers unblocked
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	return &Client{db: db, path: cfg.Path}, nil
}

func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// WithTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (c *Client) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func buildDSN(cfg ClientConfig) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on&_txlock=immediate",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}
