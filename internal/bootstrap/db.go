package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

type DBOptions struct {
	Driver   string // postgres (lib/pq) or pgx
	DSN      string
	PingTO   time.Duration
	MaxConns int
	MinConns int
}

// OpenDB opens a database/sql pool on the chosen Postgres driver and fails
// fast when the server is unreachable.
func OpenDB(ctx context.Context, opt DBOptions) (*sql.DB, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}
	if opt.MaxConns == 0 {
		opt.MaxConns = 10
	}
	if opt.MinConns == 0 {
		opt.MinConns = 2
	}

	var (
		db  *sql.DB
		err error
	)
	switch opt.Driver {
	case DriverPGX:
		cfg, perr := pgx.ParseConfig(opt.DSN)
		if perr != nil {
			return nil, fmt.Errorf("parse dsn: %w", perr)
		}
		db = stdlib.OpenDB(*cfg)
	case DriverPQ, "":
		db, err = sql.Open(DriverPQ, opt.DSN)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opt.Driver)
	}

	db.SetMaxOpenConns(opt.MaxConns)
	db.SetMaxIdleConns(opt.MinConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTO)
	defer pcancel()

	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}
