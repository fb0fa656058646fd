package database

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	driverName  = "postgres"
	pingTimeout = 5 * time.Second
)

type Config struct {
	URL                         string
	DisablePreparedBinaryResult bool
	MaxOpenConns                int
}

// Open connects to Postgres through the traced sqlx driver and verifies the connection.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, crerr.New("database url is required")
	}

	db, err := otelsqlx.Open(driverName, NormalizeURL(cfg.URL, cfg.DisablePreparedBinaryResult),
		otelsql.WithDBName(NameFromURL(cfg.URL)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open database")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping database")
	}
	return db, nil
}
