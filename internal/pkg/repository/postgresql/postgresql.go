// Package postgresql owns the connection pool and the transactional session
// every repository runs in.
package postgresql

import (
	"database/sql"
	"io"
	"log"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"

	"indengsvc/backend/internal/pkg/config"
	"indengsvc/backend/internal/pkg/errs"
)

type Database struct {
	*bun.DB
	log *log.Logger
}

// NewDatabase opens the pool described by cfg. postgres:// DSNs use pgdriver;
// file: and sqlite: DSNs use the embedded SQLite driver.
func NewDatabase(cfg config.DB, logger *log.Logger, debug io.Writer) (*Database, error) {
	if cfg.Conn == "" {
		return nil, &errs.ConfigurationError{Setting: config.Prefix + "_DB_CONN"}
	}

	sqldb, dialect, err := open(cfg.Conn)
	if err != nil {
		return nil, err
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 40
	}
	// database/sql hands out the most recently released idle connection first,
	// so the hot set stays small under bursty load.
	sqldb.SetMaxIdleConns(poolSize)
	sqldb.SetMaxOpenConns(poolSize + max(cfg.MaxOverflow, 0))
	if cfg.Recycle > 0 {
		sqldb.SetConnMaxLifetime(cfg.Recycle)
	}

	db := bun.NewDB(sqldb, dialect)
	if cfg.Debug && debug != nil {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.WithWriter(debug),
		))
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, &errs.StorageError{Op: "pinging database", Err: err}
	}

	return &Database{DB: db, log: logger}, nil
}

func open(dsn string) (*sql.DB, schema.Dialect, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New(), nil
	case strings.HasPrefix(dsn, "file:"), strings.HasPrefix(dsn, "sqlite:"):
		sqldb, err := sql.Open("sqlite3", strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening sqlite database")
		}
		return sqldb, sqlitedialect.New(), nil
	}
	return nil, nil, errors.Errorf("unsupported database connection string scheme: %q", scheme(dsn))
}

func scheme(dsn string) string {
	if i := strings.Index(dsn, ":"); i > 0 {
		return dsn[:i]
	}
	return dsn
}

// InUse reports how many pooled connections are currently borrowed.
func (d *Database) InUse() int {
	return d.DB.DB.Stats().InUse
}
