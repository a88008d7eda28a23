package executor

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nlstn/go-eql/internal/observability"
)

// Dialect selects the SQL database driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ErrUnknownDialect is returned by OpenDatabase for unsupported dialects.
var ErrUnknownDialect = errors.New("executor: unknown dialect")

// OpenDatabase opens a GORM connection for dialect with Open.
func OpenDatabase(dialect Dialect, dsn string, cfg *observability.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	return Open(dialector, cfg)
}

// Open opens a GORM connection through dialector. The GORM logger is silenced;
// executors log their statements through slog. When cfg enables detailed
// database tracing, query spans are registered on the connection.
func Open(dialector gorm.Dialector, cfg *observability.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialector.Name(), err)
	}

	if err := observability.RegisterGORMCallbacks(db, cfg); err != nil {
		return nil, fmt.Errorf("register tracing callbacks: %w", err)
	}
	return db, nil
}
