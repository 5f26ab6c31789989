package database

import (
	"embed"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect is the goose dialect name of the opened database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const sqlitePrefix = "sqlite://"

// DialectFor picks the dialect from the DSN. "sqlite://<path>" and ":memory:" select SQLite,
// everything else is treated as a Postgres URL/DSN.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, sqlitePrefix) || dsn == ":memory:" {
		return DialectSQLite
	}
	return DialectPostgres
}

// Open opens a GORM DB from DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, Dialect, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	dialect := DialectFor(dsn)
	var (
		db  *gorm.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		db, err = gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix)), cfg)
	default:
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	}
	if err != nil {
		return nil, dialect, fmt.Errorf("open %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// Migrate applies the embedded, append-only goose migrations for the dialect.
func Migrate(db *gorm.DB, dialect Dialect) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	dir, err := prepareGoose(dialect)
	if err != nil {
		return err
	}
	return goose.Up(sqlDB, dir)
}

// MigrationStatus logs applied/pending state of every migration.
func MigrationStatus(db *gorm.DB, dialect Dialect) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	dir, err := prepareGoose(dialect)
	if err != nil {
		return err
	}
	return goose.Status(sqlDB, dir)
}

func prepareGoose(dialect Dialect) (string, error) {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(string(dialect)); err != nil {
		return "", err
	}
	if dialect == DialectSQLite {
		return "migrations/sqlite", nil
	}
	return "migrations/postgres", nil
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Info().Str("component", "goose").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Str("component", "goose").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
