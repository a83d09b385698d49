package database

import (
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/coachbook/coachbook_backend/config"
)

// NewDriver opens an ent SQL driver from central config
func NewDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewDriverFromConfig(FromCentralConfig(cfg))
}

// NewDriverFromConfig opens an ent SQL driver from package Config
func NewDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	name, err := Dialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(name, db), nil
}

// Dialect maps a configured driver onto its ent dialect name.
func Dialect(driver string) (string, error) {
	switch driver {
	case DriverPostgres, "":
		return dialect.Postgres, nil
	case DriverSQLite:
		return dialect.SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
