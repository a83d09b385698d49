package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coachbook/coachbook_backend/config"
)

// InitializeDatabases creates the configured application databases if they
// don't exist. It connects to the default 'postgres' database to create the
// others. SQLite files are created on first open, so there is nothing to do.
func InitializeDatabases(cfg *config.Config) error {
	if cfg.Database.Driver == DriverSQLite {
		return nil
	}
	names := cfg.Server.Databases
	if len(names) == 0 {
		names = []string{cfg.Database.DBName}
	}
	if len(names) == 0 || names[0] == "" {
		return fmt.Errorf("no database names provided")
	}

	postgresConfig := FromCentralConfig(cfg.Database)
	postgresConfig.DBName = "postgres"

	conn, err := openSQLDB(postgresConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close()

	for _, dbName := range names {
		if err := createDatabaseIfNotExists(conn, dbName); err != nil {
			return fmt.Errorf("failed to create database %q: %w", dbName, err)
		}
	}

	return nil
}

func createDatabaseIfNotExists(conn *sql.DB, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := conn.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE does not take bind parameters.
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %q", dbName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}
