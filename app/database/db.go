package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// Open opens the SQLite database at path and applies pending migrations.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_time_format=sqlite"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; serialize access through one connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}

	if _, _, err := RunMigrations(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}
