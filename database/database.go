// Package database is the MySQL report store. It exclusively owns persisted
// report state; everything the HTTP layer and the live feed hold is an
// advisory snapshot.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"civiclens/config"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a report seq does not exist.
var ErrNotFound = errors.New("report not found")

// Database handles all database operations
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Infof("Database connected successfully to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &Database{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// DB exposes the underlying database handle for wiring
func (d *Database) DB() *sql.DB {
	return d.db
}

// EnsureSchema creates the report tables if they do not exist.
func (d *Database) EnsureSchema(ctx context.Context) error {
	createReports := `
		CREATE TABLE IF NOT EXISTS reports (
			seq INT NOT NULL AUTO_INCREMENT,
			ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			user_id VARCHAR(255) NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			category VARCHAR(255) NOT NULL,
			severity VARCHAR(32) NOT NULL,
			description TEXT NOT NULL,
			status VARCHAR(32) NULL,
			image LONGBLOB,
			PRIMARY KEY (seq),
			INDEX severity_index (severity),
			INDEX status_index (status),
			INDEX user_index (user_id)
		)`

	if _, err := d.db.ExecContext(ctx, createReports); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	// Membership table gives atomic set-add / set-remove for upvotes; the
	// primary key keeps each user at most once per report.
	createUpvotes := `
		CREATE TABLE IF NOT EXISTS report_upvotes (
			seq INT NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (seq, user_id)
		)`

	if _, err := d.db.ExecContext(ctx, createUpvotes); err != nil {
		return fmt.Errorf("failed to create report_upvotes table: %w", err)
	}

	return nil
}
