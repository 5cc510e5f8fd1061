// Package database implements the storage collaborators over sqlx: the
// curriculum content catalog and memory-item persistence. SQLite is the
// default; set DB_TYPE=postgres and DATABASE_URL for Postgres.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the shared database handle.
var DB *sqlx.DB

// Connect opens the database selected by DB_TYPE and bootstraps the
// schema.
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error
	switch dbType {
	case "sqlite":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		db, err = sqlx.Connect("sqlite3", filepath.Join(dataDir, "learnflow.db"))
		if err != nil {
			return fmt.Errorf("failed to connect to sqlite: %v", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		db, err = sqlx.Connect("postgres", os.Getenv("DATABASE_URL"))
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	DB = db
	return initializeSchema(DB)
}

// ConnectMemory opens an in-memory SQLite database, for tests.
func ConnectMemory() (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the shared handle.
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates the tables if they don't exist.
func initializeSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS content_units (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prompt TEXT NOT NULL,
			answer TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			difficulty INTEGER DEFAULT 1,
			position INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(prompt, topic)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create content_units table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memory_items (
			item_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			content_id INTEGER NOT NULL,
			interval_days INTEGER NOT NULL DEFAULT 1,
			repetition_count INTEGER NOT NULL DEFAULT 0,
			easiness_factor REAL NOT NULL DEFAULT 2.5,
			last_review_at TIMESTAMP NOT NULL,
			next_review_at TIMESTAMP NOT NULL,
			last_performance REAL NOT NULL DEFAULT 0,
			UNIQUE(user_id, content_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create memory_items table: %v", err)
	}

	return nil
}
