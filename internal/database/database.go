package database

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool, or returns nil when databaseURL is empty
// (runs, snapshots and operator accounts are then unavailable).
func Connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		log.Println("[DB] DATABASE_URL not set; persistence disabled")
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Println("[DB] Connected to PostgreSQL")
	return db, nil
}
