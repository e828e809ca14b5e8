package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// OpenDB initializes and returns the primary Read/Write connection pool.
// The DSN comes from the DB_DSN_PRIMARY environment variable.
func OpenDB(dsn string) (*sql.DB, error) {
	return OpenDBWithDriver("mysql", dsn)
}

// OpenDBWithDriver creates and configures a connection pool for any
// driver/DSN pair. Production uses "mysql"; tests register their own driver.
func OpenDBWithDriver(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings shared by the primary and read-only connections.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		log.Printf("Error connecting to database: %v", err)
		return nil, err
	}

	return db, nil
}
