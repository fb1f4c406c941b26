package health

import (
	"context"
	"database/sql"
	"fmt"
)

// DatabaseChecker verifies the SQLite database connection.
type DatabaseChecker struct {
	db *sql.DB
}

// NewDatabaseChecker creates a database health checker.
func NewDatabaseChecker(db *sql.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Name returns "database".
func (c *DatabaseChecker) Name() string {
	return "database"
}

// Check pings the database.
func (c *DatabaseChecker) Check(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.db.PingContext(ctx)
}
