// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// Common storage errors.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")
	// ErrIdentityAddress is returned when deleting an owner's own identity
	// address, which is never deletable.
	ErrIdentityAddress = errors.New("identity address cannot be deleted")
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Addresses() AddressRepository
	Events() EventRepository
}

// AddressRepository defines operations for monitored addresses.
type AddressRepository interface {
	Create(ctx context.Context, addr *models.MonitoredAddress) error
	GetByID(ctx context.Context, id string) (*models.MonitoredAddress, error)
	GetByOwnerAndEmail(ctx context.Context, ownerID, email string) (*models.MonitoredAddress, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.MonitoredAddress, error)
	ListAll(ctx context.Context) ([]*models.MonitoredAddress, error)

	// UpsertCheckResult persists the outcome of a successful check: status,
	// breach count, snapshot, and last-checked timestamp.
	UpsertCheckResult(ctx context.Context, id string, result *models.CheckResult, checkedAt time.Time) error

	// TouchLastChecked updates only the last-checked timestamp. Used on the
	// error path so a failing address still records the attempt.
	TouchLastChecked(ctx context.Context, id string, checkedAt time.Time) error

	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// EventRepository defines operations for the breach event audit trail.
type EventRepository interface {
	Create(ctx context.Context, event *models.EventRecord) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.EventRecord, int64, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
