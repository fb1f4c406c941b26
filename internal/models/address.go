// Package models defines domain models for BreachWatch.
package models

import (
	"strings"
	"time"
)

// AddressStatus represents the exposure status of a monitored address.
type AddressStatus string

const (
	// StatusSafe means no breach is currently known for the address.
	StatusSafe AddressStatus = "safe"
	// StatusBreached means at least one breach is known for the address.
	StatusBreached AddressStatus = "breached"
)

// MonitoredAddress is one email address being watched on behalf of an owner.
// At most one MonitoredAddress exists per (owner, normalized email) pair.
type MonitoredAddress struct {
	ID      string        `json:"id"`
	OwnerID string        `json:"owner_id"`
	Email   string        `json:"email"`
	Status  AddressStatus `json:"status"`

	// BreachCount is the number of breaches seen at the last successful check.
	BreachCount int `json:"breach_count"`

	// Snapshot holds the raw analytics payload from the last successful
	// check, or nil if the address has never been checked successfully.
	Snapshot []byte `json:"-"`

	// IsIdentity marks the owner's own login address. Identity addresses
	// are created implicitly when monitoring starts and cannot be deleted.
	IsIdentity bool `json:"is_identity"`

	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NormalizeEmail canonicalizes an email address for lookups and uniqueness:
// trimmed of surrounding whitespace and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
