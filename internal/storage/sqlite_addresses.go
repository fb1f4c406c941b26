package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

type sqliteAddressRepo struct {
	db *sql.DB
}

const addressColumns = `id, owner_id, email, status, breach_count, snapshot, is_identity, last_checked_at, created_at, updated_at`

func (r *sqliteAddressRepo) Create(ctx context.Context, addr *models.MonitoredAddress) error {
	addr.Email = models.NormalizeEmail(addr.Email)
	query := `
		INSERT INTO monitored_addresses (` + addressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		addr.ID, addr.OwnerID, addr.Email, string(addr.Status), addr.BreachCount,
		addr.Snapshot, boolToInt(addr.IsIdentity), nullTime(addr.LastCheckedAt),
		addr.CreatedAt, addr.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("address %s for owner %s: %w", addr.Email, addr.OwnerID, ErrDuplicate)
		}
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *sqliteAddressRepo) GetByID(ctx context.Context, id string) (*models.MonitoredAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM monitored_addresses WHERE id = ?`
	return scanAddress(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteAddressRepo) GetByOwnerAndEmail(ctx context.Context, ownerID, email string) (*models.MonitoredAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM monitored_addresses WHERE owner_id = ? AND email = ?`
	return scanAddress(r.db.QueryRowContext(ctx, query, ownerID, models.NormalizeEmail(email)))
}

func (r *sqliteAddressRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.MonitoredAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM monitored_addresses WHERE owner_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()
	return collectAddresses(rows)
}

func (r *sqliteAddressRepo) ListAll(ctx context.Context) ([]*models.MonitoredAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM monitored_addresses ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()
	return collectAddresses(rows)
}

func (r *sqliteAddressRepo) UpsertCheckResult(ctx context.Context, id string, result *models.CheckResult, checkedAt time.Time) error {
	status := models.StatusSafe
	if result.NewCount > 0 {
		status = models.StatusBreached
	}
	query := `
		UPDATE monitored_addresses
		SET status = ?, breach_count = ?, snapshot = ?, last_checked_at = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		string(status), result.NewCount, result.Snapshot, checkedAt, checkedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update check result: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteAddressRepo) TouchLastChecked(ctx context.Context, id string, checkedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE monitored_addresses SET last_checked_at = ? WHERE id = ?`, checkedAt, id)
	if err != nil {
		return fmt.Errorf("touch last checked: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteAddressRepo) Delete(ctx context.Context, id string) error {
	// Identity addresses are never deletable, enforced here so no caller
	// path can bypass it.
	var isIdentity int
	err := r.db.QueryRowContext(ctx,
		`SELECT is_identity FROM monitored_addresses WHERE id = ?`, id).Scan(&isIdentity)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load address: %w", err)
	}
	if isIdentity != 0 {
		return ErrIdentityAddress
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM monitored_addresses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteAddressRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monitored_addresses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return count, nil
}

// scanAddress scans one address row.
func scanAddress(row *sql.Row) (*models.MonitoredAddress, error) {
	var addr models.MonitoredAddress
	var status string
	var isIdentity int
	var lastChecked sql.NullTime

	err := row.Scan(&addr.ID, &addr.OwnerID, &addr.Email, &status, &addr.BreachCount,
		&addr.Snapshot, &isIdentity, &lastChecked, &addr.CreatedAt, &addr.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan address: %w", err)
	}

	addr.Status = models.AddressStatus(status)
	addr.IsIdentity = isIdentity != 0
	if lastChecked.Valid {
		t := lastChecked.Time
		addr.LastCheckedAt = &t
	}
	return &addr, nil
}

func collectAddresses(rows *sql.Rows) ([]*models.MonitoredAddress, error) {
	var out []*models.MonitoredAddress
	for rows.Next() {
		var addr models.MonitoredAddress
		var status string
		var isIdentity int
		var lastChecked sql.NullTime

		if err := rows.Scan(&addr.ID, &addr.OwnerID, &addr.Email, &status, &addr.BreachCount,
			&addr.Snapshot, &isIdentity, &lastChecked, &addr.CreatedAt, &addr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addr.Status = models.AddressStatus(status)
		addr.IsIdentity = isIdentity != 0
		if lastChecked.Valid {
			t := lastChecked.Time
			addr.LastCheckedAt = &t
		}
		out = append(out, &addr)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// isUniqueViolation detects a UNIQUE constraint failure without depending on
// driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
