package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

type sqliteEventRepo struct {
	db *sql.DB
}

func (r *sqliteEventRepo) Create(ctx context.Context, event *models.EventRecord) error {
	namesJSON, err := json.Marshal(event.BreachNames)
	if err != nil {
		return fmt.Errorf("marshal breach names: %w", err)
	}

	query := `
		INSERT INTO breach_events (id, owner_id, email, new_breach_count, breach_names_json, risk_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.OwnerID, event.Email, event.NewBreachCount,
		string(namesJSON), event.RiskScore, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *sqliteEventRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.EventRecord, int64, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM breach_events WHERE owner_id = ?`, ownerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `
		SELECT id, owner_id, email, new_breach_count, breach_names_json, risk_score, created_at
		FROM breach_events
		WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*models.EventRecord
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, event)
	}
	return out, total, rows.Err()
}

func (r *sqliteEventRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM breach_events WHERE created_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	return res.RowsAffected()
}

func scanEvent(rows *sql.Rows) (*models.EventRecord, error) {
	var event models.EventRecord
	var namesJSON string

	if err := rows.Scan(&event.ID, &event.OwnerID, &event.Email, &event.NewBreachCount,
		&namesJSON, &event.RiskScore, &event.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	if err := json.Unmarshal([]byte(namesJSON), &event.BreachNames); err != nil {
		return nil, fmt.Errorf("unmarshal breach names: %w", err)
	}
	return &event, nil
}
