package models

import "time"

// EventRecord is a persisted BreachDetected event, kept as an audit trail of
// what owners were notified about and when.
type EventRecord struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Email          string    `json:"email"`
	NewBreachCount int       `json:"new_breach_count"`
	BreachNames    []string  `json:"breach_names"`
	RiskScore      int       `json:"risk_score"`
	CreatedAt      time.Time `json:"created_at"`
}
