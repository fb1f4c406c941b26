package models

import "time"

// AddressError records one failed address check inside a batch run.
type AddressError struct {
	Email string `json:"email"`
	Kind  string `json:"kind"`
	Err   string `json:"error"`
}

// BatchSummary aggregates the outcome of one full batch run.
type BatchSummary struct {
	Checked     int            `json:"checked"`
	NewBreaches int            `json:"new_breaches"`
	Errors      []AddressError `json:"errors,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// ErrorCount returns the number of failed addresses in the run.
func (s *BatchSummary) ErrorCount() int {
	return len(s.Errors)
}
