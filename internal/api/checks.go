package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// CheckResponse is the outcome of an on-demand check.
type CheckResponse struct {
	Email          string   `json:"email"`
	Status         string   `json:"status"`
	BreachCount    int      `json:"breach_count"`
	RiskScore      int      `json:"risk_score"`
	RiskBand       string   `json:"risk_band"`
	IsNew          bool     `json:"is_new"`
	NewBreachCount int      `json:"new_breach_count"`
	NewBreachNames []string `json:"new_breach_names,omitempty"`
}

// handleCheckAddress runs an immediate provider check for one address. The
// shared provider client paces this against the background batch, so an
// on-demand check never violates the provider rate limit.
func (s *Server) handleCheckAddress(w http.ResponseWriter, r *http.Request) {
	addr, apiErr := s.ownedAddress(r)
	if apiErr != nil {
		JSONError(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	result, err := s.checker.CheckOne(ctx, addr)
	if err != nil {
		log.Printf("[api] on-demand check for %s: %v", addr.Email, err)
		JSONError(w, mapError(err))
		return
	}

	status := models.StatusSafe
	if len(result.Records) > 0 {
		status = models.StatusBreached
	}

	OK(w, &CheckResponse{
		Email:          addr.Email,
		Status:         string(status),
		BreachCount:    len(result.Records),
		RiskScore:      result.RiskScore,
		RiskBand:       string(models.BandForScore(result.RiskScore)),
		IsNew:          result.IsNew,
		NewBreachCount: result.NewCount,
		NewBreachNames: result.NewBreachNames,
	})
}

// BatchStatusResponse reports the most recent batch run.
type BatchStatusResponse struct {
	Checked     int      `json:"checked"`
	NewBreaches int      `json:"new_breaches"`
	ErrorCount  int      `json:"error_count"`
	Errors      []string `json:"errors,omitempty"`
	StartedAt   string   `json:"started_at"`
	FinishedAt  string   `json:"finished_at"`
}

// handleTriggerBatch asks the scheduler to start a batch run now.
func (s *Server) handleTriggerBatch(w http.ResponseWriter, r *http.Request) {
	if s.batch == nil {
		JSONError(w, ErrNotFound)
		return
	}

	if !s.batch.TriggerNow() {
		JSONError(w, &Error{
			Code:    ErrCodeConflict,
			Message: "A batch run is already in progress",
			Status:  http.StatusConflict,
		})
		return
	}
	JSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// handleBatchStatus returns the last completed batch summary.
func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	if s.batch == nil {
		JSONError(w, ErrNotFound)
		return
	}

	summary := s.batch.LastSummary()
	if summary == nil {
		JSONError(w, &Error{
			Code:    ErrCodeNotFound,
			Message: "No batch has completed yet",
			Status:  http.StatusNotFound,
		})
		return
	}

	errs := make([]string, 0, len(summary.Errors))
	for _, e := range summary.Errors {
		errs = append(errs, e.Email+": "+e.Kind)
	}

	OK(w, &BatchStatusResponse{
		Checked:     summary.Checked,
		NewBreaches: summary.NewBreaches,
		ErrorCount:  summary.ErrorCount(),
		Errors:      errs,
		StartedAt:   summary.StartedAt.Format(time.RFC3339),
		FinishedAt:  summary.FinishedAt.Format(time.RFC3339),
	})
}
