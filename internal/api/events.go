package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/api/middleware"
	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// EventResponse is a recorded breach detection event.
type EventResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	NewBreachCount int       `json:"new_breach_count"`
	BreachNames    []string  `json:"breach_names,omitempty"`
	RiskScore      int       `json:"risk_score"`
	RiskBand       string    `json:"risk_band"`
	CreatedAt      time.Time `json:"created_at"`
}

// handleListEvents returns the caller's breach events, newest first.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		JSONError(w, badRequest("limit must be between 1 and 500"))
		return
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		JSONError(w, badRequest("offset must not be negative"))
		return
	}

	events, total, err := s.storage.Events().ListByOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		log.Printf("[api] list events: %v", err)
		JSONError(w, ErrInternal)
		return
	}

	resp := make([]*EventResponse, len(events))
	for i, e := range events {
		resp[i] = &EventResponse{
			ID:             e.ID,
			Email:          e.Email,
			NewBreachCount: e.NewBreachCount,
			BreachNames:    e.BreachNames,
			RiskScore:      e.RiskScore,
			RiskBand:       string(models.BandForScore(e.RiskScore)),
			CreatedAt:      e.CreatedAt,
		}
	}

	JSONList(w, resp, &Meta{Total: int(total), Limit: limit, Offset: offset})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
