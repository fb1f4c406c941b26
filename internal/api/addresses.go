package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/breachwatch/internal/api/middleware"
	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// AddressResponse is a monitored address as returned by the API. The raw
// provider snapshot is exposed through its own endpoint, not inlined here.
type AddressResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Status        string     `json:"status"`
	BreachCount   int        `json:"breach_count"`
	IsIdentity    bool       `json:"is_identity"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toAddressResponse(a *models.MonitoredAddress) *AddressResponse {
	return &AddressResponse{
		ID:            a.ID,
		Email:         a.Email,
		Status:        string(a.Status),
		BreachCount:   a.BreachCount,
		IsIdentity:    a.IsIdentity,
		LastCheckedAt: a.LastCheckedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// CreateAddressRequest is the request body for adding an address.
type CreateAddressRequest struct {
	Email string `json:"email"`
}

// handleListAddresses returns the caller's monitored addresses.
func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	addrs, err := s.storage.Addresses().ListByOwner(r.Context(), ownerID)
	if err != nil {
		log.Printf("[api] list addresses: %v", err)
		JSONError(w, ErrInternal)
		return
	}

	resp := make([]*AddressResponse, len(addrs))
	for i, a := range addrs {
		resp[i] = toAddressResponse(a)
	}
	OK(w, resp)
}

// handleCreateAddress adds a new address to the caller's watch list.
func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	var req CreateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, badRequest("invalid request body"))
		return
	}

	email := models.NormalizeEmail(req.Email)
	if email == "" {
		JSONError(w, badRequest("email is required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		JSONError(w, badRequest("invalid email address"))
		return
	}

	now := time.Now().UTC()
	addr := &models.MonitoredAddress{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Email:     email,
		Status:    models.StatusSafe,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.Addresses().Create(r.Context(), addr); err != nil {
		JSONError(w, mapError(err))
		return
	}

	Created(w, toAddressResponse(addr))
}

// handleGetAddress returns a single monitored address.
func (s *Server) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	addr, apiErr := s.ownedAddress(r)
	if apiErr != nil {
		JSONError(w, apiErr)
		return
	}
	OK(w, toAddressResponse(addr))
}

// handleDeleteAddress removes an address from monitoring. The account's
// identity address cannot be deleted.
func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	addr, apiErr := s.ownedAddress(r)
	if apiErr != nil {
		JSONError(w, apiErr)
		return
	}

	if err := s.storage.Addresses().Delete(r.Context(), addr.ID); err != nil {
		JSONError(w, mapError(err))
		return
	}
	NoContent(w)
}

// handleGetSnapshot returns the raw provider payload stored at the last
// check, for debugging normalization issues.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	addr, apiErr := s.ownedAddress(r)
	if apiErr != nil {
		JSONError(w, apiErr)
		return
	}

	if len(addr.Snapshot) == 0 {
		JSONError(w, &Error{
			Code:    ErrCodeNotFound,
			Message: "No snapshot stored for this address",
			Status:  http.StatusNotFound,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(addr.Snapshot)
}

// ownedAddress loads the address from the URL and verifies the caller owns
// it. Foreign addresses are reported as not found rather than forbidden to
// avoid leaking which IDs exist.
func (s *Server) ownedAddress(r *http.Request) (*models.MonitoredAddress, *Error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return nil, badRequest("address id is required")
	}

	addr, err := s.storage.Addresses().GetByID(r.Context(), id)
	if err != nil {
		return nil, mapError(err)
	}
	if addr.OwnerID != middleware.OwnerID(r.Context()) {
		return nil, ErrNotFound
	}
	return addr, nil
}
