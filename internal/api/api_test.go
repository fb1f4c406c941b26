package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/breachwatch/internal/api/auth"
	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/monitor"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
	"github.com/good-yellow-bee/breachwatch/internal/storage"
)

var testSecret = []byte("test-jwt-secret")

// fakeProvider returns a fixed analytics response or error.
type fakeProvider struct {
	resp *provider.AnalyticsResponse
	err  error
}

func (f *fakeProvider) BreachAnalytics(ctx context.Context, email string) (*provider.AnalyticsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// fakeBatch implements BatchControl.
type fakeBatch struct {
	triggered bool
	busy      bool
	summary   *models.BatchSummary
}

func (f *fakeBatch) TriggerNow() bool {
	if f.busy {
		return false
	}
	f.triggered = true
	return true
}

func (f *fakeBatch) LastSummary() *models.BatchSummary {
	return f.summary
}

type testEnv struct {
	server  *Server
	store   *storage.SQLiteStorage
	batch   *fakeBatch
	handler http.Handler
	cleanup func()
}

func newTestEnv(t *testing.T, prov monitor.Provider) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "breachwatch-api-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	store := storage.NewSQLiteStorage(filepath.Join(tmpDir, "test.db"))
	if err := store.Open(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open database: %v", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("migrate database: %v", err)
	}

	checker := monitor.NewChecker(prov, store.Addresses(), store.Events(), nil)
	batch := &fakeBatch{}

	server, err := New(&Config{JWTSecret: testSecret}, store, checker, batch)
	if err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("create server: %v", err)
	}

	return &testEnv{
		server:  server,
		store:   store,
		batch:   batch,
		handler: server.server.Handler,
		cleanup: func() {
			store.Close()
			os.RemoveAll(tmpDir)
		},
	}
}

func token(t *testing.T, ownerID string) string {
	t.Helper()
	tok, err := auth.NewJWTService(testSecret, time.Hour).GenerateToken(ownerID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()

	rec := env.do(t, http.MethodGet, "/api/v1/addresses", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/addresses", "bogus-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with bad token = %d, want 401", rec.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()

	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestAddressLifecycle(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()
	bearer := token(t, "owner-1")

	// Create
	rec := env.do(t, http.MethodPost, "/api/v1/addresses", bearer, map[string]string{"email": "Alice@Example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created AddressResponse
	decodeData(t, rec, &created)
	if created.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized", created.Email)
	}
	if created.Status != "safe" {
		t.Errorf("Status = %q, want safe", created.Status)
	}

	// Duplicate
	rec = env.do(t, http.MethodPost, "/api/v1/addresses", bearer, map[string]string{"email": "alice@example.com"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Invalid email
	rec = env.do(t, http.MethodPost, "/api/v1/addresses", bearer, map[string]string{"email": "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d, want 400", rec.Code)
	}

	// List
	rec = env.do(t, http.MethodGet, "/api/v1/addresses", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []AddressResponse
	decodeData(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("list = %d addresses, want 1", len(list))
	}

	// Get
	rec = env.do(t, http.MethodGet, "/api/v1/addresses/"+created.ID, bearer, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	// Delete
	rec = env.do(t, http.MethodDelete, "/api/v1/addresses/"+created.ID, bearer, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/addresses/"+created.ID, bearer, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestForeignAddressHidden(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()

	rec := env.do(t, http.MethodPost, "/api/v1/addresses", token(t, "owner-1"), map[string]string{"email": "a@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created AddressResponse
	decodeData(t, rec, &created)

	// Another owner sees 404, not 403
	rec = env.do(t, http.MethodGet, "/api/v1/addresses/"+created.ID, token(t, "owner-2"), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get status = %d, want 404", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/v1/addresses/"+created.ID, token(t, "owner-2"), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", rec.Code)
	}
}

func TestIdentityAddressNotDeletable(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()
	bearer := token(t, "owner-1")

	now := time.Now().UTC()
	addr := &models.MonitoredAddress{
		ID:         uuid.New().String(),
		OwnerID:    "owner-1",
		Email:      "me@example.com",
		Status:     models.StatusSafe,
		IsIdentity: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := env.store.Addresses().Create(context.Background(), addr); err != nil {
		t.Fatalf("create identity: %v", err)
	}

	rec := env.do(t, http.MethodDelete, "/api/v1/addresses/"+addr.ID, bearer, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete identity status = %d, want 403", rec.Code)
	}
}

func TestOnDemandCheck(t *testing.T) {
	prov := &fakeProvider{resp: &provider.AnalyticsResponse{
		ExposedBreaches: provider.ExposedBreaches{Details: []map[string]any{
			{"breach": "Adobe", "password_risk": "plaintext"},
		}},
		Raw: []byte(`{"raw":true}`),
	}}
	env := newTestEnv(t, prov)
	defer env.cleanup()
	bearer := token(t, "owner-1")

	rec := env.do(t, http.MethodPost, "/api/v1/addresses", bearer, map[string]string{"email": "a@example.com"})
	var created AddressResponse
	decodeData(t, rec, &created)

	rec = env.do(t, http.MethodPost, "/api/v1/addresses/"+created.ID+"/check", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("check status = %d, body %s", rec.Code, rec.Body.String())
	}
	var check CheckResponse
	decodeData(t, rec, &check)
	if check.Status != "breached" || check.BreachCount != 1 {
		t.Errorf("check = %+v", check)
	}
	if check.RiskScore != 40 {
		t.Errorf("RiskScore = %d, want 40 (10 + plaintext 30)", check.RiskScore)
	}
	if !check.IsNew {
		t.Error("IsNew = false for first detection")
	}

	// Snapshot is now retrievable
	rec = env.do(t, http.MethodGet, "/api/v1/addresses/"+created.ID+"/snapshot", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("snapshot status = %d", rec.Code)
	}
	if rec.Body.String() != `{"raw":true}` {
		t.Errorf("snapshot body = %q", rec.Body.String())
	}
}

func TestProviderErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"blocked", &provider.Error{Kind: provider.KindBlocked, StatusCode: 403}, http.StatusServiceUnavailable},
		{"rate limited", &provider.Error{Kind: provider.KindRateLimited, StatusCode: 429}, http.StatusTooManyRequests},
		{"timeout", &provider.Error{Kind: provider.KindTimeout}, http.StatusGatewayTimeout},
		{"server error", &provider.Error{Kind: provider.KindServerError, StatusCode: 500}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeProvider{err: tt.err})
			defer env.cleanup()
			bearer := token(t, "owner-1")

			rec := env.do(t, http.MethodPost, "/api/v1/addresses", bearer, map[string]string{"email": "a@example.com"})
			var created AddressResponse
			decodeData(t, rec, &created)

			rec = env.do(t, http.MethodPost, "/api/v1/addresses/"+created.ID+"/check", bearer, nil)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestCheckNotFoundMeansSafe(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{err: &provider.Error{Kind: provider.KindNotFound, StatusCode: 404}})
	defer env.cleanup()
	bearer := token(t, "owner-1")

	rec := env.do(t, http.MethodPost, "/api/v1/addresses", bearer, map[string]string{"email": "a@example.com"})
	var created AddressResponse
	decodeData(t, rec, &created)

	rec = env.do(t, http.MethodPost, "/api/v1/addresses/"+created.ID+"/check", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (provider 404 is a clean result)", rec.Code)
	}
	var check CheckResponse
	decodeData(t, rec, &check)
	if check.Status != "safe" || check.BreachCount != 0 || check.RiskScore != 0 {
		t.Errorf("check = %+v, want clean zero state", check)
	}
}

func TestBatchEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()
	bearer := token(t, "owner-1")

	// No summary yet
	rec := env.do(t, http.MethodGet, "/api/v1/batch", bearer, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status before any run = %d, want 404", rec.Code)
	}

	// Trigger
	rec = env.do(t, http.MethodPost, "/api/v1/batch", bearer, nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("trigger status = %d, want 202", rec.Code)
	}
	if !env.batch.triggered {
		t.Error("TriggerNow not called")
	}

	// Trigger while busy
	env.batch.busy = true
	rec = env.do(t, http.MethodPost, "/api/v1/batch", bearer, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("busy trigger status = %d, want 409", rec.Code)
	}

	// Status after a run
	env.batch.summary = &models.BatchSummary{
		Checked:     3,
		NewBreaches: 1,
		StartedAt:   time.Now().Add(-time.Minute),
		FinishedAt:  time.Now(),
	}
	rec = env.do(t, http.MethodGet, "/api/v1/batch", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status BatchStatusResponse
	decodeData(t, rec, &status)
	if status.Checked != 3 || status.NewBreaches != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestEventsEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{})
	defer env.cleanup()
	bearer := token(t, "owner-1")

	event := &models.EventRecord{
		ID:             uuid.New().String(),
		OwnerID:        "owner-1",
		Email:          "a@example.com",
		NewBreachCount: 2,
		BreachNames:    []string{"Adobe"},
		RiskScore:      80,
		CreatedAt:      time.Now().UTC(),
	}
	if err := env.store.Events().Create(context.Background(), event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/events", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var events []EventResponse
	decodeData(t, rec, &events)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].RiskBand != "high" {
		t.Errorf("RiskBand = %q, want high", events[0].RiskBand)
	}

	// Scoped per owner
	rec = env.do(t, http.MethodGet, "/api/v1/events", token(t, "owner-2"), nil)
	decodeData(t, rec, &events)
	if len(events) != 0 {
		t.Errorf("other owner sees %d events, want 0", len(events))
	}

	// Bad pagination
	rec = env.do(t, http.MethodGet, "/api/v1/events?limit=9999", bearer, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized limit status = %d, want 400", rec.Code)
	}
}
