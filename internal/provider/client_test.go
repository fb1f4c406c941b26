package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: srv.URL})
	return client, srv
}

func TestCheckEmail(t *testing.T) {
	var gotPath string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"email":"alice@example.com","breaches":[["Adobe","LinkedIn"]]}`))
	})
	defer srv.Close()

	resp, err := client.CheckEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("CheckEmail: %v", err)
	}
	if gotPath != "/check-email/alice@example.com" {
		t.Errorf("path = %q", gotPath)
	}
	names := resp.BreachNames()
	if len(names) != 2 || names[0] != "Adobe" || names[1] != "LinkedIn" {
		t.Errorf("BreachNames = %v", names)
	}
}

func TestBreachAnalyticsPreservesRaw(t *testing.T) {
	payload := `{"ExposedBreaches":{"breaches_details":[{"breach":"Acme"}]},"BreachMetrics":{"risk":[{"risk_label":"High","risk_score":80}]}}`

	var gotQuery string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(payload))
	})
	defer srv.Close()

	resp, err := client.BreachAnalytics(context.Background(), "bob+test@example.com")
	if err != nil {
		t.Fatalf("BreachAnalytics: %v", err)
	}
	if gotQuery != "email=bob%2Btest%40example.com" {
		t.Errorf("query = %q", gotQuery)
	}
	if string(resp.Raw) != payload {
		t.Errorf("Raw not preserved: %q", resp.Raw)
	}
	if len(resp.ExposedBreaches.Details) != 1 {
		t.Fatalf("Details = %v", resp.ExposedBreaches.Details)
	}
	hint, ok := resp.Metrics.RiskScoreHint()
	if !ok || hint != 80 {
		t.Errorf("RiskScoreHint = %d, %v", hint, ok)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusForbidden, KindBlocked},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindServerError},
		{http.StatusBadGateway, KindServerError},
		{http.StatusTeapot, KindMalformed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			defer srv.Close()

			_, err := client.BreachAnalytics(context.Background(), "x@example.com")
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := KindOf(err); kind != tt.want {
				t.Errorf("kind = %q, want %q", kind, tt.want)
			}

			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatal("error is not *provider.Error")
			}
			if perr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", perr.StatusCode, tt.status)
			}
		})
	}
}

func TestNotFoundIsDetectable(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := client.BreachAnalytics(context.Background(), "clean@example.com")
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for 404, err = %v", err)
	}
}

func TestMalformedBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"truncated`))
	})
	defer srv.Close()

	_, err := client.BreachAnalytics(context.Background(), "x@example.com")
	if KindOf(err) != KindMalformed {
		t.Errorf("kind = %q, want %q", KindOf(err), KindMalformed)
	}
}

func TestRequestPacing(t *testing.T) {
	if testing.Short() {
		t.Skip("pacing test sleeps")
	}

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	ctx := context.Background()
	if _, err := client.BreachAnalytics(ctx, "a@example.com"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	start := time.Now()
	if _, err := client.BreachAnalytics(ctx, "b@example.com"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("second call ran after %s, want at least ~1s of pacing", elapsed)
	}
}

func TestPacingWaitHonorsCancel(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	// Drain the initial token so the next call has to wait.
	if _, err := client.BreachAnalytics(context.Background(), "a@example.com"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.BreachAnalytics(ctx, "b@example.com")
	if err == nil {
		t.Fatal("expected error from canceled wait")
	}
}
