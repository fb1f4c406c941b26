package monitor

import (
	"context"
	"log"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/metrics"
	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
	"github.com/good-yellow-bee/breachwatch/internal/storage"
)

// Runner drives one full pass over every monitored address.
//
// Addresses are processed strictly sequentially: the provider enforces a
// single account-wide rate limit, so running checks concurrently would
// either violate it or need a second coordination layer on top of the
// client's limiter.
type Runner struct {
	checker   *Checker
	addresses storage.AddressRepository
	verbose   bool
}

// NewRunner creates a batch runner.
func NewRunner(checker *Checker, addresses storage.AddressRepository, verbose bool) *Runner {
	return &Runner{checker: checker, addresses: addresses, verbose: verbose}
}

// RunAll checks every monitored address and reports aggregate counters.
// A failure on one address never aborts the rest: it is recorded in the
// summary and the run proceeds. Cancellation is honored between addresses;
// the in-flight address finishes its persist-then-notify sequence first.
func (r *Runner) RunAll(ctx context.Context) (*models.BatchSummary, error) {
	addrs, err := r.addresses.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	metrics.AddressesMonitored.Set(float64(len(addrs)))
	return r.Run(ctx, addrs), nil
}

// Run checks the given addresses. Failed addresses are retried on the next
// scheduled run, not within this one.
func (r *Runner) Run(ctx context.Context, addrs []*models.MonitoredAddress) *models.BatchSummary {
	summary := &models.BatchSummary{StartedAt: time.Now().UTC()}

	for _, addr := range addrs {
		select {
		case <-ctx.Done():
			log.Printf("[batch] cancelled after %d/%d addresses", summary.Checked+len(summary.Errors), len(addrs))
			summary.FinishedAt = time.Now().UTC()
			return summary
		default:
		}

		result, err := r.checker.CheckOne(ctx, addr)
		if err != nil {
			summary.Errors = append(summary.Errors, models.AddressError{
				Email: addr.Email,
				Kind:  errorKind(err),
				Err:   err.Error(),
			})
			log.Printf("[batch] check %s: %v", addr.Email, err)
			continue
		}

		summary.Checked++
		if result.IsNew && result.NewCount > 0 {
			summary.NewBreaches++
		}
		if r.verbose {
			log.Printf("[batch] checked %s: %d breaches, score %d", addr.Email, result.NewCount, result.RiskScore)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	metrics.BatchDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	log.Printf("[batch] run complete: checked=%d new_breaches=%d errors=%d",
		summary.Checked, summary.NewBreaches, len(summary.Errors))
	return summary
}

// errorKind extracts a stable error kind for the batch summary.
func errorKind(err error) string {
	if kind := provider.KindOf(err); kind != "" {
		return string(kind)
	}
	return "storage"
}
