// Package monitor drives breach checks for monitored addresses: one
// address at a time through the provider client, normalizer, risk scorer
// and change detector, persisting state and emitting notification events.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/breachwatch/internal/metrics"
	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/normalize"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
	"github.com/good-yellow-bee/breachwatch/internal/risk"
	"github.com/good-yellow-bee/breachwatch/internal/storage"
)

// Provider abstracts the breach intelligence client.
type Provider interface {
	BreachAnalytics(ctx context.Context, email string) (*provider.AnalyticsResponse, error)
}

// EventSink receives BreachDetected events. Delivery, templating and retry
// of the outbound message are entirely the sink's responsibility.
type EventSink interface {
	BreachDetected(ctx context.Context, event models.BreachEvent) error
}

// Checker runs the check pipeline for a single monitored address.
type Checker struct {
	provider   Provider
	addresses  storage.AddressRepository
	events     storage.EventRepository
	sink       EventSink
	normalizer *normalize.Normalizer

	// now is injectable for tests.
	now func() time.Time
}

// NewChecker creates a Checker. events and sink may be nil, in which case
// detected transitions are persisted but not recorded or delivered.
func NewChecker(p Provider, addresses storage.AddressRepository, events storage.EventRepository, sink EventSink) *Checker {
	return &Checker{
		provider:   p,
		addresses:  addresses,
		events:     events,
		sink:       sink,
		normalizer: normalize.New(nil),
		now:        time.Now,
	}
}

// CheckOne checks a single address against the provider and persists the
// outcome.
//
// The persist-then-notify ordering is a hard contract: the updated breach
// count is stored before any notification is emitted, so a re-run with
// unchanged upstream data sees previousCount == newCount and cannot
// double-fire the event.
func (c *Checker) CheckOne(ctx context.Context, addr *models.MonitoredAddress) (*models.CheckResult, error) {
	resp, err := c.provider.BreachAnalytics(ctx, addr.Email)
	if err != nil && !provider.IsNotFound(err) {
		// Leave stored state untouched beyond recording the attempt.
		if touchErr := c.addresses.TouchLastChecked(ctx, addr.ID, c.now().UTC()); touchErr != nil {
			log.Printf("[monitor] touch last checked for %s: %v", addr.Email, touchErr)
		}
		metrics.ChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var result *models.CheckResult
	if err != nil {
		// NotFound: a valid "no breach" outcome, not a failure.
		result = c.buildResult(addr, nil, nil, nil)
		metrics.ChecksTotal.WithLabelValues("not_found").Inc()
	} else {
		result = c.buildResult(addr, resp.ExposedBreaches.Details, resp.Metrics, resp.Raw)
		metrics.ChecksTotal.WithLabelValues("ok").Inc()
	}

	checkedAt := c.now().UTC()
	if err := c.addresses.UpsertCheckResult(ctx, addr.ID, result, checkedAt); err != nil {
		return nil, fmt.Errorf("persist check result for %s: %w", addr.Email, err)
	}

	if result.IsNew && result.NewCount > 0 {
		metrics.NewBreachesTotal.Inc()
		c.emit(ctx, addr, result, checkedAt)
	}

	return result, nil
}

// buildResult normalizes, scores and diffs one analytics payload.
func (c *Checker) buildResult(addr *models.MonitoredAddress, raws []map[string]any, hints *provider.BreachMetrics, raw []byte) *models.CheckResult {
	records := c.normalizer.Records(raws, hints)
	change := risk.DetectChange(addr.BreachCount, records)
	return &models.CheckResult{
		Records:        records,
		RiskScore:      risk.Score(records, hints),
		IsNew:          change.IsNew,
		NewCount:       change.NewCount,
		NewBreachNames: change.NewBreachNames,
		Snapshot:       raw,
	}
}

// emit records and delivers the BreachDetected event. The state update has
// already been persisted; failures here are logged but do not fail the
// check, since the next run will see the stored count and not re-fire.
func (c *Checker) emit(ctx context.Context, addr *models.MonitoredAddress, result *models.CheckResult, at time.Time) {
	event := models.BreachEvent{
		OwnerID:        addr.OwnerID,
		Email:          addr.Email,
		NewBreachCount: result.NewCount,
		BreachNames:    result.NewBreachNames,
		RiskScore:      result.RiskScore,
	}

	if c.events != nil {
		record := &models.EventRecord{
			ID:             uuid.New().String(),
			OwnerID:        event.OwnerID,
			Email:          event.Email,
			NewBreachCount: event.NewBreachCount,
			BreachNames:    event.BreachNames,
			RiskScore:      event.RiskScore,
			CreatedAt:      at,
		}
		if err := c.events.Create(ctx, record); err != nil {
			log.Printf("[monitor] record breach event for %s: %v", addr.Email, err)
		}
	}

	if c.sink != nil {
		if err := c.sink.BreachDetected(ctx, event); err != nil {
			log.Printf("[monitor] deliver breach event for %s: %v", addr.Email, err)
		}
	}
}
