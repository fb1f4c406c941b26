// Package risk computes the exposure risk score for a monitored address and
// detects new exposures between checks.
package risk

import (
	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
)

const (
	pointsPerBreach = 10
	breachPointsCap = 50

	plaintextPenalty   = 30
	easyToCrackPenalty = 20

	maxScore = 100
)

// Score computes the 0-100 risk score for a set of normalized records plus
// optional provider hints.
//
// The ordering is part of the contract: an additive base (per-record points
// capped, then the single worst password-storage penalty), with the
// provider's own score acting as a floor rather than being averaged in. The
// severity bands shown to users (>=75 high, >=45 elevated) depend on it.
func Score(records []models.BreachRecord, hints *provider.BreachMetrics) int {
	score := len(records) * pointsPerBreach
	if score > breachPointsCap {
		score = breachPointsCap
	}

	switch {
	case anyPasswordRisk(records, models.PasswordRiskPlaintext):
		score += plaintextPenalty
	case anyPasswordRisk(records, models.PasswordRiskEasyToCrack):
		score += easyToCrackPenalty
	}

	if hint, ok := hints.RiskScoreHint(); ok && hint > score {
		score = hint
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

func anyPasswordRisk(records []models.BreachRecord, risk models.PasswordRisk) bool {
	for _, rec := range records {
		if rec.PasswordRisk == risk {
			return true
		}
	}
	return false
}
