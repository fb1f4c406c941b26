package models

// PasswordRisk describes how a breached site stored passwords, as reported
// by the provider. The provider uses a small closed set of labels.
type PasswordRisk string

const (
	PasswordRiskPlaintext   PasswordRisk = "plaintext"
	PasswordRiskEasyToCrack PasswordRisk = "easytocrack"
	PasswordRiskHardToCrack PasswordRisk = "hardtocrack"
	PasswordRiskUnknown     PasswordRisk = "unknown"
)

// BreachRecord is the canonical, post-normalization form of one exposure
// event. Every field except Name is optional: normalization degrades missing
// or malformed source fields to zero values / nil rather than failing.
type BreachRecord struct {
	// Name is the display name of the breach. Never empty; defaults to
	// "Unknown Breach" when the source supplies no usable name field.
	Name string `json:"name"`

	Domain string `json:"domain,omitempty"`

	// Date is the breach occurrence date as an ISO YYYY-MM-DD string, or
	// empty when neither the explicit field nor the description yields one.
	Date string `json:"date,omitempty"`

	// ExposedData lists the exposed data categories. Deduplicated, entries
	// are non-empty.
	ExposedData []string `json:"exposed_data,omitempty"`

	// ExposedRecords is the number of exposed records, or nil when unknown.
	ExposedRecords *int64 `json:"exposed_records,omitempty"`

	Description  string       `json:"description,omitempty"`
	Industry     string       `json:"industry,omitempty"`
	PasswordRisk PasswordRisk `json:"password_risk,omitempty"`

	// Verified, Searchable and Sensitive are tri-state: nil means the
	// provider did not say, which is distinct from an explicit false.
	Verified   *bool `json:"verified,omitempty"`
	Searchable *bool `json:"searchable,omitempty"`
	Sensitive  *bool `json:"sensitive,omitempty"`

	// LogoURL is always absolute after normalization.
	LogoURL      string `json:"logo_url,omitempty"`
	ReferenceURL string `json:"reference_url,omitempty"`
}

// CheckResult is the ephemeral outcome of checking one monitored address.
type CheckResult struct {
	Records   []BreachRecord `json:"records"`
	RiskScore int            `json:"risk_score"`

	// IsNew reports whether this check discovered more breaches than the
	// previously stored count.
	IsNew    bool `json:"is_new"`
	NewCount int  `json:"new_count"`

	// NewBreachNames holds up to five display names used to compose the
	// notification message.
	NewBreachNames []string `json:"new_breach_names,omitempty"`

	// Snapshot is the raw analytics payload this result was derived from.
	Snapshot []byte `json:"-"`
}

// BreachEvent is emitted once per genuine new-exposure transition of a
// monitored address. Delivery and templating belong to the notifier.
type BreachEvent struct {
	OwnerID        string   `json:"owner_id"`
	Email          string   `json:"email"`
	NewBreachCount int      `json:"new_breach_count"`
	BreachNames    []string `json:"breach_names"` // at most five
	RiskScore      int      `json:"risk_score"`
}

// RiskBand buckets a risk score for presentation.
type RiskBand string

const (
	RiskBandHigh     RiskBand = "high"
	RiskBandElevated RiskBand = "elevated"
	RiskBandStable   RiskBand = "stable"
)

// BandForScore maps a 0-100 risk score to its severity band.
func BandForScore(score int) RiskBand {
	switch {
	case score >= 75:
		return RiskBandHigh
	case score >= 45:
		return RiskBandElevated
	default:
		return RiskBandStable
	}
}
