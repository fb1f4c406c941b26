// Package provider implements the client for the external breach
// intelligence API. The provider enforces a hard limit of one request per
// second per account; the client serializes and paces all calls through a
// single shared limiter, so exactly one Client instance must be used per
// process.
package provider

// CheckResponse is the summary endpoint payload: the list of breach names
// known for an address. The provider wraps the names in a nested list.
type CheckResponse struct {
	Email    string     `json:"email"`
	Breaches [][]string `json:"breaches"`
}

// BreachNames flattens the nested name list.
func (r *CheckResponse) BreachNames() []string {
	var names []string
	for _, group := range r.Breaches {
		names = append(names, group...)
	}
	return names
}

// AnalyticsResponse is the richer analytics payload. Breach entries inside
// Details vary in shape per breach, so they are kept untyped and normalized
// downstream.
type AnalyticsResponse struct {
	ExposedBreaches ExposedBreaches `json:"ExposedBreaches"`
	Metrics         *BreachMetrics  `json:"BreachMetrics"`

	// Raw is the undecoded response body, persisted as the address snapshot.
	Raw []byte `json:"-"`
}

// ExposedBreaches wraps the variably-shaped breach detail entries.
type ExposedBreaches struct {
	Details []map[string]any `json:"breaches_details"`
}

// BreachMetrics carries provider-computed hints about an address's exposure.
type BreachMetrics struct {
	Risk       []RiskHint    `json:"risk"`
	XposedData []MetricsNode `json:"xposed_data"`
}

// RiskHint is the provider's own risk assessment for an address.
type RiskHint struct {
	Label string `json:"risk_label"`
	Score int    `json:"risk_score"`
}

// MetricsNode is one node of the exposed-data category tree. Leaves at the
// third level carry "data_"-prefixed category names.
type MetricsNode struct {
	Name     string        `json:"name"`
	Children []MetricsNode `json:"children"`
}

// RiskScoreHint returns the provider's risk score, if any. The analytics
// payload reports one risk entry per address when present.
func (m *BreachMetrics) RiskScoreHint() (int, bool) {
	if m == nil || len(m.Risk) == 0 {
		return 0, false
	}
	return m.Risk[0].Score, true
}
