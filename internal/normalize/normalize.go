// Package normalize maps the provider's variably-shaped raw breach entries
// into the canonical BreachRecord form. Field names and formats differ
// between entries of the same payload, so every accessor here is defensive:
// a missing or wrongly-typed field degrades to the zero value for that one
// attribute and never fails the record.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
)

// fallbackName is used when no name field yields a usable value.
const fallbackName = "Unknown Breach"

// dataCategoryPrefix marks exposed-data leaves in the provider metrics tree.
const dataCategoryPrefix = "data_"

// isoDateRe matches an ISO YYYY-MM-DD date embedded in free text.
var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Options configures URL normalization for provider-relative logo paths.
type Options struct {
	// SiteOrigin prefixes logo paths that start with "/".
	SiteOrigin string
	// LogoBase prefixes bare logo filenames.
	LogoBase string
}

// DefaultOptions returns the provider's production origins.
func DefaultOptions() *Options {
	return &Options{
		SiteOrigin: "https://xposedornot.com",
		LogoBase:   "https://xposedornot.com/static/logos/",
	}
}

// Normalizer converts raw breach entries into canonical records.
type Normalizer struct {
	opts *Options
}

// New creates a Normalizer with the given options, or defaults when nil.
func New(opts *Options) *Normalizer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Normalizer{opts: opts}
}

// Records normalizes every entry of an analytics payload.
func (n *Normalizer) Records(raws []map[string]any, hints *provider.BreachMetrics) []models.BreachRecord {
	records := make([]models.BreachRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, n.Record(raw, hints))
	}
	return records
}

// Record normalizes a single raw breach entry. It is total: no input shape
// causes it to fail.
func (n *Normalizer) Record(raw map[string]any, hints *provider.BreachMetrics) models.BreachRecord {
	rec := models.BreachRecord{
		Name:         breachName(raw),
		Domain:       stringField(raw, "domain"),
		Description:  stringField(raw, "details", "description"),
		Industry:     stringField(raw, "industry"),
		PasswordRisk: passwordRisk(stringField(raw, "password_risk")),
		ReferenceURL: stringField(raw, "references"),
	}

	rec.Date = breachDate(raw, rec.Description)
	rec.ExposedData = exposedData(raw, hints)
	rec.ExposedRecords = intField(raw, "xposed_records")
	rec.LogoURL = n.logoURL(stringField(raw, "logo"))

	rec.Verified = boolField(raw, "verified")
	rec.Searchable = boolField(raw, "searchable")
	rec.Sensitive = boolField(raw, "sensitive")

	return rec
}

// breachName resolves the display name through the source field precedence:
// breach, breachID, "Breach ID", then the fixed fallback.
func breachName(raw map[string]any) string {
	if name := stringField(raw, "breach", "breachID", "Breach ID"); name != "" {
		return name
	}
	return fallbackName
}

// breachDate uses the explicit date field when present, otherwise scans the
// free-text description for an ISO date substring.
func breachDate(raw map[string]any, description string) string {
	if date := stringField(raw, "xposed_date"); date != "" {
		return date
	}
	return isoDateRe.FindString(description)
}

// exposedData resolves the exposed data categories: a list field as-is, a
// semicolon-delimited string split on ";", and finally the provider metrics
// tree. The result is trimmed, deduplicated, and free of empty entries.
func exposedData(raw map[string]any, hints *provider.BreachMetrics) []string {
	var values []string

	switch v := raw["xposed_data"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	case []string:
		values = v
	case string:
		values = strings.Split(v, ";")
	}

	if out := cleanCategories(values); len(out) > 0 {
		return out
	}
	return cleanCategories(categoriesFromTree(hints))
}

// categoriesFromTree walks the three-level metrics tree. Leaves sit two
// levels below the top items; only "data_"-prefixed leaf names are exposure
// categories, unprefixed with underscores replaced by spaces.
func categoriesFromTree(hints *provider.BreachMetrics) []string {
	if hints == nil {
		return nil
	}
	var out []string
	for _, item := range hints.XposedData {
		for _, child := range item.Children {
			for _, leaf := range child.Children {
				if !strings.HasPrefix(leaf.Name, dataCategoryPrefix) {
					continue
				}
				name := strings.TrimPrefix(leaf.Name, dataCategoryPrefix)
				out = append(out, strings.ReplaceAll(name, "_", " "))
			}
		}
	}
	return out
}

// cleanCategories trims entries, drops empties, and deduplicates while
// preserving first-seen order.
func cleanCategories(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// logoURL normalizes a logo reference to an absolute URL. Absolute URLs pass
// through; paths get the site origin; bare filenames get the logo base.
func (n *Normalizer) logoURL(logo string) string {
	switch {
	case logo == "":
		return ""
	case strings.Contains(logo, "://"):
		return logo
	case strings.HasPrefix(logo, "/"):
		return strings.TrimRight(n.opts.SiteOrigin, "/") + logo
	default:
		return n.opts.LogoBase + logo
	}
}

// passwordRisk maps the provider's password storage label onto the closed
// risk set. An empty label stays empty (absent).
func passwordRisk(label string) models.PasswordRisk {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "")
	switch {
	case normalized == "":
		return ""
	case strings.Contains(normalized, "plain"):
		return models.PasswordRiskPlaintext
	case strings.Contains(normalized, "easy"):
		return models.PasswordRiskEasyToCrack
	case strings.Contains(normalized, "hard"):
		return models.PasswordRiskHardToCrack
	default:
		return models.PasswordRiskUnknown
	}
}

// stringField returns the first non-empty string value among keys.
func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// intField reads an integer that may arrive as a JSON number or a numeric
// string (possibly with thousands separators). Returns nil when absent or
// unparseable.
func intField(raw map[string]any, key string) *int64 {
	switch v := raw[key].(type) {
	case float64:
		n := int64(v)
		return &n
	case int:
		n := int64(v)
		return &n
	case int64:
		return &v
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}

// boolField resolves a tri-state flag: an explicit boolean wins, a textual
// "Yes"/"No" maps to true/false, anything else is undefined (nil). The
// undefined state is deliberate; it must not collapse to false.
func boolField(raw map[string]any, key string) *bool {
	switch v := raw[key].(type) {
	case bool:
		return &v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes":
			b := true
			return &b
		case "no":
			b := false
			return &b
		}
	}
	return nil
}
