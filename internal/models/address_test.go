package models

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com \n", "bob@example.com"},
		{"already@lower.case", "already@lower.case"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score int
		want  RiskBand
	}{
		{0, RiskBandStable},
		{44, RiskBandStable},
		{45, RiskBandElevated},
		{74, RiskBandElevated},
		{75, RiskBandHigh},
		{100, RiskBandHigh},
	}

	for _, tt := range tests {
		if got := BandForScore(tt.score); got != tt.want {
			t.Errorf("BandForScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
