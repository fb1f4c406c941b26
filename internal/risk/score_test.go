package risk

import (
	"fmt"
	"testing"

	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
)

func records(n int, risks ...models.PasswordRisk) []models.BreachRecord {
	recs := make([]models.BreachRecord, n)
	for i := range recs {
		recs[i].Name = fmt.Sprintf("Breach%d", i+1)
		if i < len(risks) {
			recs[i].PasswordRisk = risks[i]
		}
	}
	return recs
}

func hintOf(score int) *provider.BreachMetrics {
	return &provider.BreachMetrics{
		Risk: []provider.RiskHint{{Label: "provider", Score: score}},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		records []models.BreachRecord
		hints   *provider.BreachMetrics
		want    int
	}{
		{
			name:    "no records no hints",
			records: nil,
			want:    0,
		},
		{
			name:    "one record",
			records: records(1),
			want:    10,
		},
		{
			name:    "five records hit the cap",
			records: records(5),
			want:    50,
		},
		{
			name:    "ten records still capped",
			records: records(10),
			want:    50,
		},
		{
			name:    "plaintext penalty",
			records: records(1, models.PasswordRiskPlaintext),
			want:    40,
		},
		{
			name:    "easy to crack penalty",
			records: records(1, models.PasswordRiskEasyToCrack),
			want:    30,
		},
		{
			name:    "plaintext wins over easy to crack",
			records: records(2, models.PasswordRiskEasyToCrack, models.PasswordRiskPlaintext),
			want:    50,
		},
		{
			name:    "hard to crack adds nothing",
			records: records(1, models.PasswordRiskHardToCrack),
			want:    10,
		},
		{
			name:    "capped base plus plaintext",
			records: records(7, models.PasswordRiskPlaintext),
			want:    80,
		},
		{
			name:    "two records with plaintext",
			records: records(2, models.PasswordRiskPlaintext),
			want:    50,
		},
		{
			name:    "hint acts as floor",
			records: records(1),
			hints:   hintOf(62),
			want:    62,
		},
		{
			name:    "hint below computed is ignored",
			records: records(5, models.PasswordRiskPlaintext),
			hints:   hintOf(30),
			want:    80,
		},
		{
			name:    "hint clamped to max",
			records: records(1),
			hints:   hintOf(400),
			want:    100,
		},
		{
			name:    "negative hint ignored",
			records: records(1),
			hints:   hintOf(-5),
			want:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.records, tt.hints)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreNeverOutOfRange(t *testing.T) {
	for n := 0; n <= 20; n++ {
		got := Score(records(n, models.PasswordRiskPlaintext), hintOf(150))
		if got < 0 || got > 100 {
			t.Fatalf("Score with %d records = %d, out of [0,100]", n, got)
		}
	}
}
