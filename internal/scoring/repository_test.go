package scoring

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/whatif/internal/model"
)

func TestPlaceholderRepository(t *testing.T) {
	repo := NewRepository(nil)
	require.True(t, repo.Placeholder())

	got, ok := repo.Lookup(model.SubjectMath, 20, model.TierHard)
	assert.True(t, ok)
	assert.Equal(t, 500, got)

	got, ok = repo.Lookup(model.SubjectMath, 20, model.TierEasy)
	assert.True(t, ok)
	assert.Equal(t, 400, got)

	got, ok = repo.Lookup(model.SubjectReadingWriting, 54, model.TierHard)
	assert.True(t, ok)
	assert.Equal(t, 200+54*11, got)

	got, ok = repo.Lookup(model.SubjectMath, 44, model.TierHard)
	assert.True(t, ok)
	assert.Equal(t, 860, got)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRangeWarnings(t *testing.T) {
	logs := captureLogs(t)
	NewRepository(nil)
	assert.NotContains(t, logs.String(), "outside 200-800", "placeholder maps are not range-checked")

	logs.Reset()
	NewRepository([]model.ScoringMap{{
		Subject: model.SubjectMath,
		Entries: []model.ScoringEntry{{Raw: 0, Hard: 200, Easy: 200}, {Raw: 1, Hard: 900, Easy: 250}},
	}})
	assert.Contains(t, logs.String(), "outside 200-800")
	assert.Contains(t, logs.String(), "raw=1")
}

func TestLookupUncovered(t *testing.T) {
	repo := NewRepository([]model.ScoringMap{{
		Subject: model.SubjectMath,
		Entries: []model.ScoringEntry{
			{Raw: 0, Hard: 200, Easy: 200},
			{Raw: 2, Hard: 260, Easy: 240},
		},
	}})
	require.False(t, repo.Placeholder())

	tests := []struct {
		name    string
		subject model.Subject
		raw     int
		tier    model.Tier
		want    int
		covered bool
	}{
		{"exact hit hard", model.SubjectMath, 2, model.TierHard, 260, true},
		{"exact hit easy", model.SubjectMath, 2, model.TierEasy, 240, true},
		{"gap between entries", model.SubjectMath, 1, model.TierHard, DefaultScaledScore, false},
		{"beyond last entry", model.SubjectMath, 45, model.TierHard, DefaultScaledScore, false},
		{"negative raw", model.SubjectMath, -1, model.TierEasy, DefaultScaledScore, false},
		{"unknown subject", model.SubjectReadingWriting, 2, model.TierHard, DefaultScaledScore, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := repo.Lookup(tt.subject, tt.raw, tt.tier)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.covered, ok)
		})
	}
}

func TestDuplicateRawKeepsFirst(t *testing.T) {
	repo := NewRepository([]model.ScoringMap{{
		Subject: model.SubjectMath,
		Entries: []model.ScoringEntry{
			{Raw: 5, Hard: 300, Easy: 250},
			{Raw: 5, Hard: 700, Easy: 650},
		},
	}})
	got, _ := repo.Lookup(model.SubjectMath, 5, model.TierHard)
	assert.Equal(t, 300, got)
}

func TestCalculatorUncoveredAlways200(t *testing.T) {
	calc := NewCalculator(NewRepository([]model.ScoringMap{{
		Subject: model.SubjectMath,
		Entries: []model.ScoringEntry{{Raw: 10, Hard: 400, Easy: 350}},
	}}))
	for raw := 0; raw < 60; raw++ {
		if raw == 10 {
			continue
		}
		for _, tier := range []model.Tier{model.TierEasy, model.TierHard} {
			assert.Equal(t, 200, calc.Score(model.SubjectMath, raw, tier), "raw=%d tier=%s", raw, tier)
			assert.Equal(t, 200, calc.Score(model.SubjectReadingWriting, raw, tier), "raw=%d tier=%s", raw, tier)
		}
	}
}
