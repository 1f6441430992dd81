package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/whatif/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		total     int
		threshold float64
		want      model.Tier
	}{
		{"zero total", 0, 0, 0.6, model.TierEasy},
		{"zero total with correct count", 5, 0, 0.0, model.TierEasy},
		{"above threshold", 20, 22, 0.6, model.TierHard},
		{"exactly at threshold", 3, 5, 0.6, model.TierHard},
		{"just below threshold", 5, 9, 0.6, model.TierEasy},
		{"none correct", 0, 10, 0.6, model.TierEasy},
		{"zero threshold", 0, 10, 0.0, model.TierHard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.correct, tt.total, tt.threshold))
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	const total = 27
	for _, threshold := range []float64{0.3, 0.5, 0.6, 0.75} {
		seenHard := false
		for c := 0; c <= total; c++ {
			hard := Classify(c, total, threshold) == model.TierHard
			if seenHard {
				assert.True(t, hard, "threshold=%v correct=%d dropped back to easy", threshold, c)
			}
			seenHard = seenHard || hard
		}
		assert.True(t, seenHard, "threshold=%v never reached hard", threshold)
	}
}
