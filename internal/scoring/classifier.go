package scoring

import (
	"log/slog"

	"github.com/pavelanni/whatif/internal/model"
)

// Classify decides the Stage2 tier from Stage1 accuracy. The boundary is
// inclusive: a ratio equal to threshold is hard. A zero total is always easy.
func Classify(correct, total int, threshold float64) model.Tier {
	if total == 0 {
		slog.Warn("no stage 1 questions, defaulting stage 2 to easy")
		return model.TierEasy
	}
	if reachesThreshold(correct, total, threshold) {
		return model.TierHard
	}
	return model.TierEasy
}

// reachesThreshold is the routing rule shared with the calibrator. total must be > 0.
func reachesThreshold(correct, total int, threshold float64) bool {
	return float64(correct)/float64(total) >= threshold
}
