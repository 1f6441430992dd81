package scoring

import (
	"log/slog"

	"github.com/pavelanni/whatif/internal/model"
)

// Simulator projects the score reachable with more correct Stage1 answers.
type Simulator struct {
	agg *Aggregator
}

// NewSimulator returns a Simulator that scores exactly as agg does.
func NewSimulator(agg *Aggregator) *Simulator {
	return &Simulator{agg: agg}
}

// Simulate flips up to additionalCorrect wrong Stage1 answers to correct,
// reclassifies Stage2 and rescores. Stage2 outcomes are never changed.
func (s *Simulator) Simulate(responses []model.ResponseRecord, subject model.Subject, additionalCorrect int) model.WhatIfResult {
	if additionalCorrect < 0 {
		additionalCorrect = 0
	}
	res := model.WhatIfResult{
		Subject:             subject,
		AdditionalCorrect:   additionalCorrect,
		HighImpactQuestions: []model.HighImpactQuestion{},
		Provisional:         s.agg.calc.Provisional(),
	}

	sp := split(responses, subject)
	if len(sp.stage1) == 0 {
		// Matches the zeroed summary the aggregator produces.
		res.CurrentScore = DefaultScaledScore
		res.NewScore = DefaultScaledScore
		res.NewDifficulty = model.TierEasy
		return res
	}

	_, _, current := s.agg.score(sp, sp.s1Correct)
	// Capped before adding so huge counts cannot overflow.
	newCorrect := sp.s1Correct + min(additionalCorrect, len(sp.stage1)-sp.s1Correct)
	newRaw, newTier, projected := s.agg.score(sp, newCorrect)

	res.CurrentScore = current
	res.NewScore = projected
	res.ScoreGain = projected - current
	res.NewDifficulty = newTier
	res.HighImpactQuestions = highImpact(sp.stage1, additionalCorrect)

	if res.ScoreGain < 0 {
		slog.Warn("what-if gain is negative, scoring map is not monotonic in raw score",
			"subject", subject, "current", current, "new", projected, "new_raw", newRaw)
	}
	return res
}

// highImpact returns the first n wrong responses in their original order.
func highImpact(stage1 []model.ResponseRecord, n int) []model.HighImpactQuestion {
	out := []model.HighImpactQuestion{}
	for _, r := range stage1 {
		if len(out) == n {
			break
		}
		if r.Correct {
			continue
		}
		out = append(out, model.HighImpactQuestion{
			QuestionID: r.QuestionID,
			Topic:      r.Topic,
			Complexity: r.ComplexityLabel(),
		})
	}
	return out
}
