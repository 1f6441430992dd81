package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/whatif/internal/model"
)

func TestSimulateScenario(t *testing.T) {
	e := placeholderEngine()
	responses := stage1(model.SubjectMath, 22, 2)
	responses[1].Complexity = "Medium"

	got := e.Simulate(responses, model.SubjectMath, 2)

	assert.Equal(t, 500, got.CurrentScore)
	assert.Equal(t, 530, got.NewScore)
	assert.Equal(t, 30, got.ScoreGain)
	assert.Equal(t, model.TierHard, got.NewDifficulty)
	require.Len(t, got.HighImpactQuestions, 2)
	assert.Equal(t, model.HighImpactQuestion{QuestionID: "s1-00", Topic: "Algebra", Complexity: model.UnknownComplexity}, got.HighImpactQuestions[0])
	assert.Equal(t, model.HighImpactQuestion{QuestionID: "s1-01", Topic: "Algebra", Complexity: "Medium"}, got.HighImpactQuestions[1])
}

func TestSimulateCapsAtStage1Total(t *testing.T) {
	e := placeholderEngine()
	responses := stage1(model.SubjectMath, 10, 1)

	got := e.Simulate(responses, model.SubjectMath, 5)

	// 9/10 -> 10/10, both hard.
	assert.Equal(t, 200+9*15, got.CurrentScore)
	assert.Equal(t, 200+10*15, got.NewScore)
	assert.Len(t, got.HighImpactQuestions, 1, "only one wrong answer exists")
}

func TestSimulateHugeAdditionalDoesNotOverflow(t *testing.T) {
	e := placeholderEngine()
	responses := stage1(model.SubjectMath, 22, 2)

	got := e.Simulate(responses, model.SubjectMath, math.MaxInt)

	assert.Equal(t, 500, got.CurrentScore)
	assert.Equal(t, 530, got.NewScore)
	assert.Equal(t, 30, got.ScoreGain)
	assert.Equal(t, model.TierHard, got.NewDifficulty)
	assert.Len(t, got.HighImpactQuestions, 2)
}

func TestSimulateReclassifiesTier(t *testing.T) {
	e := placeholderEngine()
	// 5/10 is easy at 0.6, 7/10 is hard.
	responses := stage1(model.SubjectMath, 10, 5)
	responses = append(responses, rec("h1", model.StageTagHard, "Geometry", true, 1000))

	got := e.Simulate(responses, model.SubjectMath, 2)

	assert.Equal(t, 200+6*10, got.CurrentScore)
	assert.Equal(t, 200+8*15, got.NewScore)
	assert.Equal(t, model.TierHard, got.NewDifficulty)
	assert.Equal(t, []string{"s1-00", "s1-01"}, questionIDs(got.HighImpactQuestions))
}

func TestSimulateHoldsStage2Fixed(t *testing.T) {
	e := placeholderEngine()
	responses := []model.ResponseRecord{
		rec("a", model.StageTagStatic, "Algebra", false, 1000),
		rec("b", model.StageTagHard, "Algebra", false, 1000),
		rec("c", model.StageTagStatic, "Algebra", true, 1000),
	}

	got := e.Simulate(responses, model.SubjectMath, 3)

	assert.Equal(t, []string{"a"}, questionIDs(got.HighImpactQuestions))
	assert.Equal(t, 200+2*15, got.NewScore)
}

func TestSimulateZeroAndNegativeAdditional(t *testing.T) {
	e := placeholderEngine()
	responses := stage1(model.SubjectMath, 10, 3)

	for _, n := range []int{0, -2} {
		got := e.Simulate(responses, model.SubjectMath, n)
		assert.Equal(t, got.CurrentScore, got.NewScore)
		assert.Zero(t, got.ScoreGain)
		assert.Empty(t, got.HighImpactQuestions)
		assert.Equal(t, 0, got.AdditionalCorrect)
	}
}

func TestSimulateEmptyStage1(t *testing.T) {
	e := placeholderEngine()
	responses := []model.ResponseRecord{rec("h1", model.StageTagHard, "Geometry", true, 1000)}

	got := e.Simulate(responses, model.SubjectMath, 2)

	assert.Equal(t, 200, got.CurrentScore)
	assert.Equal(t, 200, got.NewScore)
	assert.Zero(t, got.ScoreGain)
	assert.Empty(t, got.HighImpactQuestions)
}

// A map that drops when the tier flips yields a negative gain; it is reported,
// not corrected.
func TestSimulateNonMonotonicMap(t *testing.T) {
	repo := NewRepository([]model.ScoringMap{{
		Subject: model.SubjectMath,
		Entries: []model.ScoringEntry{
			{Raw: 2, Hard: 300, Easy: 500},
			{Raw: 3, Hard: 250, Easy: 550},
		},
	}})
	e := NewEngine(repo, 0.6)
	responses := stage1(model.SubjectMath, 4, 2)

	got := e.Simulate(responses, model.SubjectMath, 1)

	assert.Equal(t, 500, got.CurrentScore)
	assert.Equal(t, 250, got.NewScore)
	assert.Negative(t, got.ScoreGain, "negative gain signals a non-monotonic scoring map")
}

func TestCurrentScoreMatchesSummary(t *testing.T) {
	e := placeholderEngine()
	inputs := map[string][]model.ResponseRecord{
		"stage1 only": stage1(model.SubjectMath, 22, 2),
		"mixed": append(stage1(model.SubjectMath, 12, 7),
			rec("h1", model.StageTagHard, "Geometry", true, 1000),
			rec("h2", model.StageTagModule2, "Geometry", false, 1000)),
		"stage2 only": {rec("h1", model.StageTagHard, "Geometry", true, 1000)},
		"empty":       nil,
	}
	for name, responses := range inputs {
		t.Run(name, func(t *testing.T) {
			report := e.Analyze("cand", responses, 2)
			for _, subject := range model.Subjects {
				summary, ok := report.Summary(subject)
				require.True(t, ok)
				whatIf, ok := report.WhatIf(subject)
				require.True(t, ok)
				assert.Equal(t, summary.ScaledScore, whatIf.CurrentScore, "subject %s", subject)
				assert.GreaterOrEqual(t, whatIf.ScoreGain, 0, "placeholder maps are monotonic")
			}
		})
	}
}

func questionIDs(qs []model.HighImpactQuestion) []string {
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.QuestionID)
	}
	return ids
}
