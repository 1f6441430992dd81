package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/whatif/internal/model"
)

func TestAggregateStage1OnlyScenario(t *testing.T) {
	e := placeholderEngine()
	responses := stage1(model.SubjectMath, 22, 2)

	got := e.Aggregate(responses, model.SubjectMath)

	assert.Equal(t, model.StageOneResult{Correct: 20, Total: 22, Accuracy: 20.0 / 22.0}, got.Stage1)
	assert.Equal(t, model.TierHard, got.Stage2.Difficulty)
	assert.Equal(t, 0, got.Stage2.Total)
	assert.Equal(t, 20, got.RawScore)
	assert.Equal(t, 500, got.ScaledScore)
	assert.True(t, got.Provisional)
}

func TestAggregateEmptyStage1(t *testing.T) {
	e := placeholderEngine()
	responses := []model.ResponseRecord{
		rec("h1", model.StageTagHard, "Geometry", true, 90000),
		rec("h2", model.StageTagHard, "Geometry", false, 1000),
	}

	got := e.Aggregate(responses, model.SubjectMath)

	assert.Equal(t, 200, got.ScaledScore)
	assert.Equal(t, 0, got.RawScore)
	assert.Equal(t, model.TierEasy, got.Stage2.Difficulty)
	assert.Empty(t, got.WeakTopics)
	assert.Empty(t, got.TopicClusters)
	assert.Empty(t, got.SlowQuestions)
	assert.NotNil(t, got.WeakTopics)
	assert.NotNil(t, got.SlowQuestions)
	assert.False(t, got.Scored())
}

func TestAggregateTwoStages(t *testing.T) {
	e := NewEngine(NewRepository(nil), 0.6)
	responses := []model.ResponseRecord{
		rec("q1", model.StageTagStatic, "Algebra", true, 20000),
		rec("q2", model.StageTagStatic, "Algebra", false, 60000),
		rec("q3", model.StageTagStatic, "Geometry", true, 60001),
		rec("q4", model.StageTagStatic, "Geometry", true, 5000),
		rec("q5", model.StageTagAdaptive, "Geometry", false, 120000),
		rec("q6", model.StageTagModule2, "Statistics", false, 1000),
		rec("q7", model.StageTagAdaptiveHard, "", true, 1000),
		rec("q8", "Warmup", "Statistics", true, 999999),
	}

	got := e.Aggregate(responses, model.SubjectMath)

	assert.Equal(t, 3, got.Stage1.Correct)
	assert.Equal(t, 4, got.Stage1.Total)
	assert.Equal(t, 1, got.Stage2.Correct)
	assert.Equal(t, 3, got.Stage2.Total)
	assert.Equal(t, model.TierHard, got.Stage2.Difficulty)
	assert.Equal(t, 4, got.RawScore)
	assert.Equal(t, 200+4*15, got.ScaledScore)

	// Exactly 60s is not slow; the unknown-stage response is ignored.
	ids := make([]string, 0, len(got.SlowQuestions))
	for _, s := range got.SlowQuestions {
		ids = append(ids, s.QuestionID)
	}
	assert.Equal(t, []string{"q3", "q5"}, ids)

	require.Contains(t, got.TopicClusters, "Algebra")
	assert.InDelta(t, 50.0, got.TopicClusters["Algebra"].Accuracy, 1e-9)
	assert.InDelta(t, 40.0, got.TopicClusters["Algebra"].AvgTimeS, 1e-9)
	assert.Equal(t, 1, got.TopicClusters["Statistics"].Total, "unknown-stage response must not be clustered")
	assert.Len(t, got.TopicClusters, 3)

	// Algebra sits at exactly 50% and is not weak.
	assert.NotContains(t, got.WeakTopics, "Algebra")
	assert.Contains(t, got.WeakTopics, "Statistics")
	assert.NotContains(t, got.WeakTopics, "Geometry")
	assert.InDelta(t, 0.0, got.WeakTopics["Statistics"], 1e-9)
}

func TestAggregateIgnoresOtherSubjects(t *testing.T) {
	e := placeholderEngine()
	responses := append(stage1(model.SubjectMath, 10, 5), stage1(model.SubjectReadingWriting, 8, 0)...)

	math := e.Aggregate(responses, model.SubjectMath)
	rw := e.Aggregate(responses, model.SubjectReadingWriting)

	assert.Equal(t, 10, math.Stage1.Total)
	assert.Equal(t, model.TierEasy, math.Stage2.Difficulty)
	assert.Equal(t, 200+5*10, math.ScaledScore)
	assert.Equal(t, 8, rw.Stage1.Total)
	assert.Equal(t, 200+8*11, rw.ScaledScore)
}

func TestWeakTopicBoundary(t *testing.T) {
	clusters := map[string]model.TopicCluster{
		"half":  {Correct: 2, Total: 4, Accuracy: 50},
		"below": {Correct: 1, Total: 3, Accuracy: 100.0 / 3},
		"above": {Correct: 3, Total: 5, Accuracy: 60},
	}
	weak := weakTopics(clusters)
	assert.Equal(t, map[string]float64{"below": 100.0 / 3}, weak)
}
