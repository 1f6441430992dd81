package scoring

import (
	"log/slog"

	"github.com/pavelanni/whatif/internal/model"
)

const (
	// SlowQuestionSeconds is the time above which a response counts as slow.
	SlowQuestionSeconds = 60.0

	// WeakTopicPercent is the accuracy below which a topic counts as weak.
	WeakTopicPercent = 50.0
)

// stageSplit is one subject's responses partitioned by stage. Responses whose
// stage tag is neither Stage1 nor a Stage2 synonym are dropped entirely.
type stageSplit struct {
	subject   model.Subject
	staged    []model.ResponseRecord
	stage1    []model.ResponseRecord
	stage2    []model.ResponseRecord
	s1Correct int
	s2Correct int
}

func split(responses []model.ResponseRecord, subject model.Subject) stageSplit {
	sp := stageSplit{subject: subject}
	unknown := 0
	for _, r := range responses {
		if r.Subject != subject {
			continue
		}
		switch r.Stage() {
		case model.Stage1:
			sp.stage1 = append(sp.stage1, r)
			if r.Correct {
				sp.s1Correct++
			}
		case model.Stage2:
			sp.stage2 = append(sp.stage2, r)
			if r.Correct {
				sp.s2Correct++
			}
		default:
			unknown++
			continue
		}
		sp.staged = append(sp.staged, r)
	}
	if unknown > 0 {
		slog.Debug("ignoring responses with unrecognized stage tag", "subject", subject, "count", unknown)
	}
	return sp
}

// Aggregator builds per-subject performance summaries.
type Aggregator struct {
	calc      *Calculator
	threshold float64
}

// NewAggregator returns an Aggregator routing Stage2 with the given threshold.
func NewAggregator(calc *Calculator, threshold float64) *Aggregator {
	return &Aggregator{calc: calc, threshold: threshold}
}

// Threshold returns the adaptive threshold the aggregator classifies with.
func (a *Aggregator) Threshold() float64 {
	return a.threshold
}

// score classifies and scores a split as if s1Correct Stage1 answers were right.
func (a *Aggregator) score(sp stageSplit, s1Correct int) (raw int, tier model.Tier, scaled int) {
	raw = s1Correct + sp.s2Correct
	tier = Classify(s1Correct, len(sp.stage1), a.threshold)
	scaled = a.calc.Score(sp.subject, raw, tier)
	return raw, tier, scaled
}

// Aggregate summarizes one subject. With no Stage1 responses it returns a
// zeroed summary without classifying or scoring.
func (a *Aggregator) Aggregate(responses []model.ResponseRecord, subject model.Subject) model.PerformanceSummary {
	sp := split(responses, subject)
	if len(sp.stage1) == 0 {
		slog.Warn("no stage 1 questions, skipping scoring", "subject", subject)
		return zeroSummary(subject, a.calc.Provisional())
	}
	if len(sp.stage2) == 0 {
		slog.Info("no stage 2 questions, scoring on stage 1 only", "subject", subject)
	}

	raw, tier, scaled := a.score(sp, sp.s1Correct)
	clusters := topicClusters(sp.staged)

	return model.PerformanceSummary{
		Subject: subject,
		Stage1: model.StageOneResult{
			Correct:  sp.s1Correct,
			Total:    len(sp.stage1),
			Accuracy: float64(sp.s1Correct) / float64(len(sp.stage1)),
		},
		Stage2: model.StageTwoResult{
			Correct:    sp.s2Correct,
			Total:      len(sp.stage2),
			Difficulty: tier,
		},
		RawScore:      raw,
		ScaledScore:   scaled,
		WeakTopics:    weakTopics(clusters),
		SlowQuestions: slowQuestions(sp.staged),
		TopicClusters: clusters,
		Provisional:   a.calc.Provisional(),
	}
}

func zeroSummary(subject model.Subject, provisional bool) model.PerformanceSummary {
	return model.PerformanceSummary{
		Subject:       subject,
		Stage2:        model.StageTwoResult{Difficulty: model.TierEasy},
		ScaledScore:   DefaultScaledScore,
		WeakTopics:    map[string]float64{},
		SlowQuestions: []model.SlowQuestion{},
		TopicClusters: map[string]model.TopicCluster{},
		Provisional:   provisional,
	}
}

func slowQuestions(responses []model.ResponseRecord) []model.SlowQuestion {
	out := []model.SlowQuestion{}
	for _, r := range responses {
		if s := r.TimeSpentSeconds(); s > SlowQuestionSeconds {
			out = append(out, model.SlowQuestion{
				QuestionID: r.QuestionID,
				Topic:      r.Topic,
				TimeSpentS: s,
			})
		}
	}
	return out
}

func topicClusters(responses []model.ResponseRecord) map[string]model.TopicCluster {
	type acc struct {
		correct, total int
		seconds        float64
	}
	byTopic := make(map[string]*acc)
	for _, r := range responses {
		if !r.HasTopic() {
			continue
		}
		t, ok := byTopic[r.Topic]
		if !ok {
			t = &acc{}
			byTopic[r.Topic] = t
		}
		t.total++
		if r.Correct {
			t.correct++
		}
		t.seconds += r.TimeSpentSeconds()
	}

	clusters := make(map[string]model.TopicCluster, len(byTopic))
	for topic, t := range byTopic {
		clusters[topic] = model.TopicCluster{
			Correct:  t.correct,
			Total:    t.total,
			Accuracy: 100 * float64(t.correct) / float64(t.total),
			AvgTimeS: t.seconds / float64(t.total),
		}
	}
	return clusters
}

// weakTopics keeps clusters strictly below WeakTopicPercent.
func weakTopics(clusters map[string]model.TopicCluster) map[string]float64 {
	weak := make(map[string]float64)
	for topic, c := range clusters {
		if c.Total > 0 && c.Accuracy < WeakTopicPercent {
			weak[topic] = c.Accuracy
		}
	}
	return weak
}
