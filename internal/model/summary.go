package model

// StageOneResult counts first-stage responses.
type StageOneResult struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// StageTwoResult counts second-stage responses and the tier they were served at.
type StageTwoResult struct {
	Correct    int  `json:"correct"`
	Total      int  `json:"total"`
	Difficulty Tier `json:"difficulty"`
}

// SlowQuestion is a response that took longer than the slow-question limit.
type SlowQuestion struct {
	QuestionID string  `json:"question_id"`
	Topic      string  `json:"topic,omitempty"`
	TimeSpentS float64 `json:"time_spent_s"`
}

// TopicCluster summarizes every response on one topic.
type TopicCluster struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"` // percent
	AvgTimeS float64 `json:"avg_time_s"`
}

// PerformanceSummary is the aggregated result for one subject.
type PerformanceSummary struct {
	Subject       Subject                 `json:"subject"`
	Stage1        StageOneResult          `json:"stage1"`
	Stage2        StageTwoResult          `json:"stage2"`
	RawScore      int                     `json:"raw_score"`
	ScaledScore   int                     `json:"scaled_score"`
	WeakTopics    map[string]float64      `json:"weak_topics"` // topic -> accuracy percent
	SlowQuestions []SlowQuestion          `json:"slow_questions"`
	TopicClusters map[string]TopicCluster `json:"topic_clusters"`
	Provisional   bool                    `json:"provisional,omitempty"`
}

// Scored reports whether the subject had any first-stage responses to score.
func (p PerformanceSummary) Scored() bool {
	return p.Stage1.Total > 0
}

// HighImpactQuestion is an originally-wrong first-stage question treated as fixed.
type HighImpactQuestion struct {
	QuestionID string `json:"question_id"`
	Topic      string `json:"topic,omitempty"`
	Complexity string `json:"complexity"`
}

// WhatIfResult is the projected score for one subject.
type WhatIfResult struct {
	Subject             Subject              `json:"subject"`
	AdditionalCorrect   int                  `json:"additional_correct"`
	CurrentScore        int                  `json:"current_score"`
	NewScore            int                  `json:"new_score"`
	ScoreGain           int                  `json:"score_gain"`
	NewDifficulty       Tier                 `json:"new_difficulty"`
	HighImpactQuestions []HighImpactQuestion `json:"high_impact_questions"`
	Provisional         bool                 `json:"provisional,omitempty"`
}
