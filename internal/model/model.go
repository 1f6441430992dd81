package model

import "strings"

// Subject identifies one scored section of the exam.
type Subject string

const (
	// SubjectMath is the math section.
	SubjectMath Subject = "Math"
	// SubjectReadingWriting is the reading and writing section.
	SubjectReadingWriting Subject = "Reading and Writing"
)

// Subjects lists every scored subject in report order.
var Subjects = []Subject{SubjectMath, SubjectReadingWriting}

// ParseSubject maps the subject names used across data sources onto a Subject.
// The second return value is false for names it does not recognize.
func ParseSubject(name string) (Subject, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "math", "mathematics":
		return SubjectMath, true
	case "reading and writing", "readingwriting", "reading & writing", "rw":
		return SubjectReadingWriting, true
	}
	return "", false
}

// Stage is the adaptive stage a response belongs to.
type Stage int

const (
	StageUnknown Stage = iota
	Stage1
	Stage2
)

func (s Stage) String() string {
	switch s {
	case Stage1:
		return "stage1"
	case Stage2:
		return "stage2"
	default:
		return "unknown"
	}
}

// Stage tag labels found in exported attempt data.
const (
	StageTagStatic       = "Static"
	StageTagHard         = "Hard"
	StageTagAdaptive     = "Adaptive"
	StageTagModule2      = "Module 2"
	StageTagAdaptiveHard = "AdaptiveHard"
)

var stage2Tags = map[string]bool{
	StageTagHard:         true,
	StageTagAdaptive:     true,
	StageTagModule2:      true,
	StageTagAdaptiveHard: true,
}

// StageOf groups a free-form stage tag into a Stage.
func StageOf(tag string) Stage {
	if tag == StageTagStatic {
		return Stage1
	}
	if stage2Tags[tag] {
		return Stage2
	}
	return StageUnknown
}

// Tier is the difficulty tier the second stage is presented at.
type Tier string

const (
	TierEasy Tier = "easy"
	TierHard Tier = "hard"
)

// UnknownComplexity labels responses that carry no complexity.
const UnknownComplexity = "Unknown"

// ResponseRecord is one answered question, with its identifier already canonical.
type ResponseRecord struct {
	QuestionID  string  `json:"question_id"`
	Subject     Subject `json:"subject"`
	StageTag    string  `json:"stage_tag"`
	Topic       string  `json:"topic,omitempty"`
	Correct     bool    `json:"correct"`
	TimeSpentMs float64 `json:"time_spent_ms"`
	Complexity  string  `json:"complexity,omitempty"`
}

// Stage returns the stage grouped from the record's tag.
func (r ResponseRecord) Stage() Stage {
	return StageOf(r.StageTag)
}

// TimeSpentSeconds converts the recorded time to seconds.
func (r ResponseRecord) TimeSpentSeconds() float64 {
	return r.TimeSpentMs / 1000
}

// HasTopic reports whether the record carries a topic.
func (r ResponseRecord) HasTopic() bool {
	return r.Topic != ""
}

// ComplexityLabel returns the complexity or UnknownComplexity when absent.
func (r ResponseRecord) ComplexityLabel() string {
	if r.Complexity == "" {
		return UnknownComplexity
	}
	return r.Complexity
}

// ScoringEntry maps one raw score to its scaled score at each tier.
type ScoringEntry struct {
	Raw  int `json:"raw" yaml:"raw"`
	Hard int `json:"hard" yaml:"hard"`
	Easy int `json:"easy" yaml:"easy"`
}

// Scaled returns the entry's scaled score for the tier.
func (e ScoringEntry) Scaled(t Tier) int {
	if t == TierHard {
		return e.Hard
	}
	return e.Easy
}

// ScoringMap is the raw-to-scaled lookup table for one subject.
type ScoringMap struct {
	Subject Subject        `json:"key" yaml:"key"`
	Entries []ScoringEntry `json:"map" yaml:"map"`
}

// ThresholdSample is one historical first-stage outcome and the tier actually served.
type ThresholdSample struct {
	Stage1Correct int  `json:"module1_correct" yaml:"module1_correct"`
	Stage1Total   int  `json:"module1_total" yaml:"module1_total"`
	ObservedHard  bool `json:"got_hard_module2" yaml:"got_hard_module2"`
}

// AnalysisConfig holds runtime analysis parameters resolved from flags, env and config file.
type AnalysisConfig struct {
	Threshold         float64 // Stage1 accuracy at or above which Stage2 is hard
	AdditionalCorrect int     // what-if count of extra Stage1 corrections
	Lang              string
	Workers           int // concurrent candidates in a batch run
	CalibMin          float64
	CalibMax          float64
	CalibStep         float64
}

// DefaultAnalysisConfig returns the settings used when nothing is configured.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Threshold:         0.6,
		AdditionalCorrect: 2,
		Lang:              "en",
		Workers:           4,
		CalibMin:          0.3,
		CalibMax:          0.8,
		CalibStep:         0.05,
	}
}
