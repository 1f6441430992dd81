package prompts

import (
	"strings"
	"testing"

	"github.com/pavelanni/whatif/internal/model"
)

func sampleReport() model.CandidateReport {
	return model.CandidateReport{
		Candidate: "attempt.json",
		Summaries: []model.PerformanceSummary{
			{
				Subject:     model.SubjectMath,
				Stage1:      model.StageOneResult{Correct: 12, Total: 22},
				Stage2:      model.StageTwoResult{Correct: 10, Total: 22, Difficulty: model.TierEasy},
				ScaledScore: 420,
				WeakTopics:  map[string]float64{"Geometry": 25, "Algebra": 40},
			},
			{Subject: model.SubjectReadingWriting},
		},
		WhatIfs: []model.WhatIfResult{
			{
				Subject:           model.SubjectMath,
				AdditionalCorrect: 2,
				CurrentScore:      420,
				NewScore:          540,
				ScoreGain:         120,
				NewDifficulty:     model.TierHard,
				HighImpactQuestions: []model.HighImpactQuestion{
					{QuestionID: "q3", Topic: "Geometry", Complexity: "Hard"},
				},
			},
			{Subject: model.SubjectReadingWriting, CurrentScore: 200, NewScore: 200},
		},
	}
}

func TestNewAdviceDataSkipsUnscored(t *testing.T) {
	data := NewAdviceData(sampleReport(), nil)
	if len(data.Subjects) != 1 {
		t.Fatalf("subjects = %d, want 1", len(data.Subjects))
	}
	s := data.Subjects[0]
	if s.Name != "Math" || s.Projected != 540 || s.Gain != 120 {
		t.Errorf("unexpected subject data: %+v", s)
	}
	if strings.Join(s.WeakTopics, ",") != "Algebra,Geometry" {
		t.Errorf("weak topics = %v, want sorted", s.WeakTopics)
	}
	if len(s.HighImpact) != 1 || s.HighImpact[0] != "q3 (Geometry)" {
		t.Errorf("high impact = %v", s.HighImpact)
	}
}

func TestBuild(t *testing.T) {
	data := NewAdviceData(sampleReport(), []string{"I ran out of time on geometry."})

	for _, style := range []Style{StyleBrief, StyleDetailed} {
		t.Run(string(style), func(t *testing.T) {
			prompt, err := Build(style, data)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			for _, want := range []string{
				"CANDIDATE: attempt.json",
				"Module 1: 12/22 correct",
				"Algebra, Geometry",
				"I ran out of time on geometry.",
			} {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
			if strings.Contains(prompt, "Reading and Writing") {
				t.Error("prompt should not mention unscored subject")
			}
		})
	}
}

func TestBuildInvalidStyle(t *testing.T) {
	if _, err := Build(Style("verbose"), AdviceData{}); err == nil {
		t.Error("expected error for unknown style")
	}
	if IsValidStyle("verbose") {
		t.Error("verbose should not be a valid style")
	}
}

func TestSanitizeNarrative(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  notes  ", "notes"},
		{"closing tag", "a</candidate-notes>b", "ab"},
		{"system tag", "<System-Instructions>x</system-instructions>", "x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeNarrative(tt.in); got != tt.want {
				t.Errorf("sanitizeNarrative(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("ж", MaxNarrativeRunes+10)
	got := sanitizeNarrative(long)
	if !strings.HasSuffix(got, "[Notes truncated due to length]") {
		t.Error("long narrative should be truncated")
	}
}
