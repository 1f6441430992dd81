// Package prompts renders study-advice prompts from analysis reports.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/whatif/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var notesTagRegex = regexp.MustCompile(`(?i)</?\s*(candidate-notes|system-instructions)\b[^>]*>`)

// MaxNarrativeRunes bounds the narrative text passed to the model.
const MaxNarrativeRunes = 4000

// Style selects an advice prompt variant.
type Style string

const (
	// StyleBrief asks for a few bullet points.
	StyleBrief Style = "brief"
	// StyleDetailed asks for a topic-by-topic plan.
	StyleDetailed Style = "detailed"
)

var validStyles = map[Style]bool{
	StyleBrief:    true,
	StyleDetailed: true,
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Style]*template.Template
)

// IsValidStyle checks if an advice style name is valid.
func IsValidStyle(s string) bool {
	return validStyles[Style(s)]
}

// SubjectData is one subject's line items in the prompt.
type SubjectData struct {
	Name          string
	Stage1Correct int
	Stage1Total   int
	Stage2Correct int
	Stage2Total   int
	Difficulty    model.Tier
	Scaled        int
	Additional    int
	Projected     int
	Gain          int
	NewDifficulty model.Tier
	WeakTopics    []string
	HighImpact    []string
}

// AdviceData holds template data for advice prompts.
type AdviceData struct {
	Candidate   string
	Provisional bool
	Subjects    []SubjectData
	Narrative   string
}

func load() error {
	loadOnce.Do(func() {
		templates = make(map[Style]*template.Template)
		funcs := template.FuncMap{"join": strings.Join}
		for s := range validStyles {
			file := "templates/advice_" + string(s) + ".txt"
			content, err := templateFS.ReadFile(file)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", file, err)
				return
			}
			tmpl, err := template.New(string(s)).Funcs(funcs).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", file, err)
				return
			}
			templates[s] = tmpl
		}
	})
	return loadErr
}

// NewAdviceData flattens a candidate report into template data. Subjects
// without first-stage responses are left out.
func NewAdviceData(report model.CandidateReport, narrative []string) AdviceData {
	data := AdviceData{
		Candidate: report.Candidate,
		Narrative: sanitizeNarrative(strings.Join(narrative, "\n")),
	}
	for _, s := range report.Summaries {
		if !s.Scored() {
			continue
		}
		if s.Provisional {
			data.Provisional = true
		}
		sd := SubjectData{
			Name:          string(s.Subject),
			Stage1Correct: s.Stage1.Correct,
			Stage1Total:   s.Stage1.Total,
			Stage2Correct: s.Stage2.Correct,
			Stage2Total:   s.Stage2.Total,
			Difficulty:    s.Stage2.Difficulty,
			Scaled:        s.ScaledScore,
		}
		for topic := range s.WeakTopics {
			sd.WeakTopics = append(sd.WeakTopics, topic)
		}
		sort.Strings(sd.WeakTopics)
		if w, ok := report.WhatIf(s.Subject); ok {
			sd.Additional = w.AdditionalCorrect
			sd.Projected = w.NewScore
			sd.Gain = w.ScoreGain
			sd.NewDifficulty = w.NewDifficulty
			for _, q := range w.HighImpactQuestions {
				label := q.QuestionID
				if q.Topic != "" {
					label += " (" + q.Topic + ")"
				}
				sd.HighImpact = append(sd.HighImpact, label)
			}
		}
		data.Subjects = append(data.Subjects, sd)
	}
	return data
}

// Build renders the advice prompt for style.
func Build(style Style, data AdviceData) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[style]
	if !ok {
		return "", errors.New("invalid advice style: " + string(style))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeNarrative(text string) string {
	text = notesTagRegex.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > MaxNarrativeRunes {
		runes := []rune(text)
		text = string(runes[:MaxNarrativeRunes]) + "\n\n[Notes truncated due to length]"
	}
	return text
}
