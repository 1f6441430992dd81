package i18n

import (
	"context"
	"testing"

	"github.com/pavelanni/whatif/internal/model"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLanguage(context.Background(), lang)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "ScaledScore"); got != "Scaled Score" {
		t.Errorf("T(ScaledScore) = %q, want 'Scaled Score'", got)
	}
	if got := Subject(ctx, model.SubjectReadingWriting); got != "Reading and Writing" {
		t.Errorf("Subject(ReadingWriting) = %q", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "ScaledScore"); got != "Шкальный балл" {
		t.Errorf("T(ScaledScore) = %q, want 'Шкальный балл'", got)
	}
	if got := Subject(ctx, model.SubjectMath); got != "Математика" {
		t.Errorf("Subject(Math) = %q, want 'Математика'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "WhatIfTitle", 1)
	if got1 != "What-If Analysis (Correct 1 Additional Module 1 Question)" {
		t.Errorf("Tp(WhatIfTitle, 1) = %q", got1)
	}
	got2 := Tp(ctx, "WhatIfTitle", 2)
	if got2 != "What-If Analysis (Correct 2 Additional Module 1 Questions)" {
		t.Errorf("Tp(WhatIfTitle, 2) = %q", got2)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "Candidate", map[string]any{"Name": "a.json"})
	if got != "Candidate: a.json" {
		t.Errorf("Td(Candidate) = %q, want 'Candidate: a.json'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestNumberFormatting(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Percent(ctx, 33.3333); got != "33.33%" {
		t.Errorf("Percent = %q, want '33.33%%'", got)
	}
	if got := Seconds(ctx, 61.5); got != "61.50s" {
		t.Errorf("Seconds = %q, want '61.50s'", got)
	}
}
