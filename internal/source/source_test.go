package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/whatif/internal/model"
)

const attemptJSON = `[
  {"question_id": "q1", "subject": {"name": "Math"}, "section": "Static", "topic": {"name": "Algebra"}, "correct": true, "time_spent": 30000},
  {"_id": {"$oid": "66fe"}, "subject": {"name": "Math"}, "section": "Static", "topic": {"name": "Geometry"}, "correct": false, "time_spent": 70000, "compleixty": "Hard"},
  {"question_id": 17, "subject": "Reading and Writing", "section": "Adaptive", "topic": null, "correct": true, "time_spent": 5000, "complexity": "Easy"},
  {"subject": {"name": "Math"}, "section": "Hard", "correct": false},
  {"question_id": "q1", "subject": {"name": "Math"}, "section": "Static", "correct": true, "time_spent": 1000}
]`

func TestCanonicalize(t *testing.T) {
	raws, err := DecodeRecords([]byte(attemptJSON))
	require.NoError(t, err)

	recs := Canonicalize("cand.json", raws)
	require.Len(t, recs, 5)

	assert.Equal(t, "q1", recs[0].QuestionID)
	assert.Equal(t, model.SubjectMath, recs[0].Subject)
	assert.Equal(t, model.Stage1, recs[0].Stage())
	assert.Equal(t, "Algebra", recs[0].Topic)

	assert.Equal(t, "66fe", recs[1].QuestionID, "falls back to _id")
	assert.Equal(t, "Hard", recs[1].Complexity, "misspelled field is read")
	assert.InDelta(t, 70.0, recs[1].TimeSpentSeconds(), 1e-9)

	assert.Equal(t, "17", recs[2].QuestionID)
	assert.Equal(t, model.SubjectReadingWriting, recs[2].Subject)
	assert.Equal(t, model.Stage2, recs[2].Stage())
	assert.False(t, recs[2].HasTopic())
	assert.Equal(t, "Easy", recs[2].ComplexityLabel())

	assert.Equal(t, "cand.json#3", recs[3].QuestionID, "record-local identifier")
	assert.Equal(t, model.UnknownComplexity, recs[3].ComplexityLabel())

	assert.Equal(t, "q1", recs[4].QuestionID, "duplicates are tolerated")
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(attemptJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0o644))

	src := FileSource{Dir: dir}
	ctx := context.Background()

	recs, err := src.Responses(ctx, "a.json")
	require.NoError(t, err)
	assert.Len(t, recs, 5)

	_, err = src.Responses(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = src.Responses(ctx, "empty.json")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = src.Responses(ctx, "bad.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

type fakeLister struct {
	recs map[string][]model.ResponseRecord
	err  error
}

func (f fakeLister) ListResponses(candidate string) ([]model.ResponseRecord, error) {
	return f.recs[candidate], f.err
}

func TestFallbackSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(attemptJSON), 0o644))
	stored := []model.ResponseRecord{{QuestionID: "s1", Subject: model.SubjectMath, StageTag: model.StageTagStatic}}
	ctx := context.Background()

	t.Run("store hit", func(t *testing.T) {
		src, err := Resolve(KindAuto, fakeLister{recs: map[string][]model.ResponseRecord{"a.json": stored}}, dir)
		require.NoError(t, err)
		recs, err := src.Responses(ctx, "a.json")
		require.NoError(t, err)
		assert.Equal(t, stored, recs)
	})

	t.Run("store empty falls back to file", func(t *testing.T) {
		src, err := Resolve(KindAuto, fakeLister{}, dir)
		require.NoError(t, err)
		recs, err := src.Responses(ctx, "a.json")
		require.NoError(t, err)
		assert.Len(t, recs, 5)
	})

	t.Run("store error falls back to file", func(t *testing.T) {
		src, err := Resolve(KindAuto, fakeLister{err: errors.New("db locked")}, dir)
		require.NoError(t, err)
		recs, err := src.Responses(ctx, "a.json")
		require.NoError(t, err)
		assert.Len(t, recs, 5)
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		src, err := Resolve(KindAuto, fakeLister{}, dir)
		require.NoError(t, err)
		_, err = src.Responses(ctx, "nobody.json")
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestResolve(t *testing.T) {
	src, err := Resolve(KindAuto, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "file", src.Name())

	src, err = Resolve(KindAuto, fakeLister{}, "")
	require.NoError(t, err)
	assert.Equal(t, "store+file", src.Name())

	_, err = Resolve(KindStore, nil, "")
	assert.Error(t, err)

	_, err = Resolve("mongo", nil, "")
	assert.Error(t, err)
}

func TestLoadScoringMaps(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "scoring.json")
	yamlPath := filepath.Join(dir, "scoring.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
	  {"key": "Math", "map": [{"raw": 0, "hard": 200, "easy": 200}, {"raw": 1, "hard": 220, "easy": 210}]}
	]`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- key: ReadingWriting
  map:
    - {raw: 0, hard: 200, easy: 200}
    - {raw: 1, hard: 215, easy: 208}
`), 0o644))

	maps, err := LoadScoringMaps(jsonPath)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, model.SubjectMath, maps[0].Subject)
	assert.Equal(t, model.ScoringEntry{Raw: 1, Hard: 220, Easy: 210}, maps[0].Entries[1])

	maps, err = LoadScoringMaps(yamlPath)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, model.SubjectReadingWriting, maps[0].Subject)
	assert.Equal(t, 215, maps[0].Entries[1].Hard)

	_, err = LoadScoringMaps(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadThresholdSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"module1_correct": 20, "module1_total": 22, "got_hard_module2": true},
	  {"module1_correct": 25, "module1_total": 27, "got_hard_module2": true}
	]`), 0o644))

	samples, err := LoadThresholdSamples(path)
	require.NoError(t, err)
	assert.Equal(t, []model.ThresholdSample{
		{Stage1Correct: 20, Stage1Total: 22, ObservedHard: true},
		{Stage1Correct: 25, Stage1Total: 27, ObservedHard: true},
	}, samples)
}
