package store

import (
	"path/filepath"
	"testing"

	"github.com/pavelanni/whatif/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testResponses() []model.ResponseRecord {
	return []model.ResponseRecord{
		{QuestionID: "q2", Subject: model.SubjectMath, StageTag: "Static", Topic: "Algebra", Correct: true, TimeSpentMs: 1500},
		{QuestionID: "q1", Subject: model.SubjectMath, StageTag: "Hard", Topic: "", Correct: false, TimeSpentMs: 61000, Complexity: "Hard"},
		{QuestionID: "q3", Subject: model.SubjectReadingWriting, StageTag: "Static", Topic: "Grammar", Correct: true},
	}
}

func TestResponsesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	// Unknown candidate yields nothing.
	recs, err := s.ListResponses("nobody")
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no responses, got %d", len(recs))
	}

	want := testResponses()
	if err := s.InsertResponses("a.json", want); err != nil {
		t.Fatalf("InsertResponses: %v", err)
	}
	recs, err = s.ListResponses("a.json")
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d responses, got %d", len(want), len(recs))
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, recs[i], want[i])
		}
	}

	// Re-importing replaces the set rather than appending.
	if err := s.InsertResponses("a.json", want[:1]); err != nil {
		t.Fatalf("InsertResponses replace: %v", err)
	}
	recs, _ = s.ListResponses("a.json")
	if len(recs) != 1 {
		t.Errorf("expected 1 response after replace, got %d", len(recs))
	}
}

func TestResponsesKeepDuplicateIDs(t *testing.T) {
	s := newTestStore(t)

	dup := testResponses()[:1]
	second := dup[0]
	second.Correct = false
	dup = append(dup, second)
	if err := s.InsertResponses("a.json", dup); err != nil {
		t.Fatalf("InsertResponses: %v", err)
	}
	recs, err := s.ListResponses("a.json")
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected both duplicate records, got %d", len(recs))
	}
	if !recs[0].Correct || recs[1].Correct {
		t.Errorf("duplicates out of order: %+v", recs)
	}
}

func TestNewUnreachablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "whatif.db")
	s, err := New(path)
	if err == nil {
		s.Close()
		t.Fatal("expected error for a database in a missing directory")
	}
}

func TestListCandidates(t *testing.T) {
	s := newTestStore(t)
	for _, c := range []string{"b.json", "a.json", "b.json"} {
		if err := s.InsertResponses(c, testResponses()); err != nil {
			t.Fatalf("InsertResponses(%s): %v", c, err)
		}
	}
	got, err := s.ListCandidates()
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 2 || got[0] != "a.json" || got[1] != "b.json" {
		t.Errorf("expected [a.json b.json], got %v", got)
	}
}

func TestScoringMaps(t *testing.T) {
	s := newTestStore(t)

	maps, err := s.ScoringMaps()
	if err != nil {
		t.Fatalf("ScoringMaps: %v", err)
	}
	if len(maps) != 0 {
		t.Fatalf("expected no maps, got %d", len(maps))
	}

	in := []model.ScoringMap{
		{Subject: model.SubjectReadingWriting, Entries: []model.ScoringEntry{{Raw: 1, Hard: 211, Easy: 208}, {Raw: 0, Hard: 200, Easy: 200}}},
		{Subject: model.SubjectMath, Entries: []model.ScoringEntry{{Raw: 0, Hard: 200, Easy: 200}, {Raw: 0, Hard: 999, Easy: 999}}},
	}
	if err := s.ReplaceScoringMaps(in); err != nil {
		t.Fatalf("ReplaceScoringMaps: %v", err)
	}
	maps, err = s.ScoringMaps()
	if err != nil {
		t.Fatalf("ScoringMaps: %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("expected 2 maps, got %d", len(maps))
	}
	if maps[0].Subject != model.SubjectMath || len(maps[0].Entries) != 1 || maps[0].Entries[0].Hard != 200 {
		t.Errorf("math map: first entry should win, got %+v", maps[0])
	}
	rw := maps[1]
	if rw.Subject != model.SubjectReadingWriting || len(rw.Entries) != 2 || rw.Entries[0].Raw != 0 {
		t.Errorf("reading map: expected raw ascending, got %+v", rw)
	}

	// Replace drops old subjects.
	if err := s.ReplaceScoringMaps(in[:1]); err != nil {
		t.Fatalf("ReplaceScoringMaps: %v", err)
	}
	maps, _ = s.ScoringMaps()
	if len(maps) != 1 {
		t.Errorf("expected 1 map after replace, got %d", len(maps))
	}
}

func TestThresholdSamples(t *testing.T) {
	s := newTestStore(t)
	in := []model.ThresholdSample{
		{Stage1Correct: 20, Stage1Total: 22, ObservedHard: true},
		{Stage1Correct: 3, Stage1Total: 27, ObservedHard: false},
	}
	if err := s.InsertThresholdSamples("history.json", in); err != nil {
		t.Fatalf("InsertThresholdSamples: %v", err)
	}
	got, err := s.ListThresholdSamples()
	if err != nil {
		t.Fatalf("ListThresholdSamples: %v", err)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Errorf("expected %+v, got %+v", in, got)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	// Missing file returns empty string.
	hash, err := s.GetImportedFileHash("/some/path.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/path.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	hash, err = s.GetImportedFileHash("/some/path.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("expected 'abc123', got %q", hash)
	}

	// Update existing.
	if err := s.SetImportedFileHash("/some/path.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/path.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestRuns(t *testing.T) {
	s := newTestStore(t)

	run, err := s.GetRun("missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run, got %+v", run)
	}

	saved := &model.AnalysisRun{
		Threshold:   0.6,
		Provisional: true,
		Reports: []model.CandidateReport{{
			Candidate: "a.json",
			Summaries: []model.PerformanceSummary{{Subject: model.SubjectMath, RawScore: 20, ScaledScore: 500}},
		}},
		Failures: []model.CandidateFailure{{Candidate: "b.json", Error: "no response data"}},
	}
	if err := s.SaveRun(saved); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected SaveRun to assign an ID")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("expected SaveRun to assign a timestamp")
	}

	got, err := s.GetRun(saved.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil || len(got.Reports) != 1 || got.Reports[0].Summaries[0].ScaledScore != 500 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0].Candidate != "b.json" {
		t.Errorf("expected failure for b.json, got %+v", got.Failures)
	}

	if err := s.SaveRun(&model.AnalysisRun{Threshold: 0.5}); err != nil {
		t.Fatalf("SaveRun second: %v", err)
	}
	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestCalibratedThreshold(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.CalibratedThreshold()
	if err != nil {
		t.Fatalf("CalibratedThreshold: %v", err)
	}
	if ok {
		t.Fatal("expected no calibrated threshold")
	}

	if err := s.SetCalibratedThreshold(0.55); err != nil {
		t.Fatalf("SetCalibratedThreshold: %v", err)
	}
	got, ok, err := s.CalibratedThreshold()
	if err != nil || !ok {
		t.Fatalf("CalibratedThreshold: ok=%v err=%v", ok, err)
	}
	if got != 0.55 {
		t.Errorf("expected 0.55, got %v", got)
	}
}
