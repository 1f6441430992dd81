package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pavelanni/whatif/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate TEXT NOT NULL,
		position INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		stage_tag TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		correct INTEGER NOT NULL DEFAULT 0,
		time_spent_ms REAL NOT NULL DEFAULT 0,
		complexity TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_responses_candidate ON responses (candidate, position);

	CREATE TABLE IF NOT EXISTS scoring_entries (
		subject TEXT NOT NULL,
		raw INTEGER NOT NULL,
		hard INTEGER NOT NULL,
		easy INTEGER NOT NULL,
		PRIMARY KEY (subject, raw)
	);

	CREATE TABLE IF NOT EXISTS threshold_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL DEFAULT '',
		stage1_correct INTEGER NOT NULL,
		stage1_total INTEGER NOT NULL,
		observed_hard INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		threshold REAL NOT NULL,
		provisional INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertResponses replaces the stored response set for a candidate, keeping record order.
func (s *Store) InsertResponses(candidate string, recs []model.ResponseRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM responses WHERE candidate = ?`, candidate); err != nil {
		return err
	}
	for i, r := range recs {
		_, err := tx.Exec(
			`INSERT INTO responses (candidate, position, question_id, subject, stage_tag, topic, correct, time_spent_ms, complexity)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			candidate, i, r.QuestionID, string(r.Subject), r.StageTag, r.Topic, r.Correct, r.TimeSpentMs, r.Complexity,
		)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("stored responses", "candidate", candidate, "count", len(recs))
	return nil
}

// ListResponses returns a candidate's responses in their original order.
func (s *Store) ListResponses(candidate string) ([]model.ResponseRecord, error) {
	rows, err := s.db.Query(
		`SELECT question_id, subject, stage_tag, topic, correct, time_spent_ms, complexity
		 FROM responses WHERE candidate = ? ORDER BY position`, candidate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []model.ResponseRecord
	for rows.Next() {
		var r model.ResponseRecord
		var subject string
		if err := rows.Scan(&r.QuestionID, &subject, &r.StageTag, &r.Topic, &r.Correct, &r.TimeSpentMs, &r.Complexity); err != nil {
			return nil, err
		}
		r.Subject = model.Subject(subject)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ListCandidates returns every candidate with stored responses, alphabetically.
func (s *Store) ListCandidates() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT candidate FROM responses ORDER BY candidate`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceScoringMaps swaps the stored scoring table. Within a subject the
// first entry for a raw score wins.
func (s *Store) ReplaceScoringMaps(maps []model.ScoringMap) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scoring_entries`); err != nil {
		return err
	}
	for _, m := range maps {
		for _, e := range m.Entries {
			_, err := tx.Exec(
				`INSERT OR IGNORE INTO scoring_entries (subject, raw, hard, easy) VALUES (?, ?, ?, ?)`,
				string(m.Subject), e.Raw, e.Hard, e.Easy,
			)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// ScoringMaps returns the stored scoring table grouped by subject, raw scores ascending.
func (s *Store) ScoringMaps() ([]model.ScoringMap, error) {
	rows, err := s.db.Query(`SELECT subject, raw, hard, easy FROM scoring_entries ORDER BY subject, raw`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var maps []model.ScoringMap
	for rows.Next() {
		var subject string
		var e model.ScoringEntry
		if err := rows.Scan(&subject, &e.Raw, &e.Hard, &e.Easy); err != nil {
			return nil, err
		}
		if n := len(maps); n == 0 || string(maps[n-1].Subject) != subject {
			maps = append(maps, model.ScoringMap{Subject: model.Subject(subject)})
		}
		last := &maps[len(maps)-1]
		last.Entries = append(last.Entries, e)
	}
	return maps, rows.Err()
}

// InsertThresholdSamples appends historical routing outcomes.
func (s *Store) InsertThresholdSamples(source string, samples []model.ThresholdSample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, smp := range samples {
		_, err := tx.Exec(
			`INSERT INTO threshold_samples (source, stage1_correct, stage1_total, observed_hard) VALUES (?, ?, ?, ?)`,
			source, smp.Stage1Correct, smp.Stage1Total, smp.ObservedHard,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListThresholdSamples returns every stored routing outcome in insertion order.
func (s *Store) ListThresholdSamples() ([]model.ThresholdSample, error) {
	rows, err := s.db.Query(`SELECT stage1_correct, stage1_total, observed_hard FROM threshold_samples ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ThresholdSample
	for rows.Next() {
		var smp model.ThresholdSample
		if err := rows.Scan(&smp.Stage1Correct, &smp.Stage1Total, &smp.ObservedHard); err != nil {
			return nil, err
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

// GetImportedFileHash returns the hash recorded for path, or "" if never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the content hash of an imported file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash, imported_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, imported_at = excluded.imported_at`,
		path, hash,
	)
	return err
}
