package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/whatif/internal/model"
)

// SaveRun stores an analysis run, assigning an ID and timestamp when missing.
func (s *Store) SaveRun(run *model.AnalysisRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", run.ID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO analysis_runs (id, created_at, threshold, provisional, payload) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET threshold = excluded.threshold, provisional = excluded.provisional, payload = excluded.payload`,
		run.ID, run.CreatedAt, run.Threshold, run.Provisional, string(payload),
	)
	return err
}

// GetRun returns a saved run, or nil if there is none with that ID.
func (s *Store) GetRun(id string) (*model.AnalysisRun, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM analysis_runs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run model.AnalysisRun
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns all saved runs, newest first.
func (s *Store) ListRuns() ([]model.AnalysisRun, error) {
	rows, err := s.db.Query(`SELECT id, payload FROM analysis_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.AnalysisRun
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		var run model.AnalysisRun
		if err := json.Unmarshal([]byte(payload), &run); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
