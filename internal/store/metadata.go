package store

import (
	"database/sql"
	"strconv"
)

const calibratedThresholdKey = "calibrated_threshold"

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetCalibratedThreshold remembers the most recent calibration result.
func (s *Store) SetCalibratedThreshold(threshold float64) error {
	return s.SetMetadata(calibratedThresholdKey, strconv.FormatFloat(threshold, 'f', -1, 64))
}

// CalibratedThreshold returns the remembered calibration result; ok is false
// when none has been stored.
func (s *Store) CalibratedThreshold() (threshold float64, ok bool, err error) {
	v, err := s.GetMetadata(calibratedThresholdKey)
	if err != nil || v == "" {
		return 0, false, err
	}
	threshold, err = strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, err
	}
	return threshold, true, nil
}
