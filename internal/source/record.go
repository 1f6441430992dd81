package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pavelanni/whatif/internal/model"
)

// RawRecord is one response as exported by the attempt store. Subject and
// topic may be plain strings or {"name": ...} objects; identifiers may be
// strings, numbers or {"$oid": ...}.
type RawRecord struct {
	QuestionID looseID   `json:"question_id"`
	ID         looseID   `json:"_id"`
	Subject    nameField `json:"subject"`
	Section    string    `json:"section"`
	Topic      nameField `json:"topic"`
	Correct    bool      `json:"correct"`
	TimeSpent  float64   `json:"time_spent"`
	Complexity string    `json:"complexity"`
	// Misspelled in some exports; preferred over Complexity when present.
	Compleixty string `json:"compleixty"`
}

type nameField string

func (n *nameField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = nameField(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("name field: %w", err)
	}
	*n = nameField(obj.Name)
	return nil
}

type looseID string

func (id *looseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = looseID(s)
	case b[0] == '{':
		var oid struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(b, &oid); err != nil {
			return fmt.Errorf("object id: %w", err)
		}
		*id = looseID(oid.OID)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("identifier: %w", err)
		}
		*id = looseID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// DecodeRecords parses a JSON array of raw records.
func DecodeRecords(data []byte) ([]RawRecord, error) {
	var raws []RawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode response records: %w", err)
	}
	return raws, nil
}

// Canonicalize converts raw records into response records, resolving each
// identifier once: question_id, then _id, then "<candidate>#<index>".
// Duplicate identifiers are kept and logged.
func Canonicalize(candidate string, raws []RawRecord) []model.ResponseRecord {
	out := make([]model.ResponseRecord, 0, len(raws))
	seen := make(map[string]int, len(raws))
	dups := 0
	for i, raw := range raws {
		id := string(raw.QuestionID)
		if id == "" {
			id = string(raw.ID)
		}
		if id == "" {
			id = candidate + "#" + strconv.Itoa(i)
		}
		if seen[id] > 0 {
			dups++
		}
		seen[id]++

		subject, ok := model.ParseSubject(string(raw.Subject))
		if !ok {
			subject = model.Subject(raw.Subject)
		}
		complexity := raw.Compleixty
		if complexity == "" {
			complexity = raw.Complexity
		}

		out = append(out, model.ResponseRecord{
			QuestionID:  id,
			Subject:     subject,
			StageTag:    raw.Section,
			Topic:       string(raw.Topic),
			Correct:     raw.Correct,
			TimeSpentMs: raw.TimeSpent,
			Complexity:  complexity,
		})
	}
	if dups > 0 {
		slog.Warn("duplicate question IDs detected", "candidate", candidate, "duplicates", dups)
	}
	return out
}
