// Package scoring implements adaptive-tier classification, raw-to-scaled score
// lookup, per-subject aggregation, what-if projection and threshold calibration.
package scoring

import (
	"log/slog"

	"github.com/pavelanni/whatif/internal/model"
)

const (
	// DefaultScaledScore is returned for any subject or raw score the scoring map does not cover.
	DefaultScaledScore = 200

	// MinScaledScore and MaxScaledScore bound every scaled score.
	MinScaledScore = 200
	MaxScaledScore = 800
)

// Repository is a read-only, exact-match scoring table keyed by subject and raw score.
type Repository struct {
	maps        map[model.Subject]map[int]model.ScoringEntry
	placeholder bool
}

// NewRepository builds a repository from the supplied maps. With no maps it
// falls back to PlaceholderMaps and reports itself as placeholder.
func NewRepository(maps []model.ScoringMap) *Repository {
	r := &Repository{maps: make(map[model.Subject]map[int]model.ScoringEntry)}
	if len(maps) == 0 {
		slog.Warn("no scoring maps provided, using placeholder scoring")
		maps = PlaceholderMaps()
		r.placeholder = true
	}
	for _, m := range maps {
		entries, ok := r.maps[m.Subject]
		if !ok {
			entries = make(map[int]model.ScoringEntry, len(m.Entries))
			r.maps[m.Subject] = entries
		}
		for _, e := range m.Entries {
			if _, dup := entries[e.Raw]; dup {
				slog.Warn("duplicate raw score in scoring map, keeping first", "subject", m.Subject, "raw", e.Raw)
				continue
			}
			// Placeholder maps run past 800 at the top raw scores; only supplied maps are checked.
			if !r.placeholder && (!inScaledRange(e.Hard) || !inScaledRange(e.Easy)) {
				slog.Warn("scaled score outside 200-800", "subject", m.Subject, "raw", e.Raw, "hard", e.Hard, "easy", e.Easy)
			}
			entries[e.Raw] = e
		}
	}
	return r
}

// PlaceholderMaps returns deterministic linear maps for both subjects.
func PlaceholderMaps() []model.ScoringMap {
	return []model.ScoringMap{
		linearMap(model.SubjectMath, 44, 15, 10),
		linearMap(model.SubjectReadingWriting, 54, 11, 8),
	}
}

func linearMap(s model.Subject, maxRaw, hardStep, easyStep int) model.ScoringMap {
	entries := make([]model.ScoringEntry, 0, maxRaw+1)
	for raw := 0; raw <= maxRaw; raw++ {
		entries = append(entries, model.ScoringEntry{
			Raw:  raw,
			Hard: 200 + raw*hardStep,
			Easy: 200 + raw*easyStep,
		})
	}
	return model.ScoringMap{Subject: s, Entries: entries}
}

// Placeholder reports whether scores come from placeholder maps and are provisional.
func (r *Repository) Placeholder() bool {
	return r.placeholder
}

// Lookup returns the scaled score for an exact raw score at the given tier.
// Uncovered subjects and raw scores yield DefaultScaledScore and false.
func (r *Repository) Lookup(subject model.Subject, raw int, tier model.Tier) (int, bool) {
	entries, ok := r.maps[subject]
	if !ok {
		slog.Warn("no scoring map for subject, returning default score", "subject", subject)
		return DefaultScaledScore, false
	}
	e, ok := entries[raw]
	if !ok {
		slog.Warn("raw score not covered by scoring map, returning default score",
			"subject", subject, "raw_score", raw)
		return DefaultScaledScore, false
	}
	return e.Scaled(tier), true
}

func inScaledRange(v int) bool {
	return v >= MinScaledScore && v <= MaxScaledScore
}
