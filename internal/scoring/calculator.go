package scoring

import "github.com/pavelanni/whatif/internal/model"

// Calculator turns raw scores into scaled scores. The aggregator and the
// simulator both score through it so their results agree.
type Calculator struct {
	repo *Repository
}

// NewCalculator returns a Calculator over repo.
func NewCalculator(repo *Repository) *Calculator {
	return &Calculator{repo: repo}
}

// Score returns the scaled score for a raw score at the given tier.
func (c *Calculator) Score(subject model.Subject, raw int, tier model.Tier) int {
	scaled, _ := c.repo.Lookup(subject, raw, tier)
	return scaled
}

// Provisional reports whether scores come from placeholder maps.
func (c *Calculator) Provisional() bool {
	return c.repo.Placeholder()
}
