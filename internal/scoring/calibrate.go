package scoring

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/pavelanni/whatif/internal/model"
)

// DefaultThreshold is returned when calibration has nothing better.
const DefaultThreshold = 0.5

// MaxCandidates bounds the size of a threshold grid.
const MaxCandidates = 1000

var (
	// ErrEmptyGrid is returned for a grid with no candidates.
	ErrEmptyGrid = errors.New("empty threshold grid: need min < max and step > 0")
	// ErrGridTooLarge is returned for a grid above MaxCandidates.
	ErrGridTooLarge = fmt.Errorf("threshold grid exceeds %d candidates", MaxCandidates)
)

// DefaultCandidates is the 0.30..0.75 grid in steps of 0.05.
func DefaultCandidates() []float64 {
	out, _ := CandidateRange(0.30, 0.80, 0.05)
	return out
}

// CandidateRange returns lo, lo+step, ... strictly below hi, with lo and hi
// clamped to [0, 1]. Values are computed from integer step counts and
// rounded to avoid float drift.
func CandidateRange(lo, hi, step float64) ([]float64, error) {
	for _, v := range []float64{lo, hi, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrEmptyGrid
		}
	}
	lo = min(max(lo, 0), 1)
	hi = min(max(hi, 0), 1)
	if step <= 0 || hi <= lo {
		return nil, ErrEmptyGrid
	}
	count := math.Ceil((hi-lo)/step - 1e-9)
	if count > MaxCandidates {
		return nil, fmt.Errorf("%w: %.0f requested", ErrGridTooLarge, count)
	}
	n := int(count)
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, math.Round((lo+float64(i)*step)*1e6)/1e6)
	}
	return out, nil
}

// PredictionAccuracy is the share of samples whose observed tier the
// threshold predicts. Samples with a zero Stage1 total are skipped and not
// counted in valid.
func PredictionAccuracy(samples []model.ThresholdSample, threshold float64) (accuracy float64, valid int) {
	correct := 0
	for _, s := range samples {
		if s.Stage1Total == 0 {
			continue
		}
		valid++
		if reachesThreshold(s.Stage1Correct, s.Stage1Total, threshold) == s.ObservedHard {
			correct++
		}
	}
	if valid == 0 {
		return 0, 0
	}
	return float64(correct) / float64(valid), valid
}

// Calibrate scans candidates in ascending order and keeps the first threshold
// with strictly greater accuracy, so ties go to the lowest. With no valid
// samples, or no candidate above zero accuracy, it returns DefaultThreshold.
func Calibrate(samples []model.ThresholdSample, candidates []float64) model.Calibration {
	_, valid := PredictionAccuracy(samples, DefaultThreshold)
	best := model.Calibration{Threshold: DefaultThreshold, Valid: valid}
	if valid == 0 {
		slog.Warn("no valid threshold samples, using default threshold", "threshold", DefaultThreshold)
		return best
	}

	scan := slices.Clone(candidates)
	slices.Sort(scan)
	for _, th := range scan {
		acc, _ := PredictionAccuracy(samples, th)
		slog.Debug("threshold candidate", "threshold", th, "accuracy", acc)
		if acc > best.Accuracy {
			best.Threshold = th
			best.Accuracy = acc
		}
	}
	return best
}
