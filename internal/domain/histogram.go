package domain

import (
	"fmt"
	"math"
)

// integerSnap is the distance under which a power mean is treated as the
// nearest integer before taking the ceiling. It absorbs rounding from
// math.Pow, e.g. 8^(1/3) landing just above 2.
const integerSnap = 1e-9

// RegionalIndex is the discretized crisis level of the whole region.
type RegionalIndex struct {
	Value    int     `json:"value"`
	Mean     float64 `json:"mean"`
	Exponent float64 `json:"exponent"`
	Color    Color   `json:"color"`
	Note     string  `json:"note"`
}

// NewRegionalIndex builds an index with the color and note for value.
// Values outside 0..3 read as TRIVIAL.
func NewRegionalIndex(value int) RegionalIndex {
	color := ColorGreen
	if s := Scale(value); s.Valid() {
		color = s.Color()
	}
	return RegionalIndex{Value: value, Color: color, Note: regionalNote(value)}
}

// ScaleHistogram counts classified sections per scale for one batch run.
// It is not safe for concurrent use and must not be reused across runs.
type ScaleHistogram struct {
	counts    [NumScales]int
	finalized bool
}

// NewScaleHistogram returns an empty histogram in the accumulating state.
func NewScaleHistogram() *ScaleHistogram {
	return &ScaleHistogram{}
}

// Record counts one classified section, extreme or not.
func (h *ScaleHistogram) Record(c Classification) error {
	if h.finalized {
		return ErrHistogramFinalized
	}
	if !c.Scale.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidScale, c.Scale)
	}
	h.counts[c.Scale]++
	return nil
}

// Counts returns a copy of the per-scale counts.
func (h *ScaleHistogram) Counts() [NumScales]int {
	return h.counts
}

// Total returns the number of recorded sections.
func (h *ScaleHistogram) Total() int {
	total := 0
	for _, n := range h.counts {
		total += n
	}
	return total
}

// Finalized reports whether the regional index has been requested.
func (h *ScaleHistogram) Finalized() bool {
	return h.finalized
}

// OverallIndex reduces the histogram to one regional level using the
// count-weighted power mean with exponent p, then finalizes the histogram.
func (h *ScaleHistogram) OverallIndex(p float64) (RegionalIndex, error) {
	if h.finalized {
		return RegionalIndex{}, ErrHistogramFinalized
	}
	if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return RegionalIndex{}, fmt.Errorf("%w: %g", ErrInvalidExponent, p)
	}

	h.finalized = true

	mean, err := PowerMean(h.counts, p)
	if err != nil {
		return RegionalIndex{}, err
	}

	idx := NewRegionalIndex(discretize(mean))
	idx.Mean = mean
	idx.Exponent = p
	return idx, nil
}

// PowerMean computes (Σ counts[s]·s^p / Σ counts[s])^(1/p) over scales 0..3.
//
// Terms are scaled by the highest populated scale m, giving
// m·(Σ counts[s]·(s/m)^p / total)^(1/p). The inner ratio stays in
// [1/total, 1], so large exponents neither overflow nor underflow to zero.
func PowerMean(counts [NumScales]int, p float64) (float64, error) {
	total, top := 0, 0
	for s, n := range counts {
		total += n
		if n > 0 {
			top = s
		}
	}
	if total == 0 {
		return 0, ErrEmptyHistogram
	}
	if top == 0 {
		return 0, nil
	}

	m := float64(top)
	weighted := 0.0
	for s, n := range counts[:top+1] {
		if n > 0 && s > 0 {
			weighted += float64(n) * math.Pow(float64(s)/m, p)
		}
	}
	return m * math.Pow(weighted/float64(total), 1/p), nil
}

func discretize(mean float64) int {
	switch {
	case math.IsNaN(mean) || mean <= float64(ScaleTrivial):
		return int(ScaleTrivial)
	case mean >= float64(ScaleHigh):
		return int(ScaleHigh)
	}
	if r := math.Round(mean); math.Abs(mean-r) < integerSnap {
		mean = r
	}
	return int(math.Ceil(mean))
}
