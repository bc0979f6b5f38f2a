package calibration

import (
	"sort"

	"github.com/teslashibe/go-visioncursor/pkg/gaze"
)

// DefaultMinSamples is the fewest samples a target needs to be averaged.
const DefaultMinSamples = 10

// Aggregator reduces the samples of one target to a robust gaze estimate.
type Aggregator struct {
	MinSamples int
}

// NewAggregator creates an aggregator with the given minimum sample count.
// Values below 1 use DefaultMinSamples.
func NewAggregator(minSamples int) Aggregator {
	if minSamples < 1 {
		minSamples = DefaultMinSamples
	}
	return Aggregator{MinSamples: minSamples}
}

// Aggregate returns the trimmed mean gaze of the samples.
//
// X and Y are trimmed independently, so the values kept on each axis may come
// from different samples. Fewer than MinSamples yields an
// *InsufficientSamplesError.
func (a Aggregator) Aggregate(samples []gaze.Vector, trim float64) (x, y float64, err error) {
	need := a.MinSamples
	if need < 1 {
		need = DefaultMinSamples
	}
	if len(samples) < need {
		return 0, 0, &InsufficientSamplesError{Target: -1, Have: len(samples), Need: need}
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.X
		ys[i] = s.Y
	}

	return TrimmedMean(xs, trim), TrimmedMean(ys, trim), nil
}

// TrimmedMean sorts a copy of values, drops floor(trim*n) values from each
// end and averages the rest. A trim outside (0, 0.5), or one that would leave
// nothing, degenerates to the plain mean. Returns 0 for an empty slice.
func TrimmedMean(values []float64, trim float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	cut := 0
	if trim > 0 && trim < 0.5 {
		cut = int(trim * float64(n))
	}
	if 2*cut >= n {
		cut = 0
	}

	kept := sorted[cut : n-cut]
	sum := 0.0
	for _, v := range kept {
		sum += v
	}
	return sum / float64(len(kept))
}
