package analytics

import (
	"fmt"
	"math"
	"slices"
)

const (
	minBins      = 5
	maxBins      = 15
	fallbackBins = 20
)

// Bin is one interval [Low, High) of the price histogram. The last bin also
// holds the maximum price.
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
	Label string  `json:"label"`
}

// Histogram is the binned price distribution of one result set.
type Histogram struct {
	Bins []Bin `json:"bins"`
}

// Counts returns the per-bin counts in bin order.
func (h Histogram) Counts() []int {
	counts := make([]int, len(h.Bins))
	for i, b := range h.Bins {
		counts[i] = b.Count
	}
	return counts
}

// Total returns the number of prices placed in the histogram.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// ComputeHistogram bins prices using the Freedman-Diaconis rule. The bin count
// is clamped to [5, 15] whatever the rule suggests, so wide and tiny samples
// both stay readable. An empty input yields an empty histogram.
func ComputeHistogram(prices []float64) Histogram {
	if len(prices) == 0 {
		return Histogram{}
	}

	sorted := slices.Clone(prices)
	slices.Sort(sorted)

	n := len(sorted)
	lo, hi := sorted[0], sorted[n-1]

	binCount := binCountFor(sorted)

	step := (hi - lo) / float64(binCount)
	if hi == lo {
		step = 1
	}

	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i].Low = lo + float64(i)*step
		bins[i].High = lo + float64(i+1)*step
	}
	if hi != lo {
		bins[binCount-1].High = hi
	}
	for i := range bins {
		bins[i].Label = fmt.Sprintf("$%.0f - $%.0f", bins[i].Low, bins[i].High)
	}

	for _, p := range prices {
		bucket := int(math.Floor((p - lo) / step))
		if bucket >= binCount {
			bucket = binCount - 1
		}
		if bucket < 0 {
			bucket = 0
		}
		bins[bucket].Count++
	}

	return Histogram{Bins: bins}
}

// binCountFor expects sorted, non-empty input. Quartiles are positional, not
// interpolated.
func binCountFor(sorted []float64) int {
	n := len(sorted)
	q1 := sorted[int(math.Floor(0.25*float64(n)))]
	q3 := sorted[int(math.Floor(0.75*float64(n)))]
	iqr := q3 - q1

	estimate := float64(fallbackBins)
	if iqr > 0 {
		width := 2 * iqr * math.Pow(float64(n), -1.0/3.0)
		estimate = math.Ceil((sorted[n-1] - sorted[0]) / width)
	}

	// Clamp before converting so a degenerate width cannot overflow int.
	return int(min(max(estimate, minBins), maxBins))
}
