package ebay

import (
	"math"
	"slices"

	"github.com/raine/market-dashboard/internal/analytics"
	"github.com/raine/market-dashboard/internal/listing"
)

const (
	// minOutlierSample is the smallest sample TrimOutliers will touch.
	minOutlierSample = 15
	// minRangeSample is the smallest sample a price range is derived from.
	minRangeSample = 5
	// minSegmentSize is the smallest cluster considered a candidate range.
	minSegmentSize = 5
	// minCoverage is the share of prices the chosen cluster must hold before
	// its own bounds are used instead of the 20th-80th percentile.
	minCoverage = 0.65
	minPad      = 3.0
)

// PositivePrices returns the parsed prices above zero, in record order.
func PositivePrices(records []listing.Record) []float64 {
	prices := make([]float64, 0, len(records))
	for _, r := range records {
		if p, ok := r.Price.Amount(); ok && p > 0 {
			prices = append(prices, p)
		}
	}
	return prices
}

// TrimOutliers drops records priced outside [Q1 - IQR, Q3 + 1.5*IQR]. Samples
// with fewer than 15 positive prices are returned as is. Records without a
// numeric price are dropped once trimming applies.
func TrimOutliers(records []listing.Record) []listing.Record {
	prices := PositivePrices(records)
	if len(prices) < minOutlierSample {
		return records
	}
	slices.Sort(prices)

	q1 := inclusiveQuartile(prices, 1)
	q3 := inclusiveQuartile(prices, 3)
	iqr := q3 - q1
	lower := q1 - 1.0*iqr
	upper := q3 + 1.5*iqr

	kept := make([]listing.Record, 0, len(records))
	for _, r := range records {
		p, ok := r.Price.Amount()
		if ok && p >= lower && p <= upper {
			kept = append(kept, r)
		}
	}
	return kept
}

// inclusiveQuartile interpolates the i-th quartile of sorted, treating the
// data as the full population (the minimum is the 0th quartile and the
// maximum the 4th).
func inclusiveQuartile(sorted []float64, i int) float64 {
	m := len(sorted) - 1
	j := i * m / 4
	delta := i*m - j*4
	if j+1 >= len(sorted) {
		return sorted[j]
	}
	return (sorted[j]*float64(4-delta) + sorted[j+1]*float64(delta)) / 4
}

// segment is an inclusive index span into a sorted price slice.
type segment struct {
	start, end int
}

func (s segment) size() int { return s.end - s.start + 1 }

// findSegments splits sorted prices into clusters wherever the gap between
// neighbours, on a log scale, exceeds alpha times the median gap.
func findSegments(sorted []float64, alpha float64) []segment {
	n := len(sorted)
	if n < minRangeSample {
		return []segment{{0, n - 1}}
	}

	gaps := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		gaps[i] = math.Log(sorted[i+1]) - math.Log(sorted[i])
	}
	threshold := analytics.Median(gaps) * alpha

	edges := []int{0}
	for i, g := range gaps {
		if g > threshold {
			edges = append(edges, i+1)
		}
	}
	edges = append(edges, n)

	var segments []segment
	for i := 0; i < len(edges)-1; i++ {
		s, e := edges[i], edges[i+1]-1
		if e >= s {
			segments = append(segments, segment{s, e})
		}
	}
	return segments
}

// pickBestSegment favours large, narrow clusters close to the overall median.
// Clusters smaller than minSegmentSize are ignored; when none qualifies the
// whole slice is returned.
func pickBestSegment(sorted []float64, segments []segment) segment {
	best := segment{0, len(sorted) - 1}
	bestScore := math.Inf(-1)
	globalMedian := analytics.Median(sorted)

	for _, seg := range segments {
		size := seg.size()
		if size < minSegmentSize {
			continue
		}
		width := sorted[seg.end] - sorted[seg.start]
		segMedian := analytics.Median(sorted[seg.start : seg.end+1])
		score := math.Log(float64(size)+1) -
			0.6*math.Log(width+2) -
			0.01*math.Abs(segMedian-globalMedian)
		if score > bestScore {
			best, bestScore = seg, score
		}
	}
	return best
}

// ComputePriceRange derives a search price range from a sample of prices.
// strength scales the gap that separates clusters: lower values split more
// eagerly and give tighter ranges. It reports false when fewer than five
// positive prices are available.
func ComputePriceRange(prices []float64, strength int) (lo, hi float64, ok bool) {
	sorted := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 {
			sorted = append(sorted, p)
		}
	}
	n := len(sorted)
	if n < minRangeSample {
		return 0, 0, false
	}
	slices.Sort(sorted)

	best := pickBestSegment(sorted, findSegments(sorted, float64(strength)))
	coverage := float64(best.size()) / float64(n)

	if coverage < minCoverage {
		lo = sorted[int(0.2*float64(n-1))]
		hi = sorted[int(0.8*float64(n-1))]
	} else {
		lo, hi = sorted[best.start], sorted[best.end]
	}

	pad := max(minPad, 0.1*(hi-lo))
	return max(0, lo-pad), hi + pad, true
}
