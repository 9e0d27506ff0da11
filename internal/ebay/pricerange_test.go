package ebay

import (
	"strconv"
	"testing"

	"github.com/raine/market-dashboard/internal/listing"
	"github.com/stretchr/testify/assert"
)

func pricedRecords(prices ...float64) []listing.Record {
	records := make([]listing.Record, len(prices))
	for i, p := range prices {
		records[i] = listing.Record{
			Title: "item " + strconv.Itoa(i),
			Price: listing.Price{Value: listing.Numeric(strconv.FormatFloat(p, 'f', -1, 64))},
		}
	}
	return records
}

func TestTrimOutliers(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 1000}
	records := append(pricedRecords(prices...), listing.Record{Title: "no price", Price: listing.Price{Value: "call"}})

	kept := TrimOutliers(records)

	assert.Len(t, kept, 15)
	for _, r := range kept {
		p, ok := r.Price.Amount()
		assert.True(t, ok)
		assert.Less(t, p, 1000.0)
	}
}

func TestTrimOutliers_SmallSampleUntouched(t *testing.T) {
	records := pricedRecords(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 5000)
	assert.Equal(t, records, TrimOutliers(records))
}

func TestInclusiveQuartile(t *testing.T) {
	sorted := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 1000}
	assert.InDelta(t, 13.75, inclusiveQuartile(sorted, 1), 1e-9)
	assert.InDelta(t, 21.25, inclusiveQuartile(sorted, 3), 1e-9)
	assert.Equal(t, 42.0, inclusiveQuartile([]float64{42}, 1))
}

func TestFindSegments(t *testing.T) {
	sorted := []float64{10, 11, 12, 13, 14, 100, 105, 110}
	assert.Equal(t, []segment{{0, 4}, {5, 7}}, findSegments(sorted, 4))

	assert.Equal(t, []segment{{0, 2}}, findSegments([]float64{1, 50, 900}, 4))
}

func TestPickBestSegment(t *testing.T) {
	sorted := []float64{10, 11, 12, 13, 14, 100, 105, 110}
	assert.Equal(t, segment{0, 4}, pickBestSegment(sorted, []segment{{0, 4}, {5, 7}}))

	// No segment is large enough.
	assert.Equal(t, segment{0, 7}, pickBestSegment(sorted, []segment{{0, 3}, {4, 7}}))
}

func TestComputePriceRange_DominantCluster(t *testing.T) {
	lo, hi, ok := ComputePriceRange([]float64{15, 100, 10, 13, 11, 14, 12}, 4)
	assert.True(t, ok)
	assert.InDelta(t, 7, lo, 1e-9)
	assert.InDelta(t, 18, hi, 1e-9)
}

func TestComputePriceRange_LowCoverageUsesPercentiles(t *testing.T) {
	lo, hi, ok := ComputePriceRange([]float64{10, 11, 12, 13, 14, 100, 105, 110}, 4)
	assert.True(t, ok)
	// 20th and 80th percentile are 11 and 100, padded by 10% of the width.
	assert.InDelta(t, 2.1, lo, 1e-9)
	assert.InDelta(t, 108.9, hi, 1e-9)
}

func TestComputePriceRange_LowerBoundNotNegative(t *testing.T) {
	lo, hi, ok := ComputePriceRange([]float64{1, 1.1, 1.2, 1.3, 1.4, 1.5}, 6)
	assert.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.InDelta(t, 4.5, hi, 1e-9)
}

func TestComputePriceRange_TooFewPrices(t *testing.T) {
	_, _, ok := ComputePriceRange([]float64{0, -1, 5, 6, 7}, 4)
	assert.False(t, ok)

	_, _, ok = ComputePriceRange(nil, 4)
	assert.False(t, ok)
}
