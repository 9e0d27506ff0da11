package analytics

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/raine/market-dashboard/internal/listing"
)

// Metrics summarizes the prices of one result set. Aggregates are kept at full
// precision; rounding happens in Display.
type Metrics struct {
	// Available is false when no record had a numeric price.
	Available bool    `json:"available"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
}

// MetricsDisplay is Metrics formatted for the dashboard cards.
type MetricsDisplay struct {
	Total  string `json:"total"`
	Min    string `json:"min"`
	Max    string `json:"max"`
	Mean   string `json:"mean"`
	Median string `json:"median"`
}

const unavailable = "N/A"

// NumericPrices returns the parsed prices of records, skipping those that do
// not parse. Order is preserved.
func NumericPrices(records []listing.Record) []float64 {
	prices := make([]float64, 0, len(records))
	for _, r := range records {
		if p, ok := r.Price.Amount(); ok {
			prices = append(prices, p)
		}
	}
	return prices
}

// ComputeMetrics reduces prices to min, max, mean and median. total is the
// size of the whole result set, including records whose price did not parse.
func ComputeMetrics(total int, prices []float64) Metrics {
	if len(prices) == 0 {
		return Metrics{Count: total}
	}

	m := Metrics{
		Available: true,
		Count:     total,
		Min:       prices[0],
		Max:       prices[0],
	}

	var sum float64
	for _, p := range prices {
		if p < m.Min {
			m.Min = p
		}
		if p > m.Max {
			m.Max = p
		}
		sum += p
	}
	m.Mean = sum / float64(len(prices))
	m.Median = Median(prices)

	return m
}

// Median returns the middle value of prices, or the mean of the two middle
// values for an even count. prices must not be empty.
func Median(prices []float64) float64 {
	sorted := slices.Clone(prices)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Display formats the metrics with two decimals. Every field is "N/A" when no
// price was available.
func (m Metrics) Display() MetricsDisplay {
	if !m.Available {
		return MetricsDisplay{
			Total:  unavailable,
			Min:    unavailable,
			Max:    unavailable,
			Mean:   unavailable,
			Median: unavailable,
		}
	}
	return MetricsDisplay{
		Total:  strconv.Itoa(m.Count),
		Min:    formatMoney(m.Min),
		Max:    formatMoney(m.Max),
		Mean:   formatMoney(m.Mean),
		Median: formatMoney(m.Median),
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
