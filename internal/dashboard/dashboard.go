// Package dashboard turns one search's results into the dashboard view and
// keeps the current session's state: the last results, their charts and the
// search history.
package dashboard

import (
	"time"

	"github.com/raine/market-dashboard/internal/analytics"
	"github.com/raine/market-dashboard/internal/chart"
	"github.com/raine/market-dashboard/internal/listing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Chart IDs of the dashboard.
const (
	ChartListingByPrice     = "listing-by-price"
	ChartPriceVsSellerScore = "price-vs-seller-score"
	ChartPriceVsDate        = "price-vs-date"
	ChartPriceHistogram     = "price-histogram"
	ChartNewVsUsed          = "new-vs-used"
)

// ChartIDs lists every chart of the dashboard in display order.
var ChartIDs = []string{
	ChartListingByPrice,
	ChartPriceVsSellerScore,
	ChartPriceVsDate,
	ChartPriceHistogram,
	ChartNewVsUsed,
}

// Dashboard is the analytics view of one result set.
type Dashboard struct {
	Title       string                    `json:"title"`
	Query       listing.Query             `json:"query"`
	Metrics     analytics.Metrics         `json:"metrics"`
	Display     analytics.MetricsDisplay  `json:"display"`
	Histogram   analytics.Histogram       `json:"histogram"`
	Counts      analytics.ConditionCounts `json:"counts"`
	Charts      []chart.Descriptor        `json:"charts"`
	Records     []listing.Record          `json:"records"`
	GeneratedAt time.Time                 `json:"generatedAt"`
}

// Title returns the dashboard heading for the search text.
func Title(text string) string {
	return "Overview: " + cases.Title(language.English).String(text)
}

// Build runs the analytics pipeline over records.
func Build(q listing.Query, records []listing.Record) *Dashboard {
	prices := analytics.NumericPrices(records)
	metrics := analytics.ComputeMetrics(len(records), prices)
	hist := analytics.ComputeHistogram(prices)
	counts := analytics.CountByCategory(records)

	d := &Dashboard{
		Title:       Title(q.Text),
		Query:       q,
		Metrics:     metrics,
		Display:     metrics.Display(),
		Histogram:   hist,
		Counts:      counts,
		Records:     records,
		GeneratedAt: time.Now().UTC(),
	}

	d.Charts = []chart.Descriptor{
		{
			ID:     ChartListingByPrice,
			Kind:   chart.KindScatter,
			Title:  "Listings by Price",
			Axes:   chart.Axes{X: "Price ($)"},
			Series: analytics.BuildCategorizedSeries(records, analytics.PricePoint),
		},
		{
			ID:     ChartPriceVsSellerScore,
			Kind:   chart.KindScatter,
			Title:  "Price vs Seller Score",
			Axes:   chart.Axes{X: "Seller Score (%)", Y: "Price ($)"},
			Series: analytics.BuildCategorizedSeries(records, analytics.SellerScorePoint),
		},
		{
			ID:     ChartPriceVsDate,
			Kind:   chart.KindScatter,
			Title:  "Price vs Date Listed",
			Axes:   chart.Axes{X: "Date Listed", Y: "Price ($)", TimeX: true},
			Series: analytics.BuildCategorizedSeries(records, analytics.ListedAtPoint),
		},
		{
			ID:    ChartPriceHistogram,
			Kind:  chart.KindHistogram,
			Title: "Price Distribution",
			Bins:  hist.Bins,
		},
		{
			ID:     ChartNewVsUsed,
			Kind:   chart.KindDonut,
			Title:  "New vs Used",
			Counts: counts,
		},
	}

	return d
}
