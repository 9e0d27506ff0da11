package ebay

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/raine/market-dashboard/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeItemSearcher records every call and answers with SearchFunc.
type fakeItemSearcher struct {
	SearchFunc func(params SearchParams) (*SearchResponse, error)

	mu    sync.Mutex
	calls []SearchParams
}

func (f *fakeItemSearcher) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	return f.SearchFunc(params)
}

func (f *fakeItemSearcher) pageCalls() []SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SearchParams
	for _, c := range f.calls {
		if c.Limit != SampleSize {
			out = append(out, c)
		}
	}
	return out
}

func summaries(prefix string, prices ...float64) []ItemSummary {
	items := make([]ItemSummary, len(prices))
	for i, p := range prices {
		items[i] = ItemSummary{
			Title:     prefix + " " + strconv.Itoa(i),
			Price:     listing.Price{Value: listing.Numeric(strconv.FormatFloat(p, 'f', -1, 64)), Currency: "USD"},
			Condition: "Used",
			Seller:    Seller{Username: "seller", FeedbackPercentage: "99"},
		}
	}
	return items
}

func ptr(v float64) *float64 { return &v }

func TestFinderSearch_SpecificMode(t *testing.T) {
	items := &fakeItemSearcher{SearchFunc: func(p SearchParams) (*SearchResponse, error) {
		if p.Page == 1 {
			return &SearchResponse{ItemSummaries: summaries("page1", 30, 10)}, nil
		}
		return &SearchResponse{ItemSummaries: summaries("page2", 20)}, nil
	}}

	q := listing.Query{Text: "tripod", ConditionID: "used", PriceMode: listing.PriceModeSpecific, MinPrice: ptr(5), MaxPrice: ptr(50)}
	records, err := NewFinder(items).Search(context.Background(), q)
	require.NoError(t, err)

	prices := make([]string, len(records))
	for i, r := range records {
		prices[i] = string(r.Price.Value)
	}
	assert.Equal(t, []string{"10", "20", "30"}, prices)

	calls := items.pageCalls()
	require.Len(t, calls, 2)
	assert.Len(t, items.calls, 2)
	for _, c := range calls {
		assert.Equal(t, "tripod", c.Query)
		assert.Equal(t, "used", c.ConditionID)
		assert.Equal(t, 5.0, *c.MinPrice)
		assert.Equal(t, 50.0, *c.MaxPrice)
	}
	assert.ElementsMatch(t, []int{1, 2}, []int{calls[0].Page, calls[1].Page})
}

func TestFinderSearch_AutoModeUsesSampledRange(t *testing.T) {
	items := &fakeItemSearcher{SearchFunc: func(p SearchParams) (*SearchResponse, error) {
		if p.Limit == SampleSize {
			return &SearchResponse{ItemSummaries: summaries("sample", 10, 11, 12, 13, 14, 15, 100)}, nil
		}
		return &SearchResponse{ItemSummaries: summaries("page", 12)}, nil
	}}

	q := listing.Query{Text: "lens cap", PriceMode: listing.PriceModeAuto, FilterStrength: 4}
	records, err := NewFinder(items).Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	calls := items.pageCalls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		require.NotNil(t, c.MinPrice)
		require.NotNil(t, c.MaxPrice)
		assert.InDelta(t, 7, *c.MinPrice, 1e-9)
		assert.InDelta(t, 18, *c.MaxPrice, 1e-9)
	}
}

func TestFinderSearch_AutoModeSmallSampleSearchesUnbounded(t *testing.T) {
	items := &fakeItemSearcher{SearchFunc: func(p SearchParams) (*SearchResponse, error) {
		return &SearchResponse{ItemSummaries: summaries("x", 10, 20)}, nil
	}}

	_, err := NewFinder(items).Search(context.Background(), listing.Query{Text: "rare", PriceMode: listing.PriceModeAuto, FilterStrength: 4})
	require.NoError(t, err)

	for _, c := range items.pageCalls() {
		assert.Nil(t, c.MinPrice)
		assert.Nil(t, c.MaxPrice)
	}
}

func TestFinderSearch_PageErrorFailsSearch(t *testing.T) {
	items := &fakeItemSearcher{SearchFunc: func(p SearchParams) (*SearchResponse, error) {
		if p.Page == 2 {
			return nil, &APIError{StatusCode: 500}
		}
		return &SearchResponse{ItemSummaries: summaries("x", 10)}, nil
	}}

	_, err := NewFinder(items).Search(context.Background(), listing.Query{Text: "x", PriceMode: listing.PriceModeSpecific, MaxPrice: ptr(10)})
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestFinderSearch_SampleErrorFailsSearch(t *testing.T) {
	items := &fakeItemSearcher{SearchFunc: func(p SearchParams) (*SearchResponse, error) {
		return nil, errors.New("connection reset")
	}}

	_, err := NewFinder(items).Search(context.Background(), listing.Query{Text: "x", PriceMode: listing.PriceModeAuto, FilterStrength: 4})
	assert.EqualError(t, err, "connection reset")
	assert.Len(t, items.calls, 1)
}
