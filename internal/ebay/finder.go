package ebay

import (
	"context"

	"github.com/raine/market-dashboard/internal/listing"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ItemSearcher fetches one page of item summaries.
type ItemSearcher interface {
	Search(ctx context.Context, params SearchParams) (*SearchResponse, error)
}

var _ ItemSearcher = (*Client)(nil)

// Finder runs a full dashboard search against the Browse API: it resolves an
// automatic price range when asked to, fetches the result pages concurrently
// and drops low quality listings.
type Finder struct {
	items ItemSearcher
	pages int
}

// DefaultPages is the number of result pages fetched per search.
const DefaultPages = 2

func NewFinder(items ItemSearcher) *Finder {
	return &Finder{items: items, pages: DefaultPages}
}

// Search returns the filtered listings for q, sorted by ascending price.
func (f *Finder) Search(ctx context.Context, q listing.Query) ([]listing.Record, error) {
	params := SearchParams{
		Query:       q.Text,
		CategoryID:  q.CategoryID,
		ConditionID: q.ConditionID,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
	}

	if q.PriceMode == listing.PriceModeAuto {
		lo, hi, ok, err := f.autoRange(ctx, params, q.FilterStrength)
		if err != nil {
			return nil, err
		}
		if ok {
			params.MinPrice, params.MaxPrice = &lo, &hi
		}
	}

	pages := make([][]listing.Record, f.pages)
	g, gctx := errgroup.WithContext(ctx)
	for i := range pages {
		g.Go(func() error {
			p := params
			p.Page = i + 1
			res, err := f.items.Search(gctx, p)
			if err != nil {
				return err
			}
			pages[i] = Records(res.ItemSummaries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []listing.Record
	for _, page := range pages {
		all = append(all, page...)
	}
	kept := FilterByQuality(all)

	log.Info().
		Str("query", q.Text).
		Int("fetched", len(all)).
		Int("kept", len(kept)).
		Msg("ebay search done")

	return kept, nil
}

// autoRange samples the first results for the query and derives a price
// range from them.
func (f *Finder) autoRange(ctx context.Context, params SearchParams, strength int) (lo, hi float64, ok bool, err error) {
	params.Limit = SampleSize
	params.Page = 1
	res, err := f.items.Search(ctx, params)
	if err != nil {
		return 0, 0, false, err
	}

	sample := TrimOutliers(Records(res.ItemSummaries))
	lo, hi, ok = ComputePriceRange(PositivePrices(sample), strength)
	if !ok {
		log.Debug().Str("query", params.Query).Int("sample", len(sample)).Msg("sample too small for price range")
		return 0, 0, false, nil
	}

	log.Debug().
		Str("query", params.Query).
		Float64("min", lo).
		Float64("max", hi).
		Msg("derived price range")
	return lo, hi, true, nil
}
