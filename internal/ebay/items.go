package ebay

import (
	"slices"
	"strings"

	"github.com/raine/market-dashboard/internal/listing"
)

// ItemSummary is the subset of a Browse API item summary the dashboard uses.
type ItemSummary struct {
	ItemID           string         `json:"itemId"`
	Title            string         `json:"title"`
	Price            listing.Price  `json:"price"`
	Condition        string         `json:"condition"`
	ConditionID      string         `json:"conditionId"`
	ItemWebURL       string         `json:"itemWebUrl"`
	Image            *Image         `json:"image,omitempty"`
	ThumbnailImages  []Image        `json:"thumbnailImages,omitempty"`
	Seller           Seller         `json:"seller"`
	Categories       []ItemCategory `json:"categories,omitempty"`
	ItemCreationDate string         `json:"itemCreationDate"`
}

type Image struct {
	ImageURL string `json:"imageUrl"`
}

type Seller struct {
	Username           string          `json:"username"`
	FeedbackPercentage listing.Numeric `json:"feedbackPercentage"`
	FeedbackScore      int             `json:"feedbackScore"`
}

type ItemCategory struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

// Record flattens the summary into a listing record.
func (it ItemSummary) Record() listing.Record {
	r := listing.Record{
		Title:       it.Title,
		Price:       it.Price,
		Condition:   it.Condition,
		ItemURL:     it.ItemWebURL,
		SellerName:  it.Seller.Username,
		SellerScore: it.Seller.FeedbackPercentage,
		ListedAt:    it.ItemCreationDate,
	}
	if it.Image != nil && it.Image.ImageURL != "" {
		r.ImageURL = it.Image.ImageURL
	} else if len(it.ThumbnailImages) > 0 {
		r.ImageURL = it.ThumbnailImages[0].ImageURL
	}
	if len(it.Categories) > 0 {
		r.Category = it.Categories[0].CategoryName
	}
	return r
}

// Records converts a page of summaries.
func Records(items []ItemSummary) []listing.Record {
	records := make([]listing.Record, len(items))
	for i, it := range items {
		records[i] = it.Record()
	}
	return records
}

// MinSellerScore is the feedback percentage a seller must exceed for their
// listings to be kept.
const MinSellerScore = 95

// FilterByQuality drops listings from sellers with a feedback percentage of
// MinSellerScore or less (or none at all) and listings whose title contains
// the word "broken". The rest are sorted by ascending price, with unparsable
// prices sorting as zero.
func FilterByQuality(records []listing.Record) []listing.Record {
	kept := make([]listing.Record, 0, len(records))
	for _, r := range records {
		score, ok := r.SellerScore.Float()
		if !ok || score <= MinSellerScore {
			continue
		}
		if hasWord(r.Title, "broken") {
			continue
		}
		kept = append(kept, r)
	}

	slices.SortStableFunc(kept, func(a, b listing.Record) int {
		pa, _ := a.Price.Amount()
		pb, _ := b.Price.Amount()
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	})
	return kept
}

func hasWord(s, word string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if w == word {
			return true
		}
	}
	return false
}
