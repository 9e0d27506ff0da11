package listing

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// PriceMode selects how the search price range is chosen.
type PriceMode string

const (
	// PriceModeAuto lets the search client derive a price range from a sample.
	PriceModeAuto PriceMode = "auto"
	// PriceModeSpecific uses the bounds given by the user.
	PriceModeSpecific PriceMode = "specific"
)

const (
	// MaxQueryLength is the maximum length of the search text in characters.
	MaxQueryLength = 80

	// DefaultFilterStrength is used in auto mode when none is given.
	DefaultFilterStrength = 4

	ConditionNew  = "new"
	ConditionUsed = "used"
)

// FilterStrengths lists the accepted auto mode filter strengths. Lower values
// split the sampled prices into more segments, giving a tighter range.
var FilterStrengths = []int{3, 4, 6}

// Query is one search configuration.
type Query struct {
	Text           string    `json:"text"`
	CategoryID     string    `json:"categoryId,omitempty"`
	ConditionID    string    `json:"conditionId,omitempty"`
	PriceMode      PriceMode `json:"priceMode,omitempty"`
	MinPrice       *float64  `json:"minPrice,omitempty"`
	MaxPrice       *float64  `json:"maxPrice,omitempty"`
	FilterStrength int       `json:"filterStrength,omitempty"`
}

// ValidationError is a user-facing problem with a query. It is returned before
// any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Normalize trims the text and fills in defaults: a query without a mode is
// specific when it carries a bound and auto otherwise. Bounds are dropped in
// auto mode and the filter strength is dropped in specific mode. An unknown
// condition is dropped, which searches any condition.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.CategoryID = strings.TrimSpace(q.CategoryID)
	q.ConditionID = strings.ToLower(strings.TrimSpace(q.ConditionID))
	if q.ConditionID != ConditionNew && q.ConditionID != ConditionUsed {
		q.ConditionID = ""
	}

	if q.PriceMode == "" {
		if q.MinPrice != nil || q.MaxPrice != nil {
			q.PriceMode = PriceModeSpecific
		} else {
			q.PriceMode = PriceModeAuto
		}
	}

	switch q.PriceMode {
	case PriceModeAuto:
		q.MinPrice = nil
		q.MaxPrice = nil
		if q.FilterStrength == 0 {
			q.FilterStrength = DefaultFilterStrength
		}
	case PriceModeSpecific:
		q.FilterStrength = 0
	}

	return q
}

// Validate checks a normalized query.
func (q Query) Validate() error {
	if q.Text == "" {
		return &ValidationError{Field: "text", Message: "Please enter a product name"}
	}
	if utf8.RuneCountInString(q.Text) > MaxQueryLength {
		return &ValidationError{Field: "text", Message: fmt.Sprintf("Please keep searches under %d characters", MaxQueryLength)}
	}

	switch q.PriceMode {
	case PriceModeAuto:
		if !slices.Contains(FilterStrengths, q.FilterStrength) {
			return &ValidationError{Field: "filterStrength", Message: "Filter strength must be 3, 4 or 6"}
		}
	case PriceModeSpecific:
		if (q.MinPrice != nil && *q.MinPrice < 0) || (q.MaxPrice != nil && *q.MaxPrice < 0) {
			return &ValidationError{Field: "price", Message: "Prices cannot be negative"}
		}
		if q.MaxPrice != nil {
			minPrice := 0.0
			if q.MinPrice != nil {
				minPrice = *q.MinPrice
			}
			if *q.MaxPrice <= minPrice {
				return &ValidationError{Field: "price", Message: "Please enter a valid price range."}
			}
		}
	default:
		return &ValidationError{Field: "priceMode", Message: fmt.Sprintf("Unknown price mode %q", q.PriceMode)}
	}

	return nil
}

// CategoryLabel returns the display name of the query's category.
func (q Query) CategoryLabel() string {
	if q.CategoryID == "" {
		return "All Categories"
	}
	if label, ok := categoryLabels[q.CategoryID]; ok {
		return label
	}
	return "Category " + q.CategoryID
}

// ConditionLabel returns the display name of the query's condition filter.
func (q Query) ConditionLabel() string {
	switch q.ConditionID {
	case ConditionNew:
		return "New"
	case ConditionUsed:
		return "Used"
	default:
		return "Any"
	}
}

// RangeLabel renders the price bounds as "Min X · Max Y".
func (q Query) RangeLabel() string {
	return fmt.Sprintf("Min %s · Max %s", boundLabel(q.MinPrice), boundLabel(q.MaxPrice))
}

func boundLabel(v *float64) string {
	if v == nil {
		return "Any"
	}
	return fmt.Sprintf("%g", *v)
}

// eBay US top-level categories offered by the search form.
var categoryLabels = map[string]string{
	"1":     "Collectibles",
	"220":   "Toys & Hobbies",
	"267":   "Books & Magazines",
	"281":   "Jewelry & Watches",
	"293":   "Consumer Electronics",
	"550":   "Art",
	"625":   "Cameras & Photo",
	"888":   "Sporting Goods",
	"1249":  "Video Games & Consoles",
	"2984":  "Baby",
	"6000":  "eBay Motors",
	"11233": "Music",
	"11450": "Clothing, Shoes & Accessories",
	"11700": "Home & Garden",
	"15032": "Cell Phones & Accessories",
	"58058": "Computers/Tablets & Networking",
}
