// Package listing defines the normalized marketplace listing and the search
// query shared by the search client, the analytics pipeline and the history.
package listing

import (
	"fmt"
	"strings"
	"time"
)

// Record is one marketplace listing as returned by a search. Every field is
// optional.
type Record struct {
	Title       string  `json:"title,omitempty"`
	Price       Price   `json:"price"`
	Condition   string  `json:"condition,omitempty"`
	ItemURL     string  `json:"itemUrl,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	SellerName  string  `json:"sellerName,omitempty"`
	SellerScore Numeric `json:"sellerScore,omitempty"`
	Category    string  `json:"category,omitempty"`
	ListedAt    string  `json:"listedAt,omitempty"`
}

var listedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ListedTime parses ListedAt. It reports false for missing or invalid dates.
func (r Record) ListedTime() (time.Time, bool) {
	s := strings.TrimSpace(r.ListedAt)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range listedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SellerLabel renders the seller as "name (score%)". It returns "" when the
// record has no seller.
func (r Record) SellerLabel() string {
	if r.SellerName == "" {
		return ""
	}
	if r.SellerScore == "" {
		return r.SellerName
	}
	return fmt.Sprintf("%s (%s%%)", r.SellerName, r.SellerScore)
}
