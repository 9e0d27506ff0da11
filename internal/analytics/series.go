package analytics

import (
	"github.com/raine/market-dashboard/internal/listing"
)

// Point is one chart point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CategorizedSeries holds the points of one chart view split by condition.
// Each slice keeps the original result order.
type CategorizedSeries struct {
	New   []Point `json:"New"`
	Used  []Point `json:"Used"`
	Other []Point `json:"Other"`
}

// Get returns the points of one category.
func (s CategorizedSeries) Get(c Category) []Point {
	switch c {
	case CategoryNew:
		return s.New
	case CategoryUsed:
		return s.Used
	default:
		return s.Other
	}
}

// Len returns the number of points across all categories.
func (s CategorizedSeries) Len() int {
	return len(s.New) + len(s.Used) + len(s.Other)
}

func (s *CategorizedSeries) add(c Category, p Point) {
	switch c {
	case CategoryNew:
		s.New = append(s.New, p)
	case CategoryUsed:
		s.Used = append(s.Used, p)
	default:
		s.Other = append(s.Other, p)
	}
}

// PointFunc extracts the point a record contributes to one view. It returns
// false when the record lacks a field that view needs.
type PointFunc func(listing.Record) (Point, bool)

// BuildCategorizedSeries extracts a point from every record and files it under
// the record's condition category. Records without a point are left out of
// this view only.
func BuildCategorizedSeries(records []listing.Record, extract PointFunc) CategorizedSeries {
	series := CategorizedSeries{
		New:   []Point{},
		Used:  []Point{},
		Other: []Point{},
	}
	for _, r := range records {
		p, ok := extract(r)
		if !ok {
			continue
		}
		series.add(Categorize(r.Condition), p)
	}
	return series
}

// PricePoint places a listing on the price axis (x=price, y=0).
func PricePoint(r listing.Record) (Point, bool) {
	price, ok := r.Price.Amount()
	if !ok {
		return Point{}, false
	}
	return Point{X: price, Y: 0}, true
}

// SellerScorePoint plots price against seller feedback (x=score, y=price).
func SellerScorePoint(r listing.Record) (Point, bool) {
	price, ok := r.Price.Amount()
	if !ok {
		return Point{}, false
	}
	score, ok := r.SellerScore.Float()
	if !ok {
		return Point{}, false
	}
	return Point{X: score, Y: price}, true
}

// ListedAtPoint plots price against listing time (x=unix milliseconds,
// y=price).
func ListedAtPoint(r listing.Record) (Point, bool) {
	price, ok := r.Price.Amount()
	if !ok {
		return Point{}, false
	}
	listed, ok := r.ListedTime()
	if !ok {
		return Point{}, false
	}
	return Point{X: float64(listed.UnixMilli()), Y: price}, true
}

// ConditionCounts is the number of listings per category.
type ConditionCounts struct {
	New   int `json:"New"`
	Used  int `json:"Used"`
	Other int `json:"Other"`
}

// Get returns the count of one category.
func (c ConditionCounts) Get(cat Category) int {
	switch cat {
	case CategoryNew:
		return c.New
	case CategoryUsed:
		return c.Used
	default:
		return c.Other
	}
}

// Total returns the sum over all categories.
func (c ConditionCounts) Total() int {
	return c.New + c.Used + c.Other
}

// CountByCategory tallies every record by condition category.
func CountByCategory(records []listing.Record) ConditionCounts {
	var counts ConditionCounts
	for _, r := range records {
		switch Categorize(r.Condition) {
		case CategoryNew:
			counts.New++
		case CategoryUsed:
			counts.Used++
		default:
			counts.Other++
		}
	}
	return counts
}
