// Package analytics turns a list of search results into summary metrics and
// chart-ready datasets. Everything here is pure.
package analytics

import "strings"

// Category is the condition bucket a listing falls into.
type Category string

const (
	CategoryNew   Category = "New"
	CategoryUsed  Category = "Used"
	CategoryOther Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryNew, CategoryUsed, CategoryOther}

// Categorize classifies free-text condition. "NEW" anywhere wins over "USED"
// and "PRE-OWNED"; anything else, including empty text, is Other.
func Categorize(condition string) Category {
	cond := strings.ToUpper(condition)
	switch {
	case strings.Contains(cond, "NEW"):
		return CategoryNew
	case strings.Contains(cond, "USED"), strings.Contains(cond, "PRE-OWNED"):
		return CategoryUsed
	default:
		return CategoryOther
	}
}
