// Package export serializes search results for download.
package export

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/raine/market-dashboard/internal/listing"
)

// ContentType is the MIME type of ToCSV output.
const ContentType = "text/csv;charset=utf-8"

const missing = "N/A"

var header = []string{"#", "Title", "Price", "Condition", "Link", "Seller", "Category"}

// ToCSV renders records as CSV with every field quoted. Rows are joined with
// "\n" and there is no trailing newline.
func ToCSV(records []listing.Record) string {
	var sb strings.Builder
	writeRow(&sb, header)

	for i, r := range records {
		sb.WriteByte('\n')
		writeRow(&sb, []string{
			strconv.Itoa(i + 1),
			orMissing(r.Title),
			orMissing(strings.TrimSpace(string(r.Price.Value))),
			orMissing(r.Condition),
			orMissing(r.ItemURL),
			orMissing(r.SellerLabel()),
			orMissing(r.Category),
		})
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// Filename derives the download name from the search text: every
// non-alphanumeric character becomes "_".
func Filename(query string) string {
	name := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, query)
	return name + "_results.csv"
}
