package export

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/raine/market-dashboard/internal/listing"
	"github.com/stretchr/testify/assert"
)

func TestToCSV(t *testing.T) {
	records := []listing.Record{
		{
			Title:       `He said "hi"`,
			Price:       listing.Price{Value: "12.50", Currency: "USD"},
			Condition:   "New",
			ItemURL:     "https://www.ebay.com/itm/1",
			SellerName:  "bob",
			SellerScore: "99.5",
			Category:    "Cameras",
		},
		{},
	}

	expected := strings.TrimSpace(dedent.Dedent(`
		"#","Title","Price","Condition","Link","Seller","Category"
		"1","He said ""hi""","12.50","New","https://www.ebay.com/itm/1","bob (99.5%)","Cameras"
		"2","N/A","N/A","N/A","N/A","N/A","N/A"
	`))

	assert.Equal(t, expected, ToCSV(records))
}

func TestToCSV_NoRecordsIsHeaderOnly(t *testing.T) {
	assert.Equal(t, `"#","Title","Price","Condition","Link","Seller","Category"`, ToCSV(nil))
}

func TestToCSV_KeepsUnparsablePrice(t *testing.T) {
	out := ToCSV([]listing.Record{{Title: "x", Price: listing.Price{Value: "abc"}}})
	assert.Contains(t, out, `"1","x","abc",`)
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "nintendo_switch_oled_results.csv", Filename("nintendo switch oled"))
	assert.Equal(t, "Canon_EOS_R6__mk_II__results.csv", Filename("Canon EOS R6 (mk II)"))
	assert.Equal(t, "caf__results.csv", Filename("café"))
}
