package listing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestPrice_UnmarshalPolymorphic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		amount   float64
		ok       bool
		currency string
	}{
		{"object", `{"value": "12.50", "currency": "USD"}`, 12.5, true, "USD"},
		{"bare string", `"20"`, 20, true, ""},
		{"bare number", `30.25`, 30.25, true, ""},
		{"non-numeric string", `"abc"`, 0, false, ""},
		{"null", `null`, 0, false, ""},
		{"object with numeric value", `{"value": 7, "currency": "EUR"}`, 7, true, "EUR"},
		{"object with bad currency", `{"value": "5", "currency": 1}`, 5, true, ""},
		{"zero is a price", `"0"`, 0, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			amount, ok := p.Amount()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.amount, amount)
			assert.Equal(t, tt.currency, p.Currency)
		})
	}
}

func TestRecord_MalformedFieldsDoNotFailDecoding(t *testing.T) {
	input := `[
		{"title": "A", "price": {"value": "10"}, "sellerScore": 99.5},
		{"title": "B", "price": "abc", "sellerScore": true},
		{"title": "C", "price": [1, 2]}
	]`

	var records []Record
	require.NoError(t, json.Unmarshal([]byte(input), &records))
	require.Len(t, records, 3)

	score, ok := records[0].SellerScore.Float()
	assert.True(t, ok)
	assert.Equal(t, 99.5, score)

	_, ok = records[1].Price.Amount()
	assert.False(t, ok)
	_, ok = records[1].SellerScore.Float()
	assert.False(t, ok)

	_, ok = records[2].Price.Amount()
	assert.False(t, ok)
}

func TestPrice_String(t *testing.T) {
	assert.Equal(t, "N/A", Price{}.String())
	assert.Equal(t, "$12.00", Price{Value: "12.00", Currency: "USD"}.String())
	assert.Equal(t, "$3", Price{Value: "3"}.String())
	assert.Equal(t, "9.99", Price{Value: "9.99", Currency: "GBP"}.String())
}

func TestRecord_ListedTime(t *testing.T) {
	r := Record{ListedAt: "2024-03-01T10:15:00.000Z"}
	ts, ok := r.ListedTime()
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())

	_, ok = Record{ListedAt: "2024-03-01"}.ListedTime()
	assert.True(t, ok)

	_, ok = Record{ListedAt: "not a date"}.ListedTime()
	assert.False(t, ok)

	_, ok = Record{ListedAt: "2024-02-30"}.ListedTime()
	assert.False(t, ok)

	_, ok = Record{}.ListedTime()
	assert.False(t, ok)
}

func TestRecord_SellerLabel(t *testing.T) {
	assert.Equal(t, "", Record{}.SellerLabel())
	assert.Equal(t, "bob", Record{SellerName: "bob"}.SellerLabel())
	assert.Equal(t, "bob (99.1%)", Record{SellerName: "bob", SellerScore: "99.1"}.SellerLabel())
}

func TestQuery_Normalize(t *testing.T) {
	q := Query{Text: "  camera  "}.Normalize()
	assert.Equal(t, "camera", q.Text)
	assert.Equal(t, PriceModeAuto, q.PriceMode)
	assert.Equal(t, DefaultFilterStrength, q.FilterStrength)

	q = Query{Text: "camera", MaxPrice: ptr(100), FilterStrength: 6}.Normalize()
	assert.Equal(t, PriceModeSpecific, q.PriceMode)
	assert.Zero(t, q.FilterStrength)

	q = Query{Text: "camera", PriceMode: PriceModeAuto, MinPrice: ptr(5)}.Normalize()
	assert.Nil(t, q.MinPrice)

	q = Query{Text: "camera", ConditionID: " Used "}.Normalize()
	assert.Equal(t, ConditionUsed, q.ConditionID)

	q = Query{Text: "camera", ConditionID: "refurbished"}.Normalize()
	assert.Empty(t, q.ConditionID)
	assert.Equal(t, "Any", q.ConditionLabel())
}

func TestQuery_Validate(t *testing.T) {
	long := ""
	for range MaxQueryLength + 1 {
		long += "a"
	}
	exact := long[:MaxQueryLength]

	tests := []struct {
		name  string
		query Query
		field string
	}{
		{"empty text", Query{Text: "   "}, "text"},
		{"too long", Query{Text: long}, "text"},
		{"max equal to min", Query{Text: "x", MinPrice: ptr(10), MaxPrice: ptr(10)}, "price"},
		{"max below min", Query{Text: "x", MinPrice: ptr(10), MaxPrice: ptr(5)}, "price"},
		{"max zero without min", Query{Text: "x", MaxPrice: ptr(0)}, "price"},
		{"negative min", Query{Text: "x", MinPrice: ptr(-1)}, "price"},
		{"bad strength", Query{Text: "x", FilterStrength: 5}, "filterStrength"},
		{"unknown condition is ignored", Query{Text: "x", ConditionID: "broken"}, ""},
		{"bad mode", Query{Text: "x", PriceMode: "manual"}, "priceMode"},
		{"valid auto", Query{Text: "x"}, ""},
		{"valid exact length", Query{Text: exact}, ""},
		{"valid range", Query{Text: "x", MinPrice: ptr(10), MaxPrice: ptr(20)}, ""},
		{"valid min only", Query{Text: "x", MinPrice: ptr(10)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Normalize().Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestQuery_Labels(t *testing.T) {
	q := Query{Text: "x", CategoryID: "625", ConditionID: "used", MinPrice: ptr(10)}
	assert.Equal(t, "Cameras & Photo", q.CategoryLabel())
	assert.Equal(t, "Used", q.ConditionLabel())
	assert.Equal(t, "Min 10 · Max Any", q.RangeLabel())

	assert.Equal(t, "All Categories", Query{}.CategoryLabel())
	assert.Equal(t, "Category 999", Query{CategoryID: "999"}.CategoryLabel())
	assert.Equal(t, "Any", Query{}.ConditionLabel())
}
