package listing

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Numeric is a number that the upstream API may send either as a JSON string
// or as a JSON number. The original text is kept so that values which do not
// parse can still be shown as-is.
type Numeric string

// UnmarshalJSON accepts strings, numbers and null. Any other JSON value is
// kept verbatim and simply fails to parse later; it never fails decoding of
// the surrounding record.
func (n *Numeric) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*n = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*n = Numeric(s)
		return nil
	}

	*n = Numeric(trimmed)
	return nil
}

// Float parses the value. NaN and infinities are rejected.
func (n Numeric) Float() (float64, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Price is the normalized price of a listing.
type Price struct {
	Value    Numeric `json:"value,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// UnmarshalJSON accepts both {"value": ..., "currency": ...} and a bare
// scalar.
func (p *Price) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Value    Numeric         `json:"value"`
			Currency json.RawMessage `json:"currency"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			*p = Price{}
			return nil
		}
		var currency string
		_ = json.Unmarshal(obj.Currency, &currency)
		*p = Price{Value: obj.Value, Currency: currency}
		return nil
	}

	var v Numeric
	if err := v.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	*p = Price{Value: v}
	return nil
}

// Amount returns the numeric price and whether the value parsed.
func (p Price) Amount() (float64, bool) {
	return p.Value.Float()
}

// IsZero reports whether no price value is present at all.
func (p Price) IsZero() bool {
	return strings.TrimSpace(string(p.Value)) == ""
}

// String formats the price for tables. A missing currency is treated as USD.
func (p Price) String() string {
	if p.IsZero() {
		return "N/A"
	}
	if p.Currency == "" || p.Currency == "USD" {
		return "$" + string(p.Value)
	}
	return string(p.Value)
}
