package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// A Price is a monetary amount as served by the catalog.
//
// The catalog renders decimals either as JSON numbers or as strings
// ("12.50"). Anything that does not parse into a finite number, including
// null, decodes to 0.
type Price float64

func (p Price) Float() float64 {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (p Price) Valid() bool {
	f := float64(p)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (p Price) String() string {
	return strconv.FormatFloat(p.Float(), 'f', 2, 64)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(p.Float(), 'f', -1, 64)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = ParsePrice(string(bytes.Trim(data, `"`)))
	return nil
}

func ParsePrice(s string) Price {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Price(f)
}

// OptionalPrice is a [Price] that may be absent.
type OptionalPrice struct {
	Price Price
	Set   bool
}

func SomePrice(p float64) OptionalPrice {
	return OptionalPrice{Price: Price(p), Set: true}
}

func (o OptionalPrice) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return o.Price.MarshalJSON()
}

func (o *OptionalPrice) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalPrice{}
		return nil
	}
	var p Price
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OptionalPrice{Price: p, Set: true}
	return nil
}
