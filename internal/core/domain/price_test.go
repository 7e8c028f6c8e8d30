package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Price
	}{
		{"12.50", 12.5},
		{" 3 ", 3},
		{"", 0},
		{"null", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ParsePrice(tt.in), "input %q", tt.in)
	}
}

func TestPriceJSON(t *testing.T) {
	var v struct {
		Number domain.Price         `json:"number"`
		Text   domain.Price         `json:"text"`
		Null   domain.Price         `json:"null"`
		Opt    domain.OptionalPrice `json:"opt"`
		None   domain.OptionalPrice `json:"none"`
	}
	err := json.Unmarshal(
		[]byte(`{"number": 4.2, "text": "19.99", "null": null, "opt": "5.00", "none": null}`),
		&v,
	)
	require.NoError(t, err)

	assert.Equal(t, domain.Price(4.2), v.Number)
	assert.Equal(t, domain.Price(19.99), v.Text)
	assert.Zero(t, v.Null)
	assert.Equal(t, domain.SomePrice(5), v.Opt)
	assert.False(t, v.None.Set)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number": 4.2, "text": 19.99, "null": 0, "opt": 5, "none": null}`, string(out))
}

func TestEffectivePrice(t *testing.T) {
	p := domain.Product{Price: 20}
	assert.Equal(t, domain.Price(20), p.EffectivePrice())

	p.DiscountedPrice = domain.SomePrice(15)
	assert.Equal(t, domain.Price(15), p.EffectivePrice())

	p.DiscountedPrice = domain.SomePrice(0)
	assert.Equal(t, domain.Price(20), p.EffectivePrice())
	assert.Equal(t, "20.00", p.EffectivePrice().String())
}
