package domain_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lamp(stock int) domain.CartItem {
	return domain.CartItem{
		ProductID:    1,
		Name:         "Lamp",
		UnitPrice:    10,
		Quantity:     1,
		StockLimit:   stock,
		CurrencyCode: "USD",
	}
}

func TestReduceAddToCart(t *testing.T) {
	t.Run("InsertsNewItem", func(t *testing.T) {
		c := domain.Reduce(domain.Cart{}, domain.AddToCart{Item: lamp(5)})
		require.Len(t, c.Items, 1)
		assert.Equal(t, 1, c.Items[0].Quantity)
	})

	t.Run("IncrementsExistingItem", func(t *testing.T) {
		c := domain.Cart{Items: []domain.CartItem{lamp(5)}}
		c = domain.Reduce(c, domain.AddToCart{Item: lamp(5)})
		require.Len(t, c.Items, 1)
		assert.Equal(t, 2, c.Items[0].Quantity)
	})

	t.Run("StopsAtStockLimit", func(t *testing.T) {
		c := domain.Cart{}
		for range 4 {
			c = domain.Reduce(c, domain.AddToCart{Item: lamp(2)})
		}
		assert.Equal(t, 2, c.Items[0].Quantity)
	})

	t.Run("CapsRequestedQuantity", func(t *testing.T) {
		item := lamp(3)
		item.Quantity = 10
		c := domain.Reduce(domain.Cart{}, domain.AddToCart{Item: item})
		assert.Equal(t, 3, c.Items[0].Quantity)
	})

	t.Run("ZeroQuantityBecomesOne", func(t *testing.T) {
		item := lamp(3)
		item.Quantity = 0
		c := domain.Reduce(domain.Cart{}, domain.AddToCart{Item: item})
		assert.Equal(t, 1, c.Items[0].Quantity)
	})

	t.Run("OutOfStockIsNotInserted", func(t *testing.T) {
		c := domain.Reduce(domain.Cart{}, domain.AddToCart{Item: lamp(0)})
		assert.True(t, c.Empty())
	})

	t.Run("DoesNotModifyInput", func(t *testing.T) {
		c := domain.Cart{Items: []domain.CartItem{lamp(5)}}
		_ = domain.Reduce(c, domain.AddToCart{Item: lamp(5)})
		assert.Equal(t, 1, c.Items[0].Quantity)
	})
}

func TestReduceUpdateQuantity(t *testing.T) {
	base := domain.Cart{Items: []domain.CartItem{lamp(5)}}

	tests := []struct {
		name     string
		quantity int
		want     int
		removed  bool
	}{
		{name: "WithinStock", quantity: 3, want: 3},
		{name: "AboveStock", quantity: 9, want: 5},
		{name: "Zero", quantity: 0, removed: true},
		{name: "Negative", quantity: -2, removed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.Reduce(base, domain.UpdateQuantity{ProductID: 1, Quantity: tt.quantity})
			if tt.removed {
				assert.True(t, c.Empty())
				return
			}
			assert.Equal(t, tt.want, c.Items[0].Quantity)
		})
	}

	t.Run("UnknownProduct", func(t *testing.T) {
		c := domain.Reduce(base, domain.UpdateQuantity{ProductID: 99, Quantity: 2})
		assert.Equal(t, base, c)
	})
}

func TestReduceRemoveAndClear(t *testing.T) {
	second := lamp(5)
	second.ProductID = 2
	c := domain.Cart{Items: []domain.CartItem{lamp(5), second}}

	removed := domain.Reduce(c, domain.RemoveFromCart{ProductID: 1})
	require.Len(t, removed.Items, 1)
	assert.Equal(t, int64(2), removed.Items[0].ProductID)

	cleared := domain.Reduce(c, domain.ClearCart{})
	assert.True(t, cleared.Empty())
	assert.Len(t, c.Items, 2)
}

func TestReduceSyncProduct(t *testing.T) {
	item := lamp(10)
	item.Quantity = 6
	c := domain.Cart{Items: []domain.CartItem{item}}

	t.Run("ReducesQuantityToStock", func(t *testing.T) {
		got := domain.Reduce(c, domain.SyncProduct{
			ProductID:       1,
			StockLimit:      4,
			Price:           12,
			DiscountedPrice: domain.SomePrice(9),
		})
		require.Len(t, got.Items, 1)
		assert.Equal(t, 4, got.Items[0].Quantity)
		assert.Equal(t, 4, got.Items[0].StockLimit)
		assert.Equal(t, domain.Price(9), got.Items[0].EffectivePrice())
	})

	t.Run("SoldOutRemovesLine", func(t *testing.T) {
		got := domain.Reduce(c, domain.SyncProduct{ProductID: 1, StockLimit: 0})
		assert.True(t, got.Empty())
	})
}

func TestCartTotals(t *testing.T) {
	discounted := lamp(5)
	discounted.ProductID = 2
	discounted.Quantity = 2
	discounted.DiscountedPrice = domain.SomePrice(7.5)

	c := domain.Cart{Items: []domain.CartItem{lamp(5), discounted}}
	assert.InDelta(t, 25.0, c.Total(), 1e-9)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, "USD", c.CurrencyCode())
	assert.Empty(t, domain.Cart{}.CurrencyCode())

	item, ok := c.Find(2)
	require.True(t, ok)
	assert.InDelta(t, 15.0, item.Subtotal(), 1e-9)

	_, ok = c.Find(3)
	assert.False(t, ok)
}

func TestItemFromProduct(t *testing.T) {
	p := domain.Product{
		ID:         7,
		Name:       "Chair",
		Price:      40,
		Stock:      3,
		SellerID:   9,
		SellerName: "Oak & Co",
		Currency:   domain.Currency{CurrencyCode: "EUR"},
	}
	item := domain.ItemFromProduct(p, 2)
	assert.Equal(t, domain.CartItem{
		ProductID:    7,
		Name:         "Chair",
		UnitPrice:    40,
		Quantity:     2,
		StockLimit:   3,
		SellerID:     9,
		SellerName:   "Oak & Co",
		CurrencyCode: "EUR",
	}, item)
}

// Any sequence of adds and quantity updates keeps every line within
// [1, StockLimit] and keeps product ids unique.
func TestReduceStockClampSequences(t *testing.T) {
	stock := map[int64]int{1: 0, 2: 1, 3: 3, 4: 7}

	for seed := range uint64(50) {
		t.Run(fmt.Sprintf("Seed%d", seed), func(t *testing.T) {
			rnd := rand.New(rand.NewPCG(seed, seed*31+7))
			var c domain.Cart

			for step := range 200 {
				id := int64(rnd.IntN(len(stock)) + 1)

				var a domain.Action
				if rnd.IntN(2) == 0 {
					item := lamp(stock[id])
					item.ProductID = id
					item.Quantity = rnd.IntN(10) - 2
					a = domain.AddToCart{Item: item}
				} else {
					a = domain.UpdateQuantity{ProductID: id, Quantity: rnd.IntN(12) - 2}
				}
				c = domain.Reduce(c, a)

				seen := make(map[int64]bool, len(c.Items))
				for _, item := range c.Items {
					require.False(t, seen[item.ProductID], "step %d: duplicate line %d", step, item.ProductID)
					seen[item.ProductID] = true
					require.GreaterOrEqual(t, item.Quantity, 1, "step %d: %+v after %#v", step, item, a)
					require.LessOrEqual(t, item.Quantity, item.StockLimit, "step %d: %+v after %#v", step, item, a)
				}
			}
		})
	}
}
