package domain

import "slices"

// A CartItem is one line of the cart.
//
// 1 <= Quantity <= StockLimit holds for every item stored in a [Cart].
type CartItem struct {
	ProductID       int64
	Name            string
	UnitPrice       Price
	DiscountedPrice OptionalPrice
	Quantity        int
	StockLimit      int
	SellerID        int64
	SellerName      string
	CurrencyCode    string
}

func (i CartItem) EffectivePrice() Price {
	return effectivePrice(i.UnitPrice, i.DiscountedPrice)
}

func (i CartItem) Subtotal() float64 {
	return i.EffectivePrice().Float() * float64(i.Quantity)
}

// ItemFromProduct makes a cart line for quantity units of p.
func ItemFromProduct(p Product, quantity int) CartItem {
	return CartItem{
		ProductID:       p.ID,
		Name:            p.Name,
		UnitPrice:       p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Quantity:        quantity,
		StockLimit:      p.Stock,
		SellerID:        p.SellerID,
		SellerName:      p.SellerName,
		CurrencyCode:    p.Currency.CurrencyCode,
	}
}

// Cart is an ordered sequence of items with unique product ids.
type Cart struct {
	Items []CartItem
}

func (c Cart) Find(productID int64) (CartItem, bool) {
	i := c.index(productID)
	if i < 0 {
		return CartItem{}, false
	}
	return c.Items[i], true
}

func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// Count returns the number of units in the cart.
func (c Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CurrencyCode is the currency of the first line, empty for an empty cart.
func (c Cart) CurrencyCode() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].CurrencyCode
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

func (c Cart) Clone() Cart {
	return Cart{Items: slices.Clone(c.Items)}
}

func (c Cart) index(productID int64) int {
	return slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.ProductID == productID
	})
}

// An Action is a cart state transition.
type Action interface {
	apply(Cart) Cart
}

// Reduce returns the cart produced by applying a to c.
//
// c is never modified.
func Reduce(c Cart, a Action) Cart {
	if a == nil {
		return c.Clone()
	}
	return a.apply(c.Clone())
}

// AddToCart adds one unit of an item already in the cart while stock allows,
// or inserts Item with its requested quantity capped by stock.
type AddToCart struct {
	Item CartItem
}

func (a AddToCart) apply(c Cart) Cart {
	if i := c.index(a.Item.ProductID); i >= 0 {
		if c.Items[i].Quantity < c.Items[i].StockLimit {
			c.Items[i].Quantity++
		}
		return c
	}

	item := a.Item
	if item.StockLimit < 1 {
		return c
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.Quantity = min(item.Quantity, item.StockLimit)
	c.Items = append(c.Items, item)
	return c
}

type RemoveFromCart struct {
	ProductID int64
}

func (a RemoveFromCart) apply(c Cart) Cart {
	c.Items = slices.DeleteFunc(c.Items, func(item CartItem) bool {
		return item.ProductID == a.ProductID
	})
	return c
}

// UpdateQuantity sets the quantity clamped to [0, StockLimit].
// A clamped quantity of 0 removes the line.
type UpdateQuantity struct {
	ProductID int64
	Quantity  int
}

func (a UpdateQuantity) apply(c Cart) Cart {
	i := c.index(a.ProductID)
	if i < 0 {
		return c
	}
	q := clamp(a.Quantity, 0, c.Items[i].StockLimit)
	if q == 0 {
		return RemoveFromCart{a.ProductID}.apply(c)
	}
	c.Items[i].Quantity = q
	return c
}

type ClearCart struct{}

func (ClearCart) apply(Cart) Cart {
	return Cart{Items: []CartItem{}}
}

// SyncProduct refreshes a line with the catalog's current stock and prices.
type SyncProduct struct {
	ProductID       int64
	StockLimit      int
	Price           Price
	DiscountedPrice OptionalPrice
}

func (a SyncProduct) apply(c Cart) Cart {
	i := c.index(a.ProductID)
	if i < 0 {
		return c
	}
	stock := max(a.StockLimit, 0)
	if stock == 0 {
		return RemoveFromCart{a.ProductID}.apply(c)
	}
	c.Items[i].StockLimit = stock
	c.Items[i].UnitPrice = a.Price
	c.Items[i].DiscountedPrice = a.DiscountedPrice
	c.Items[i].Quantity = clamp(c.Items[i].Quantity, 1, stock)
	return c
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
