package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CartManager = (*Cart)(nil)

// cartItemRecord is the persisted form of a cart line.
type cartItemRecord struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Price        domain.Price         `json:"price"`
	NewPrice     domain.OptionalPrice `json:"new_price"`
	Quantity     int                  `json:"quantity"`
	Stock        int                  `json:"stock"`
	Seller       int64                `json:"seller"`
	SellerName   string               `json:"seller_name,omitempty"`
	CurrencyCode string               `json:"currency_code,omitempty"`
}

// A Cart owns the shopping cart and writes every change through to the
// state store before the change becomes visible.
type Cart struct {
	store port.StateStore

	mu   sync.Mutex
	cart domain.Cart
}

func NewCart(store port.StateStore) *Cart {
	return &Cart{
		store: store,
		cart:  domain.Cart{Items: []domain.CartItem{}},
	}
}

// Load replaces the in-memory cart with the persisted one.
//
// A malformed persisted cart is discarded.
func (c *Cart) Load(ctx context.Context) error {
	const op = "Cart.Load"
	log := slog.With("op", op)

	data, err := c.store.Get(ctx, KeyCart)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var records []cartItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn("discarding malformed persisted cart", "err", err)
		return nil
	}

	// Replaying through the reducer drops lines that break stock bounds.
	restored := domain.Cart{Items: []domain.CartItem{}}
	for _, r := range records {
		if _, dup := restored.Find(r.ID); dup {
			continue
		}
		restored = domain.Reduce(restored, domain.AddToCart{Item: fromRecord(r)})
	}

	c.mu.Lock()
	c.cart = restored
	c.mu.Unlock()

	log.Info("cart restored", "lines", len(restored.Items))
	return nil
}

func (c *Cart) Snapshot() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Clone()
}

// Dispatch applies a to the cart and persists the result.
//
// If persisting fails the cart is left unchanged and the error is returned.
func (c *Cart) Dispatch(ctx context.Context, a domain.Action) (domain.Cart, error) {
	return c.dispatchFn(ctx, func(domain.Cart) domain.Action { return a })
}

func (c *Cart) dispatchFn(
	ctx context.Context, actionFn func(domain.Cart) domain.Action,
) (domain.Cart, error) {
	const op = "Cart.Dispatch"

	c.mu.Lock()
	defer c.mu.Unlock()

	next := domain.Reduce(c.cart, actionFn(c.cart))

	records := make([]cartItemRecord, len(next.Items))
	for i, item := range next.Items {
		records[i] = toRecord(item)
	}
	if err := storeJSON(ctx, c.store, KeyCart, records); err != nil {
		return c.cart.Clone(), fmt.Errorf("%s: %w", op, err)
	}

	c.cart = next
	return next.Clone(), nil
}

func (c *Cart) Add(ctx context.Context, p domain.Product, quantity int) (domain.Cart, error) {
	return c.Dispatch(ctx, domain.AddToCart{Item: domain.ItemFromProduct(p, quantity)})
}

func (c *Cart) Remove(ctx context.Context, productID int64) (domain.Cart, error) {
	return c.Dispatch(ctx, domain.RemoveFromCart{ProductID: productID})
}

func (c *Cart) SetQuantity(ctx context.Context, productID int64, quantity int) (domain.Cart, error) {
	return c.Dispatch(ctx, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
}

// Increment adds a unit to a line, never beyond its stock.
func (c *Cart) Increment(ctx context.Context, productID int64) (domain.Cart, error) {
	return c.step(ctx, productID, 1)
}

// Decrement takes a unit from a line and removes the line at zero.
func (c *Cart) Decrement(ctx context.Context, productID int64) (domain.Cart, error) {
	return c.step(ctx, productID, -1)
}

func (c *Cart) step(ctx context.Context, productID int64, delta int) (domain.Cart, error) {
	return c.dispatchFn(ctx, func(cur domain.Cart) domain.Action {
		item, ok := cur.Find(productID)
		if !ok {
			return domain.RemoveFromCart{ProductID: productID}
		}
		return domain.UpdateQuantity{ProductID: productID, Quantity: item.Quantity + delta}
	})
}

func (c *Cart) Clear(ctx context.Context) (domain.Cart, error) {
	return c.Dispatch(ctx, domain.ClearCart{})
}

func (c *Cart) Total() float64 {
	return c.Snapshot().Total()
}

func toRecord(item domain.CartItem) cartItemRecord {
	return cartItemRecord{
		ID:           item.ProductID,
		Name:         item.Name,
		Price:        item.UnitPrice,
		NewPrice:     item.DiscountedPrice,
		Quantity:     item.Quantity,
		Stock:        item.StockLimit,
		Seller:       item.SellerID,
		SellerName:   item.SellerName,
		CurrencyCode: item.CurrencyCode,
	}
}

func fromRecord(r cartItemRecord) domain.CartItem {
	return domain.CartItem{
		ProductID:       r.ID,
		Name:            r.Name,
		UnitPrice:       r.Price,
		DiscountedPrice: r.NewPrice,
		Quantity:        r.Quantity,
		StockLimit:      r.Stock,
		SellerID:        r.Seller,
		SellerName:      r.SellerName,
		CurrencyCode:    r.CurrencyCode,
	}
}
