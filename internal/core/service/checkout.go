package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.OrderPlacer = (*Checkout)(nil)

// A Checkout turns the cart into an order.
//
// The cart is re-validated against the catalog's current stock first, since
// stock limits in the cart are only a snapshot taken when items were added.
type Checkout struct {
	cart    port.CartManager
	catalog port.CatalogGateway
	orders  port.OrderGateway
	auth    port.Authorizer
	events  emitter

	// Serializes placements so a double submit cannot order the cart twice.
	mu sync.Mutex
}

func NewCheckout(
	cart port.CartManager,
	catalog port.CatalogGateway,
	orders port.OrderGateway,
	auth port.Authorizer,
	events port.EventsProducer,
	clientID string,
	opts ...EventOpt,
) *Checkout {
	return &Checkout{
		cart:    cart,
		catalog: catalog,
		orders:  orders,
		auth:    auth,
		events:  newEmitter(events, clientID, opts...),
	}
}

func (c *Checkout) PlaceOrder(
	ctx context.Context, r domain.OrderRequest,
) (domain.OrderConfirmation, error) {
	const op = "Checkout.PlaceOrder"
	log := slog.With("op", op)

	if !c.auth.Role().Allowed(domain.RoleBuyer) {
		err := &domain.APIError{
			Kind:   domain.ErrForbidden,
			Detail: "You need to log in as a buyer to place an order.",
		}
		return domain.OrderConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.Validate(); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cart.Snapshot().Empty() {
		err := domain.NewValidationError("cart", "is empty")
		return domain.OrderConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.revalidate(ctx); err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	cart := c.cart.Snapshot()
	order := domain.NewOrder(r, cart, uuid.NewString())

	var code string
	err := c.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		code, err = c.orders.PlaceOrder(ctx, token, order)
		return err
	})
	if err != nil {
		log.Error("failed to place order", "err", err)
		return domain.OrderConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	conf := domain.OrderConfirmation{
		OrderCode:    code,
		Total:        cart.Total(),
		CurrencyCode: cart.CurrencyCode(),
		Items:        cart.Count(),
	}
	log.Info("order placed", "orderCode", code, "items", conf.Items)

	// The order exists now; the cart is cleared even if the caller gave up.
	_, clearErr := c.cart.Dispatch(context.WithoutCancel(ctx), domain.ClearCart{})
	c.emitOrder(ctx, order, conf)

	if clearErr != nil {
		log.Error("order placed but cart not cleared", "orderCode", code, "err", clearErr)
		return conf, fmt.Errorf("%s: order %s placed: %w", op, code, clearErr)
	}
	return conf, nil
}

// revalidate syncs every cart line with the catalog and reports the lines
// whose quantity had to shrink.
func (c *Checkout) revalidate(ctx context.Context) error {
	var adjustments []domain.StockAdjustment

	for _, item := range c.cart.Snapshot().Items {
		var p domain.Product
		err := c.auth.Authorized(ctx, func(ctx context.Context, token string) error {
			var err error
			p, err = c.catalog.GetProduct(ctx, token, item.ProductID)
			return err
		})
		if errors.Is(err, domain.ErrNotFound) {
			p, err = domain.Product{ID: item.ProductID}, nil
		}
		if err != nil {
			return err
		}

		after, err := c.cart.Dispatch(ctx, domain.SyncProduct{
			ProductID:       item.ProductID,
			StockLimit:      p.Stock,
			Price:           p.Price,
			DiscountedPrice: p.DiscountedPrice,
		})
		if err != nil {
			return err
		}

		var now int
		if synced, ok := after.Find(item.ProductID); ok {
			now = synced.Quantity
		}
		if now < item.Quantity {
			adjustments = append(adjustments, domain.StockAdjustment{
				ProductID:    item.ProductID,
				Name:         item.Name,
				WasQuantity:  item.Quantity,
				NowQuantity:  now,
				AvailableNow: max(p.Stock, 0),
			})
		}
	}

	if len(adjustments) != 0 {
		return &domain.StockChangedError{Adjustments: adjustments}
	}
	return nil
}

func (c *Checkout) emitOrder(
	ctx context.Context, o domain.Order, conf domain.OrderConfirmation,
) {
	const op = "Checkout.emitOrder"

	evt := domain.OrderEvent{
		ClientID:     c.events.clientID,
		OrderCode:    conf.OrderCode,
		Purchases:    o.Purchases,
		Total:        conf.Total,
		CurrencyCode: conf.CurrencyCode,
		OccurredAt:   time.Now().UTC(),
	}
	c.events.send(ctx, op, func(ctx context.Context, p port.EventsProducer) error {
		return p.ProduceOrder(ctx, evt)
	})
}
