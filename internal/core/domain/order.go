package domain

import (
	"slices"
	"strings"
)

type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCard   PaymentType = "card"
	PaymentMobile PaymentType = "mobile"
)

func (p PaymentType) Valid() bool {
	return slices.Contains(
		[]PaymentType{PaymentCash, PaymentCard, PaymentMobile}, p,
	)
}

type OrderRequest struct {
	DeliveryLocation string
	Landmark         string
	PaymentType      PaymentType
}

func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.DeliveryLocation) == "" {
		return NewValidationError("delivery_location", "is required")
	}
	if strings.TrimSpace(r.Landmark) == "" {
		return NewValidationError("landmark", "is required")
	}
	if !r.PaymentType.Valid() {
		return NewValidationError("payment_type", "must be cash, card or mobile")
	}
	return nil
}

type Purchase struct {
	ProductID int64
	SellerID  int64
	Price     Price
	Quantity  int
}

type Order struct {
	DeliveryLocation string
	Landmark         string
	PaymentType      PaymentType
	Purchases        []Purchase
	IdempotencyKey   string
}

// NewOrder builds the order for the cart lines at their effective prices.
func NewOrder(r OrderRequest, c Cart, idempotencyKey string) Order {
	o := Order{
		DeliveryLocation: strings.TrimSpace(r.DeliveryLocation),
		Landmark:         strings.TrimSpace(r.Landmark),
		PaymentType:      r.PaymentType,
		Purchases:        make([]Purchase, 0, len(c.Items)),
		IdempotencyKey:   idempotencyKey,
	}
	for _, item := range c.Items {
		o.Purchases = append(o.Purchases, Purchase{
			ProductID: item.ProductID,
			SellerID:  item.SellerID,
			Price:     item.EffectivePrice(),
			Quantity:  item.Quantity,
		})
	}
	return o
}

type OrderConfirmation struct {
	OrderCode    string
	Total        float64
	CurrencyCode string
	Items        int
}
