package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	image := &domain.ProductImage{Filename: "a.png", Content: strings.NewReader("png")}
	product := domain.NewProduct{
		Name: "Lamp", Price: 10, Stock: 1, CategoryID: 1, CurrencyID: 1, Image: image,
	}

	tests := []struct {
		name  string
		v     interface{ Validate() error }
		field string
	}{
		{"CredentialsOK", domain.Credentials{Email: "a@b.io", Password: "x"}, ""},
		{"CredentialsNoEmail", domain.Credentials{Password: "x"}, "email"},
		{"CredentialsNoPassword", domain.Credentials{Email: "a@b.io"}, "password"},
		{"RegistrationOK", domain.Registration{Email: "a@b.io", Username: "a", Password: "x"}, ""},
		{"RegistrationBadEmail", domain.Registration{Email: "nope", Username: "a", Password: "x"}, "email"},
		{"RegistrationNoUsername", domain.Registration{Email: "a@b.io", Password: "x"}, "username"},
		{"OTPNoCode", domain.PasswordOTP{Email: "a@b.io", NewPassword: "x"}, "otp"},
		{"PasswordMismatch", domain.PasswordChange{Current: "a", New: "b", Confirm: "c"}, "confirm_password"},
		{"PasswordOK", domain.PasswordChange{Current: "a", New: "b", Confirm: "b"}, ""},
		{"CategoryNoName", domain.NewCategory{Name: "  "}, "name"},
		{"CurrencyMissingField", domain.NewCurrency{CountryName: "Kenya", CountryCode: "KE", CurrencyCode: "KES"}, "currency_name"},
		{"ProductOK", product, ""},
		{"ProductNoPrice", domain.NewProduct{Name: "Lamp", CategoryID: 1, CurrencyID: 1}, "price"},
		{"ProductBadDiscount", domain.NewProduct{Name: "Lamp", Price: 1, DiscountPercent: 120, CategoryID: 1, CurrencyID: 1}, "discount_percent"},
		{"ProductEmptyImage", domain.NewProduct{Name: "Lamp", Price: 1, CategoryID: 1, CurrencyID: 1, Image: &domain.ProductImage{}}, "image"},
		{"OrderOK", domain.OrderRequest{DeliveryLocation: "Main st", Landmark: "Mall", PaymentType: domain.PaymentCard}, ""},
		{"OrderNoLandmark", domain.OrderRequest{DeliveryLocation: "Main st", PaymentType: domain.PaymentCash}, "landmark"},
		{"OrderBadPayment", domain.OrderRequest{DeliveryLocation: "Main st", Landmark: "Mall", PaymentType: "crypto"}, "payment_type"},
		{"FiltersNegativeCategory", domain.ProductFilters{CategoryID: -1}, "category_id"},
		{"FiltersOK", domain.ProductFilters{Search: "lamp", CategoryID: 3}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrValidation)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestRole(t *testing.T) {
	r, ok := domain.ParseRole(" seller ")
	require.True(t, ok)
	assert.Equal(t, domain.RoleSeller, r)

	_, ok = domain.ParseRole("guest")
	assert.False(t, ok)

	assert.True(t, domain.Role("admin").Allowed(domain.RoleSeller, domain.RoleAdmin))
	assert.False(t, domain.RoleBuyer.Allowed(domain.RoleSeller, domain.RoleAdmin))
	assert.False(t, domain.Role("").Allowed(domain.RoleBuyer))
}

func TestUserMessage(t *testing.T) {
	apiErr := &domain.APIError{Status: 400, Detail: "name: taken", Kind: domain.ErrValidation}
	assert.Equal(t, "name: taken", domain.UserMessage(apiErr, "fallback"))
	assert.ErrorIs(t, apiErr, domain.ErrValidation)

	assert.Equal(t, "email: is required",
		domain.UserMessage(domain.NewValidationError("email", "is required"), "fallback"))
	assert.Contains(t, domain.UserMessage(domain.ErrSessionExpired, "fallback"), "expired")
	assert.Contains(t, domain.UserMessage(&domain.APIError{Status: 502, Kind: domain.ErrNetwork}, "fallback"), "Network")
	assert.Equal(t, "fallback", domain.UserMessage(errors.New("boom"), "fallback"))
}

func TestStockChangedError(t *testing.T) {
	err := error(&domain.StockChangedError{Adjustments: []domain.StockAdjustment{
		{ProductID: 1, Name: "Lamp", WasQuantity: 3, NowQuantity: 1, AvailableNow: 1},
		{ProductID: 2, Name: "Chair", WasQuantity: 1, NowQuantity: 0},
	}})

	require.ErrorIs(t, err, domain.ErrStockChanged)
	assert.Contains(t, err.Error(), `"Lamp" reduced 3 -> 1`)
	assert.Contains(t, err.Error(), `"Chair" sold out`)
}

func TestNewOrder(t *testing.T) {
	item := lamp(5)
	item.SellerID = 4
	item.Quantity = 2
	item.DiscountedPrice = domain.SomePrice(8)

	o := domain.NewOrder(domain.OrderRequest{
		DeliveryLocation: " Main st ",
		Landmark:         "Mall",
		PaymentType:      domain.PaymentMobile,
	}, domain.Cart{Items: []domain.CartItem{item}}, "key-1")

	assert.Equal(t, "Main st", o.DeliveryLocation)
	assert.Equal(t, "key-1", o.IdempotencyKey)
	assert.Equal(t, []domain.Purchase{{ProductID: 1, SellerID: 4, Price: 8, Quantity: 2}}, o.Purchases)
}
