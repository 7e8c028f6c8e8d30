package httphandler

import (
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
)

type ErrorResponse struct {
	Error       string       `json:"error"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`
}

type Adjustment struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	WasQuantity  int    `json:"was_quantity"`
	NowQuantity  int    `json:"now_quantity"`
	AvailableNow int    `json:"available_now"`
	Removed      bool   `json:"removed"`
}

type (
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	Session struct {
		Authenticated bool   `json:"authenticated"`
		Role          string `json:"role,omitempty"`
		Status        string `json:"status"`
		LastError     string `json:"last_error,omitempty"`
	}
)

type (
	Currency struct {
		ID           int64  `json:"id"`
		CountryCode  string `json:"country_code"`
		CountryName  string `json:"country_name"`
		CurrencyCode string `json:"currency_code"`
		CurrencyName string `json:"currency_name"`
	}

	Category struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	Product struct {
		ID              int64                `json:"id"`
		Name            string               `json:"name"`
		Description     string               `json:"description"`
		Price           domain.Price         `json:"price"`
		DiscountedPrice domain.OptionalPrice `json:"discounted_price"`
		EffectivePrice  domain.Price         `json:"effective_price"`
		DiscountPercent int                  `json:"discount_percent"`
		Currency        Currency             `json:"currency"`
		ImageURL        string               `json:"image_url"`
		Tags            []string             `json:"tags"`
		Stock           int                  `json:"stock"`
		Rating          float64              `json:"rating"`
		Reviews         int                  `json:"reviews"`
		Category        Category             `json:"category"`
		SellerID        int64                `json:"seller_id"`
		SellerName      string               `json:"seller_name"`
		CreatedAt       time.Time            `json:"created_at"`
	}
)

type (
	CartItem struct {
		ProductID       int64                `json:"product_id"`
		Name            string               `json:"name"`
		UnitPrice       domain.Price         `json:"unit_price"`
		DiscountedPrice domain.OptionalPrice `json:"discounted_price"`
		EffectivePrice  domain.Price         `json:"effective_price"`
		Quantity        int                  `json:"quantity"`
		StockLimit      int                  `json:"stock_limit"`
		Subtotal        float64              `json:"subtotal"`
		SellerID        int64                `json:"seller_id"`
		SellerName      string               `json:"seller_name"`
		CurrencyCode    string               `json:"currency_code"`
	}

	Cart struct {
		Items        []CartItem `json:"items"`
		Total        float64    `json:"total"`
		Count        int        `json:"count"`
		CurrencyCode string     `json:"currency_code"`
	}

	AddCartItem struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}

	UpdateCartItem struct {
		Quantity int `json:"quantity"`
	}
)

type (
	FeedQuery struct {
		Search     string `json:"search"`
		CategoryID int64  `json:"category_id"`
		Sort       string `json:"sort"`
	}

	Feed struct {
		Items      []Product `json:"items"`
		Page       int       `json:"page"`
		HasMore    bool      `json:"has_more"`
		TotalCount int       `json:"total_count"`
		Status     string    `json:"status"`
		LastError  string    `json:"last_error,omitempty"`
		Query      FeedQuery `json:"query"`
	}

	FeedMore struct {
		Fetched bool `json:"fetched"`
		Feed    Feed `json:"feed"`
	}
)

type (
	OrderRequest struct {
		DeliveryLocation string `json:"delivery_location"`
		Landmark         string `json:"landmark"`
		PaymentType      string `json:"payment_type"`
	}

	OrderConfirmation struct {
		OrderCode    string  `json:"order_code"`
		Total        float64 `json:"total"`
		CurrencyCode string  `json:"currency_code"`
		Items        int     `json:"items"`
	}
)

type (
	Registration struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	PasswordOTPRequest struct {
		Email string `json:"email"`
	}

	PasswordOTP struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}

	PasswordChange struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}

	NewCategory struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	NewCurrency struct {
		CountryName  string `json:"country_name"`
		CountryCode  string `json:"country_code"`
		CurrencyCode string `json:"currency_code"`
		CurrencyName string `json:"currency_name"`
	}

	NewProduct struct {
		Name            string   `json:"name"`
		Description     string   `json:"description"`
		Price           float64  `json:"price"`
		DiscountPercent int      `json:"discount_percent"`
		Stock           int      `json:"stock"`
		Tags            []string `json:"tags"`
		CategoryID      int64    `json:"category_id"`
		CurrencyID      int64    `json:"currency_id"`
	}
)

func fromSession(s domain.Session) Session {
	return Session{
		Authenticated: s.Authenticated(),
		Role:          string(s.Role),
		Status:        string(s.Status),
		LastError:     s.LastError,
	}
}

func fromProduct(p domain.Product) Product {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return Product{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		EffectivePrice:  p.EffectivePrice(),
		DiscountPercent: p.DiscountPercent,
		Currency: Currency{
			ID:           p.Currency.ID,
			CountryCode:  p.Currency.CountryCode,
			CountryName:  p.Currency.CountryName,
			CurrencyCode: p.Currency.CurrencyCode,
			CurrencyName: p.Currency.CurrencyName,
		},
		ImageURL:   p.ImageURL,
		Tags:       tags,
		Stock:      p.Stock,
		Rating:     p.Rating,
		Reviews:    p.Reviews,
		Category:   fromCategory(p.Category),
		SellerID:   p.SellerID,
		SellerName: p.SellerName,
		CreatedAt:  p.CreatedAt,
	}
}

func fromCategory(c domain.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func fromCurrency(c domain.Currency) Currency {
	return Currency{
		ID:           c.ID,
		CountryCode:  c.CountryCode,
		CountryName:  c.CountryName,
		CurrencyCode: c.CurrencyCode,
		CurrencyName: c.CurrencyName,
	}
}

func fromCart(c domain.Cart) Cart {
	items := make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			DiscountedPrice: item.DiscountedPrice,
			EffectivePrice:  item.EffectivePrice(),
			Quantity:        item.Quantity,
			StockLimit:      item.StockLimit,
			Subtotal:        item.Subtotal(),
			SellerID:        item.SellerID,
			SellerName:      item.SellerName,
			CurrencyCode:    item.CurrencyCode,
		}
	}
	return Cart{
		Items:        items,
		Total:        c.Total(),
		Count:        c.Count(),
		CurrencyCode: c.CurrencyCode(),
	}
}

func fromFeed(s domain.FeedState) Feed {
	items := make([]Product, len(s.Items))
	for i, p := range s.Items {
		items[i] = fromProduct(p)
	}
	return Feed{
		Items:      items,
		Page:       s.Page,
		HasMore:    s.HasMore,
		TotalCount: s.TotalCount,
		Status:     string(s.Status),
		LastError:  s.LastError,
		Query: FeedQuery{
			Search:     s.Filters.Search,
			CategoryID: s.Filters.CategoryID,
			Sort:       string(s.Sort),
		},
	}
}

func (q FeedQuery) toDomain() (domain.ProductFilters, domain.Sort) {
	return domain.ProductFilters{
		Search:     q.Search,
		CategoryID: q.CategoryID,
	}, domain.Sort(q.Sort)
}

func fromAdjustments(as []domain.StockAdjustment) []Adjustment {
	out := make([]Adjustment, len(as))
	for i, a := range as {
		out[i] = Adjustment{
			ProductID:    a.ProductID,
			Name:         a.Name,
			WasQuantity:  a.WasQuantity,
			NowQuantity:  a.NowQuantity,
			AvailableNow: a.AvailableNow,
			Removed:      a.Removed(),
		}
	}
	return out
}
