package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	credentialsJSON struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginJSON struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		Role    string `json:"role"`
	}

	refreshRequestJSON struct {
		Refresh string `json:"refresh"`
	}

	refreshResponseJSON struct {
		Access string `json:"access"`
	}

	registrationJSON struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	emailJSON struct {
		Email string `json:"email"`
	}

	passwordOTPJSON struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}

	passwordChangeJSON struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
)

type (
	currencyJSON struct {
		ID           int64  `json:"id,omitempty"`
		CountryCode  string `json:"country_code"`
		CountryName  string `json:"country_name"`
		CurrencyCode string `json:"currency_code"`
		CurrencyName string `json:"currency_name"`
	}

	categoryJSON struct {
		ID          int64  `json:"id,omitempty"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	productJSON struct {
		ID              int64                `json:"id"`
		Name            string               `json:"name"`
		Description     string               `json:"description"`
		Price           domain.OptionalPrice `json:"price"`
		InitialPrice    domain.OptionalPrice `json:"initial_price"`
		NewPrice        domain.OptionalPrice `json:"new_price"`
		DiscountPercent domain.Price         `json:"discount_percent"`
		Currency        *currencyJSON        `json:"currency"`
		ImageURL        string               `json:"image_url"`
		Image           string               `json:"image"`
		Tags            tagList              `json:"tags"`
		Stock           int                  `json:"stock"`
		Rating          domain.Price         `json:"rating"`
		Reviews         int                  `json:"reviews"`
		Category        categoryRef          `json:"category"`
		Seller          idRef                `json:"seller"`
		SellerName      string               `json:"seller_name"`
		CreatedAt       time.Time            `json:"created_at"`
	}

	productListJSON struct {
		Results []productJSON `json:"results"`
		Total   *int          `json:"total"`
		Count   *int          `json:"count"`
	}

	// categoryListJSON is a plain array, or a paginated object when the
	// gateway paginates categories.
	categoryListJSON struct {
		Results []categoryJSON `json:"results"`
	}

	purchaseJSON struct {
		Product  int64        `json:"product"`
		Seller   int64        `json:"seller"`
		Price    domain.Price `json:"price"`
		Quantity int          `json:"quantity"`
	}

	orderJSON struct {
		DeliveryLocation string         `json:"delivery_location"`
		Landmark         string         `json:"landmark"`
		PaymentType      string         `json:"payment_type"`
		Purchases        []purchaseJSON `json:"purchases"`
	}

	orderCreatedJSON struct {
		OrderCode string `json:"order_code"`
	}
)

// tagList accepts tags as a JSON array or as a comma separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) != 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = splitTags(s)
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for tag := range strings.SplitSeq(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// idRef is a reference rendered as a number, a numeric string,
// an object with an "id" field or null.
type idRef int64

func (r *idRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*r = 0
		return nil
	case data[0] == '{':
		var obj struct {
			ID idRef `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = obj.ID
		return nil
	}

	n, err := strconv.ParseInt(string(bytes.Trim(data, `"`)), 10, 64)
	if err != nil {
		*r = 0
		return nil
	}
	*r = idRef(n)
	return nil
}

// categoryRef is a nested category object or a bare category id.
type categoryRef domain.Category

func (c *categoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '{' {
		var obj categoryJSON
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*c = categoryRef(obj.toDomain())
		return nil
	}
	var id idRef
	if err := id.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = categoryRef{ID: int64(id)}
	return nil
}

func (p productJSON) toDomain() domain.Product {
	listPrice := p.Price
	if !listPrice.Set {
		listPrice = p.InitialPrice
	}

	var currency domain.Currency
	if p.Currency != nil {
		currency = p.Currency.toDomain()
	}

	image := p.ImageURL
	if image == "" {
		image = p.Image
	}

	return domain.Product{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           listPrice.Price,
		DiscountedPrice: p.NewPrice,
		DiscountPercent: int(p.DiscountPercent.Float()),
		Currency:        currency,
		ImageURL:        image,
		Tags:            []string(p.Tags),
		Stock:           max(p.Stock, 0),
		Rating:          p.Rating.Float(),
		Reviews:         p.Reviews,
		Category:        domain.Category(p.Category),
		SellerID:        int64(p.Seller),
		SellerName:      p.SellerName,
		CreatedAt:       p.CreatedAt,
	}
}

func (l productListJSON) toDomain() domain.ProductPage {
	page := domain.ProductPage{Results: make([]domain.Product, len(l.Results))}
	for i, p := range l.Results {
		page.Results[i] = p.toDomain()
	}
	switch {
	case l.Total != nil:
		page.Total = *l.Total
	case l.Count != nil:
		page.Total = *l.Count
	default:
		page.Total = len(page.Results)
	}
	return page
}

// UnmarshalJSON also accepts an unpaginated plain array of products.
func (l *productListJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '[' {
		var results []productJSON
		if err := json.Unmarshal(data, &results); err != nil {
			return err
		}
		*l = productListJSON{Results: results}
		return nil
	}
	type plain productListJSON
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = productListJSON(v)
	return nil
}

func (c currencyJSON) toDomain() domain.Currency {
	return domain.Currency{
		ID:           c.ID,
		CountryCode:  c.CountryCode,
		CountryName:  c.CountryName,
		CurrencyCode: c.CurrencyCode,
		CurrencyName: c.CurrencyName,
	}
}

func (c categoryJSON) toDomain() domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (l categoryListJSON) toDomain() []domain.Category {
	categories := make([]domain.Category, len(l.Results))
	for i, c := range l.Results {
		categories[i] = c.toDomain()
	}
	return categories
}

func (l *categoryListJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Results)
	}
	type plain categoryListJSON
	return json.Unmarshal(data, (*plain)(l))
}

func fromOrder(o domain.Order) orderJSON {
	v := orderJSON{
		DeliveryLocation: o.DeliveryLocation,
		Landmark:         o.Landmark,
		PaymentType:      string(o.PaymentType),
		Purchases:        make([]purchaseJSON, len(o.Purchases)),
	}
	for i, p := range o.Purchases {
		v.Purchases[i] = purchaseJSON{
			Product:  p.ProductID,
			Seller:   p.SellerID,
			Price:    p.Price,
			Quantity: p.Quantity,
		}
	}
	return v
}
