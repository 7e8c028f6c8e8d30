package domain

import "time"

type (
	Product struct {
		ID              int64
		Name            string
		Description     string
		Price           Price
		DiscountedPrice OptionalPrice
		DiscountPercent int
		Currency        Currency
		ImageURL        string
		Tags            []string
		Stock           int
		Rating          float64
		Reviews         int
		Category        Category
		SellerID        int64
		SellerName      string
		CreatedAt       time.Time
	}

	Currency struct {
		ID           int64
		CountryCode  string
		CountryName  string
		CurrencyCode string
		CurrencyName string
	}

	Category struct {
		ID          int64
		Name        string
		Description string
	}
)

// EffectivePrice is the discounted price when the catalog offers one,
// the list price otherwise.
func (p Product) EffectivePrice() Price {
	return effectivePrice(p.Price, p.DiscountedPrice)
}

func effectivePrice(list Price, discounted OptionalPrice) Price {
	if discounted.Set && discounted.Price.Float() > 0 {
		return discounted.Price
	}
	return Price(list.Float())
}

type ProductPage struct {
	Results []Product
	Total   int
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
)

func (s Sort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// Ordering returns the catalog ordering parameter for s.
func (s Sort) Ordering() string {
	switch s {
	case SortPriceAsc:
		return "price"
	case SortPriceDesc:
		return "-price"
	default:
		return "-created_at"
	}
}

// ProductFilters narrows the catalog to what the gateway can filter on:
// a full-text search over name and description, and a category.
// Zero values mean "not filtered".
type ProductFilters struct {
	Search     string
	CategoryID int64
}

func (f ProductFilters) Validate() error {
	if f.CategoryID < 0 {
		return NewValidationError("category_id", "must not be negative")
	}
	return nil
}

type ProductQuery struct {
	Page    int
	Filters ProductFilters
	Sort    Sort
}
