package domain

import "time"

// A SearchEvent records a catalog query made by a storefront client.
type SearchEvent struct {
	ClientID   string
	Role       Role
	Search     string
	CategoryID int64
	Sort       Sort
	Total      int
	OccurredAt time.Time
}

type OrderEvent struct {
	ClientID     string
	OrderCode    string
	Purchases    []Purchase
	Total        float64
	CurrencyCode string
	OccurredAt   time.Time
}
