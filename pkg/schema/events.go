package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ClientSearchSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront.events",
	"name": "ClientSearchEventV1",
	"fields": [
		{"name": "client_id", "type": "string"},
		{"name": "role", "type": "string"},
		{"name": "search", "type": "string"},
		{"name": "category_id", "type": "long"},
		{"name": "sort", "type": "string"},
		{"name": "total", "type": "long"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

const OrderPlacedSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront.events",
	"name": "OrderPlacedEventV1",
	"fields": [
		{"name": "client_id", "type": "string"},
		{"name": "order_code", "type": "string"},
		{"name": "purchases", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "PurchaseV1",
				"fields": [
					{"name": "product_id", "type": "long"},
					{"name": "seller_id", "type": "long"},
					{"name": "price", "type": "double"},
					{"name": "quantity", "type": "int"}
				]
			}
		}},
		{"name": "total", "type": "double"},
		{"name": "currency_code", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	ClientSearchEventV1 struct {
		ClientID   string    `avro:"client_id"`
		Role       string    `avro:"role"`
		Search     string    `avro:"search"`
		CategoryID int64     `avro:"category_id"`
		Sort       string    `avro:"sort"`
		Total      int64     `avro:"total"`
		OccurredAt time.Time `avro:"occurred_at"`
	}

	OrderPlacedEventV1 struct {
		ClientID     string       `avro:"client_id"`
		OrderCode    string       `avro:"order_code"`
		Purchases    []PurchaseV1 `avro:"purchases"`
		Total        float64      `avro:"total"`
		CurrencyCode string       `avro:"currency_code"`
		OccurredAt   time.Time    `avro:"occurred_at"`
	}

	PurchaseV1 struct {
		ProductID int64   `avro:"product_id"`
		SellerID  int64   `avro:"seller_id"`
		Price     float64 `avro:"price"`
		Quantity  int32   `avro:"quantity"`
	}
)

func ClientSearchV1Avro() avro.Schema {
	return avro.MustParse(ClientSearchSchemaTextV1)
}

func OrderPlacedV1Avro() avro.Schema {
	return avro.MustParse(OrderPlacedSchemaTextV1)
}
