package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeClientSearchV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeClientSearchV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeClientSearchV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("SameOptTwice", func(t *testing.T) {
		_, err := schema.NewSerdeClientSearchV1(
			t.Context(),
			schema.SubjectOpt("a"),
			schema.SubjectOpt("b"),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("RegistryFailure", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "client_events-storefront.events.ClientSearchEventV1"
		errRegistry := errors.New("registry is down")

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ClientSearchSchemaTextV1,
		).Return(0, errRegistry)

		_, err := schema.NewSerdeClientSearchV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, errRegistry)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "client_events-storefront.events.ClientSearchEventV1"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ClientSearchSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeClientSearchV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)
		schemaIdentifier.AssertExpectations(t)

		event1 := schema.ClientSearchEventV1{
			ClientID:   "client-1",
			Role:       "BUYER",
			Search:     "lamp",
			CategoryID: 3,
			Sort:       "price_asc",
			Total:      25,
			OccurredAt: time.UnixMilli(1714557600000).UTC(),
		}

		encoded, err := serde.Encode(event1)
		require.NoError(t, err)
		require.Greater(t, len(encoded), 5)
		assert.Equal(t, byte(0), encoded[0], "magic byte")

		var event2 schema.ClientSearchEventV1
		require.NoError(t, serde.Decode(encoded, &event2))
		assert.Equal(t, event1.ClientID, event2.ClientID)
		assert.Equal(t, event1.Search, event2.Search)
		assert.Equal(t, event1.CategoryID, event2.CategoryID)
		assert.Equal(t, event1.Total, event2.Total)
		assert.True(t, event1.OccurredAt.Equal(event2.OccurredAt))
	})
}

func TestSerdeOrderPlacedV1(t *testing.T) {
	schemaIdentifier := new(MockSchemaIdentifier)
	subject := "client_events-storefront.events.OrderPlacedEventV1"

	schemaIdentifier.On(
		"DetermineID", t.Context(), subject, schema.OrderPlacedSchemaTextV1,
	).Return(2, nil)

	serde, err := schema.NewSerdeOrderPlacedV1(
		t.Context(),
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schemaIdentifier),
	)
	require.NoError(t, err)

	event1 := schema.OrderPlacedEventV1{
		ClientID:  "client-1",
		OrderCode: "ORD-1",
		Purchases: []schema.PurchaseV1{
			{ProductID: 7, SellerID: 9, Price: 10, Quantity: 2},
		},
		Total:        20,
		CurrencyCode: "USD",
		OccurredAt:   time.UnixMilli(1714557600000).UTC(),
	}

	encoded, err := serde.Encode(event1)
	require.NoError(t, err)

	var event2 schema.OrderPlacedEventV1
	require.NoError(t, serde.Decode(encoded, &event2))
	assert.Equal(t, event1.OrderCode, event2.OrderCode)
	assert.Equal(t, event1.Purchases, event2.Purchases)

	t.Run("WrongType", func(t *testing.T) {
		_, err := serde.Encode(schema.ClientSearchEventV1{})
		require.Error(t, err)
	})
}

func TestTopicRecordSubject(t *testing.T) {
	assert.Equal(t,
		"client_events-storefront.events.ClientSearchEventV1",
		schema.TopicRecordSubject("client_events", schema.ClientSearchV1Avro()),
	)
	assert.Equal(t,
		"client_events-storefront.events.OrderPlacedEventV1",
		schema.TopicRecordSubject("client_events", schema.OrderPlacedV1Avro()),
	)
}
