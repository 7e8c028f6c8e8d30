package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	_ port.ClosableEventsProducer = (*EventsProducer)(nil)
	_ port.ClosableEventsProducer = NopProducer{}
)

const eventTypeHeader = "event_type"

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An EventsProducer publishes storefront client events. Records are keyed
// by client id, so the events of one client keep their order.
type EventsProducer struct {
	producer      producer
	searchEncoder Encoder
	orderEncoder  Encoder
	opPrefix      string
}

func NewEventsProducer(opts ...ProducerOpt) (EventsProducer, error) {
	const op = "NewEventsProducer"

	if len(opts) != 3 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return EventsProducer{}, opErr(err, op)
		}
	}
	if options.cl == nil || options.searchEncoder == nil || options.orderEncoder == nil {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	opPrefix := "EventsProducer"
	return EventsProducer{
		producer:      producer{opPrefix: opPrefix, cl: options.cl},
		searchEncoder: options.searchEncoder,
		orderEncoder:  options.orderEncoder,
		opPrefix:      opPrefix,
	}, nil
}

func (p EventsProducer) Close() {
	p.producer.close()
}

func (p EventsProducer) ProduceSearch(
	ctx context.Context, e domain.SearchEvent,
) error {
	const op = "ProduceSearch"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	b, err := p.searchEncoder.Encode(searchToSchemaV1(e))
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r := p.record(e.ClientID, "client_search", b)
	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p EventsProducer) ProduceOrder(
	ctx context.Context, e domain.OrderEvent,
) error {
	const op = "ProduceOrder"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	b, err := p.orderEncoder.Encode(orderToSchemaV1(e))
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r := p.record(e.ClientID, "order_placed", b)
	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (EventsProducer) record(key, eventType string, value []byte) *kgo.Record {
	return &kgo.Record{
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: eventTypeHeader, Value: []byte(eventType)},
		},
	}
}

// NopProducer drops events. It stands in when no brokers are configured.
type NopProducer struct{}

func (NopProducer) ProduceSearch(context.Context, domain.SearchEvent) error { return nil }

func (NopProducer) ProduceOrder(context.Context, domain.OrderEvent) error { return nil }

func (NopProducer) Close() {}

func searchToSchemaV1(e domain.SearchEvent) (s schema.ClientSearchEventV1) {
	s.ClientID = e.ClientID
	s.Role = string(e.Role)
	s.Search = e.Search
	s.CategoryID = e.CategoryID
	s.Sort = string(e.Sort)
	s.Total = int64(e.Total)
	s.OccurredAt = e.OccurredAt
	return
}

func orderToSchemaV1(e domain.OrderEvent) (s schema.OrderPlacedEventV1) {
	s.ClientID = e.ClientID
	s.OrderCode = e.OrderCode
	s.Total = e.Total
	s.CurrencyCode = e.CurrencyCode
	s.OccurredAt = e.OccurredAt

	s.Purchases = make([]schema.PurchaseV1, len(e.Purchases))
	for i, p := range e.Purchases {
		s.Purchases[i].ProductID = p.ProductID
		s.Purchases[i].SellerID = p.SellerID
		s.Purchases[i].Price = p.Price.Float()
		s.Purchases[i].Quantity = int32(p.Quantity)
	}
	return
}
