package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.FeedController = (*Feed)(nil)

// A Feed loads the product catalog page by page for infinite scrolling.
//
// At most one fetch per query generation is in flight. Changing the query
// starts a new generation; responses of older generations are dropped.
type Feed struct {
	catalog port.CatalogGateway
	auth    port.Authorizer
	events  emitter

	mu       sync.Mutex
	state    domain.FeedState
	gen      uint64
	inflight bool
}

func NewFeed(
	catalog port.CatalogGateway,
	auth port.Authorizer,
	events port.EventsProducer,
	clientID string,
	opts ...EventOpt,
) *Feed {
	return &Feed{
		catalog: catalog,
		auth:    auth,
		events:  newEmitter(events, clientID, opts...),
		state:   domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest),
	}
}

func (f *Feed) Snapshot() domain.FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

func (f *Feed) SetFilters(ctx context.Context, filters domain.ProductFilters) error {
	return f.SetQuery(ctx, filters, f.Snapshot().Sort)
}

func (f *Feed) SetSort(ctx context.Context, sort domain.Sort) error {
	return f.SetQuery(ctx, f.Snapshot().Filters, sort)
}

// SetQuery resets the feed to the given filters and sort, then loads
// the first page.
func (f *Feed) SetQuery(
	ctx context.Context, filters domain.ProductFilters, sort domain.Sort,
) error {
	const op = "Feed.SetQuery"

	if sort == "" {
		sort = domain.SortNewest
	}
	if !sort.Valid() {
		return fmt.Errorf("%s: %w", op, domain.NewValidationError("sort", "unknown order"))
	}
	if err := filters.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f.mu.Lock()
	f.gen++
	f.state = domain.NewFeedState(filters, sort)
	f.state.Status = domain.StatusLoading
	f.inflight = true
	gen, q := f.gen, f.queryLocked(1)
	f.mu.Unlock()

	if err := f.fetch(ctx, gen, q); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadMore fetches the page after the last loaded one.
//
// It reports false without fetching while another fetch is in flight or
// once the catalog is exhausted.
func (f *Feed) LoadMore(ctx context.Context) (bool, error) {
	const op = "Feed.LoadMore"

	f.mu.Lock()
	if f.inflight || !f.state.HasMore {
		f.mu.Unlock()
		return false, nil
	}
	f.inflight = true
	f.state.Status = domain.StatusLoading
	gen, q := f.gen, f.queryLocked(f.state.Page+1)
	f.mu.Unlock()

	if err := f.fetch(ctx, gen, q); err != nil {
		return true, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (f *Feed) queryLocked(page int) domain.ProductQuery {
	return domain.ProductQuery{
		Page:    page,
		Filters: f.state.Filters,
		Sort:    f.state.Sort,
	}
}

func (f *Feed) fetch(ctx context.Context, gen uint64, q domain.ProductQuery) error {
	const op = "Feed.fetch"
	log := slog.With("op", op, "page", q.Page)

	defer f.release(gen)

	var page domain.ProductPage
	err := f.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		page, err = f.catalog.ListProducts(ctx, token, q)
		return err
	})
	if q.Page > 1 && errors.Is(err, domain.ErrNotFound) {
		// The gateway answers 404 for a page past the end.
		page, err = domain.ProductPage{}, nil
	}

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		log.Debug("dropping response of a superseded query")
		return nil
	}
	if err != nil {
		f.state.Status = domain.StatusFailed
		f.state.LastError = domain.UserMessage(err, "Error fetching products")
		f.mu.Unlock()
		log.Warn("failed to fetch products", "err", err)
		return err
	}
	f.state = f.state.ApplyPage(q.Page, page)
	total := f.state.TotalCount
	f.mu.Unlock()

	log.Debug("page loaded", "results", len(page.Results), "total", total)

	if q.Page == 1 {
		f.emitSearch(ctx, q, total)
	}
	return nil
}

func (f *Feed) release(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen == f.gen {
		f.inflight = false
	}
}

func (f *Feed) emitSearch(ctx context.Context, q domain.ProductQuery, total int) {
	const op = "Feed.emitSearch"

	evt := domain.SearchEvent{
		ClientID:   f.events.clientID,
		Role:       f.auth.Role(),
		Search:     q.Filters.Search,
		CategoryID: q.Filters.CategoryID,
		Sort:       q.Sort,
		Total:      total,
		OccurredAt: time.Now().UTC(),
	}
	f.events.send(ctx, op, func(ctx context.Context, p port.EventsProducer) error {
		return p.ProduceSearch(ctx, evt)
	})
}
