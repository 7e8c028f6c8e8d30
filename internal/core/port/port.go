package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	closer interface {
		Close()
	}
)

// StateStore persists storefront state across restarts.
//
// Get returns [domain.ErrNotFound] for a missing key. Deleting a missing key
// is not an error.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type ClosableStateStore interface {
	StateStore
	closer
}

// AuthGateway holds the unauthenticated token endpoints.
type AuthGateway interface {
	Login(context.Context, domain.Credentials) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
}

type AccountGateway interface {
	Register(context.Context, domain.Registration) error
	RequestPasswordOTP(ctx context.Context, email string) error
	VerifyPasswordOTP(context.Context, domain.PasswordOTP) error
	ChangePassword(ctx context.Context, token string, p domain.PasswordChange) error
}

type CatalogGateway interface {
	ListProducts(ctx context.Context, token string, q domain.ProductQuery) (domain.ProductPage, error)
	GetProduct(ctx context.Context, token string, id int64) (domain.Product, error)
	ListCategories(ctx context.Context, token string) ([]domain.Category, error)
}

type OrderGateway interface {
	PlaceOrder(ctx context.Context, token string, o domain.Order) (orderCode string, err error)
}

type AdminGateway interface {
	CreateProduct(ctx context.Context, token string, p domain.NewProduct) (domain.Product, error)
	CreateCategory(ctx context.Context, token string, c domain.NewCategory) (domain.Category, error)
	CreateCurrency(ctx context.Context, token string, c domain.NewCurrency) (domain.Currency, error)
}

// Gateway is the whole API gateway surface.
type Gateway interface {
	AuthGateway
	AccountGateway
	CatalogGateway
	OrderGateway
	AdminGateway
}

// AuthorizedCall is a gateway call made with an access token.
type AuthorizedCall func(ctx context.Context, token string) error

// Authorizer runs calls on behalf of the current session, refreshing an
// expired access token at most once per call.
type Authorizer interface {
	Authorized(ctx context.Context, call AuthorizedCall) error
	Role() domain.Role
}

type EventsProducer interface {
	ProduceSearch(context.Context, domain.SearchEvent) error
	ProduceOrder(context.Context, domain.OrderEvent) error
}

type ClosableEventsProducer interface {
	EventsProducer
	closer
}

// Use-case ports consumed by the view bridge.

type SessionManager interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(context.Context) error
	Snapshot() domain.Session
}

type CartManager interface {
	Dispatch(context.Context, domain.Action) (domain.Cart, error)
	Snapshot() domain.Cart
}

type FeedController interface {
	SetQuery(context.Context, domain.ProductFilters, domain.Sort) error
	LoadMore(context.Context) (bool, error)
	Snapshot() domain.FeedState
}

type ProductFinder interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
}

type CategoryLister interface {
	Categories(context.Context) ([]domain.Category, error)
}

type OrderPlacer interface {
	PlaceOrder(context.Context, domain.OrderRequest) (domain.OrderConfirmation, error)
}

type AccountManager interface {
	Register(context.Context, domain.Registration) error
	RequestPasswordOTP(ctx context.Context, email string) error
	VerifyPasswordOTP(context.Context, domain.PasswordOTP) error
	ChangePassword(context.Context, domain.PasswordChange) error
	CreateProduct(context.Context, domain.NewProduct) (domain.Product, error)
	CreateCategory(context.Context, domain.NewCategory) (domain.Category, error)
	CreateCurrency(context.Context, domain.NewCurrency) (domain.Currency, error)
}
