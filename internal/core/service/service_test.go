package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/stretchr/testify/mock"
)

var errStore = errors.New("disk full")

type MockGateway struct {
	mock.Mock
}

var _ port.Gateway = (*MockGateway)(nil)

func (m *MockGateway) Login(ctx context.Context, c domain.Credentials) (domain.TokenPair, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.TokenPair), args.Error(1)
}

func (m *MockGateway) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Register(ctx context.Context, r domain.Registration) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockGateway) RequestPasswordOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockGateway) VerifyPasswordOTP(ctx context.Context, p domain.PasswordOTP) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockGateway) ChangePassword(
	ctx context.Context, token string, p domain.PasswordChange,
) error {
	return m.Called(ctx, token, p).Error(0)
}

func (m *MockGateway) ListProducts(
	ctx context.Context, token string, q domain.ProductQuery,
) (domain.ProductPage, error) {
	args := m.Called(ctx, token, q)
	return args.Get(0).(domain.ProductPage), args.Error(1)
}

func (m *MockGateway) GetProduct(
	ctx context.Context, token string, id int64,
) (domain.Product, error) {
	args := m.Called(ctx, token, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockGateway) PlaceOrder(
	ctx context.Context, token string, o domain.Order,
) (string, error) {
	args := m.Called(ctx, token, o)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ListCategories(
	ctx context.Context, token string,
) ([]domain.Category, error) {
	args := m.Called(ctx, token)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockGateway) CreateProduct(
	ctx context.Context, token string, p domain.NewProduct,
) (domain.Product, error) {
	args := m.Called(ctx, token, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockGateway) CreateCategory(
	ctx context.Context, token string, c domain.NewCategory,
) (domain.Category, error) {
	args := m.Called(ctx, token, c)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockGateway) CreateCurrency(
	ctx context.Context, token string, c domain.NewCurrency,
) (domain.Currency, error) {
	args := m.Called(ctx, token, c)
	return args.Get(0).(domain.Currency), args.Error(1)
}

type MockEventsProducer struct {
	mock.Mock
}

func (m *MockEventsProducer) ProduceSearch(ctx context.Context, e domain.SearchEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventsProducer) ProduceOrder(ctx context.Context, e domain.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

// stubAuth authorizes every call with a fixed token and role.
type stubAuth struct {
	token string
	role  domain.Role
}

func (a stubAuth) Authorized(ctx context.Context, call port.AuthorizedCall) error {
	return call(ctx, a.token)
}

func (a stubAuth) Role() domain.Role {
	return a.role
}

// flakyStore is a memory store whose writes of selected keys fail.
type flakyStore struct {
	*storage.MemoryStore

	mu      sync.Mutex
	failSet map[string]bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		MemoryStore: storage.NewMemoryStore(),
		failSet:     make(map[string]bool),
	}
}

func (s *flakyStore) failOn(key string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet[key] = fail
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	fail := s.failSet[key]
	s.mu.Unlock()
	if fail {
		return errStore
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func unauthorized() error {
	return &domain.APIError{Status: 401, Kind: domain.ErrUnauthorized}
}

func product(id int64, stock int, price float64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "product",
		Price:    domain.Price(price),
		Stock:    stock,
		SellerID: 100 + id,
		Currency: domain.Currency{CurrencyCode: "USD"},
	}
}
