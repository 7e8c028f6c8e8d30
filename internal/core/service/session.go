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
	"golang.org/x/sync/singleflight"
)

var _ port.Authorizer = (*Session)(nil)
var _ port.SessionManager = (*Session)(nil)

const defaultRefreshTimeout = 10 * time.Second

var errNoRefreshToken = errors.New("no refresh token")

type SessionOpt func(*sessionOpts)

type sessionOpts struct {
	refreshTimeout time.Duration
	onExpired      func()
}

func RefreshTimeoutOpt(d time.Duration) SessionOpt {
	return func(o *sessionOpts) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

// SessionExpiredOpt sets the hook fired once for every failed refresh,
// after the session is cleared. Views use it to redirect to the login.
func SessionExpiredOpt(fn func()) SessionOpt {
	return func(o *sessionOpts) {
		o.onExpired = fn
	}
}

// A Session manages the user's tokens and role.
//
// Calls made through [Session.Authorized] that are rejected as unauthorized
// share a single token refresh per rejected access token.
type Session struct {
	gw      port.AuthGateway
	store   port.StateStore
	opts    sessionOpts
	flights singleflight.Group

	mu    sync.RWMutex
	state domain.Session
}

func NewSession(gw port.AuthGateway, store port.StateStore, opts ...SessionOpt) *Session {
	o := sessionOpts{refreshTimeout: defaultRefreshTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		gw:    gw,
		store: store,
		opts:  o,
		state: domain.Session{Status: domain.StatusIdle},
	}
}

func (s *Session) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Role
}

func (s *Session) HasRole(roles ...domain.Role) bool {
	return s.Role().Allowed(roles...)
}

func (s *Session) Login(
	ctx context.Context, email, password string,
) (domain.Session, error) {
	const op = "Session.Login"
	log := slog.With("op", op)

	creds := domain.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return s.fail(err.Error()), fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.state.Status = domain.StatusLoading
	s.state.LastError = ""
	s.mu.Unlock()

	pair, err := s.gw.Login(ctx, creds)
	if err == nil && (pair.Access == "" || pair.Role == "") {
		err = &domain.APIError{Kind: domain.ErrRejected, Detail: "Login failed"}
	}
	if err != nil {
		log.Warn("login rejected", "err", err)
		msg := domain.UserMessage(err, "Login failed")
		return s.fail(msg), fmt.Errorf("%s: %w", op, err)
	}

	if err := s.persist(ctx, pair); err != nil {
		log.Error("failed to persist session", "err", err)
		if err := deleteKeys(ctx, s.store, KeyToken, KeyRefreshToken, KeyRole); err != nil {
			log.Error("failed to roll back persisted session", "err", err)
		}
		return s.fail("Login failed"), fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.state = domain.Session{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Role:         pair.Role,
		Status:       domain.StatusSucceeded,
	}
	snapshot := s.state
	s.mu.Unlock()

	log.Info("logged in", "role", pair.Role)
	return snapshot, nil
}

func (s *Session) persist(ctx context.Context, pair domain.TokenPair) error {
	if err := storeJSON(ctx, s.store, KeyToken, pair.Access); err != nil {
		return err
	}
	if err := storeJSON(ctx, s.store, KeyRefreshToken, pair.Refresh); err != nil {
		return err
	}
	return storeJSON(ctx, s.store, KeyRole, pair.Role)
}

func (s *Session) fail(msg string) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Status = domain.StatusFailed
	s.state.LastError = msg
	return s.state
}

// Logout forgets the session. The in-memory session is cleared even when
// the persisted keys cannot be removed.
func (s *Session) Logout(ctx context.Context) error {
	const op = "Session.Logout"
	log := slog.With("op", op)

	s.mu.Lock()
	s.state = domain.Session{Status: domain.StatusIdle}
	s.mu.Unlock()

	err := deleteKeys(ctx, s.store, KeyToken, KeyRefreshToken, KeyRole)
	if err != nil {
		log.Error("failed to forget persisted session", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("logged out")
	return nil
}

// Rehydrate restores a persisted session. It is a no-op unless both the
// access token and the role were persisted.
func (s *Session) Rehydrate(ctx context.Context) error {
	const op = "Session.Rehydrate"
	log := slog.With("op", op)

	var token, refresh, rawRole string
	for key, dst := range map[string]*string{
		KeyToken:        &token,
		KeyRefreshToken: &refresh,
		KeyRole:         &rawRole,
	} {
		if _, err := loadJSON(ctx, s.store, key, dst); err != nil {
			return fmt.Errorf("%s: %s: %w", op, key, err)
		}
	}

	if token == "" || rawRole == "" {
		return nil
	}

	role, ok := domain.ParseRole(rawRole)
	if !ok {
		log.Warn("ignoring persisted session with unknown role", "role", rawRole)
		return nil
	}

	s.mu.Lock()
	s.state = domain.Session{
		AccessToken:  token,
		RefreshToken: refresh,
		Role:         role,
		Status:       domain.StatusIdle,
	}
	s.mu.Unlock()

	log.Info("session restored", "role", role)
	return nil
}

// Authorized runs call with the current access token.
//
// When call fails with [domain.ErrUnauthorized] the access token is
// refreshed and call is retried once with the new token. The retry's error
// is returned as is.
func (s *Session) Authorized(ctx context.Context, call port.AuthorizedCall) error {
	const op = "Session.Authorized"

	token := s.accessToken()
	err := call(ctx, token)
	if err == nil || !errors.Is(err, domain.ErrUnauthorized) || token == "" {
		return err
	}

	fresh, err := s.refresh(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return call(ctx, fresh)
}

func (s *Session) accessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// refresh exchanges the refresh token for a new access token.
//
// Callers rejected with the same stale token join one flight. A flight
// started after the stale token was already replaced returns the current
// token without calling the gateway.
func (s *Session) refresh(ctx context.Context, stale string) (string, error) {
	ch := s.flights.DoChan(stale, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), s.opts.refreshTimeout,
		)
		defer cancel()
		return s.refreshFrom(flightCtx, stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *Session) refreshFrom(ctx context.Context, stale string) (string, error) {
	const op = "Session.refreshFrom"
	log := slog.With("op", op)

	s.mu.RLock()
	current, refreshToken := s.state.AccessToken, s.state.RefreshToken
	s.mu.RUnlock()

	if current != stale {
		if current == "" {
			return "", domain.ErrSessionExpired
		}
		return current, nil
	}

	if refreshToken == "" {
		s.expire(ctx, errNoRefreshToken)
		return "", fmt.Errorf("%w: %w", domain.ErrSessionExpired, errNoRefreshToken)
	}

	access, err := s.gw.Refresh(ctx, refreshToken)
	if err == nil && access == "" {
		err = &domain.APIError{Kind: domain.ErrRejected, Detail: "empty access token"}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) {
			log.Warn("refresh unavailable", "err", err)
			return "", err
		}
		s.expire(ctx, err)
		return "", fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
	}

	s.mu.Lock()
	if s.state.AccessToken != stale {
		s.mu.Unlock()
		return "", domain.ErrSessionExpired
	}
	s.state.AccessToken = access
	s.mu.Unlock()

	if err := storeJSON(ctx, s.store, KeyToken, access); err != nil {
		log.Error("failed to persist refreshed token", "err", err)
	}

	log.Info("access token refreshed")
	return access, nil
}

func (s *Session) expire(ctx context.Context, cause error) {
	const op = "Session.expire"
	log := slog.With("op", op)

	log.Warn("session expired", "cause", cause)

	s.mu.Lock()
	s.state = domain.Session{
		Status:    domain.StatusFailed,
		LastError: domain.UserMessage(domain.ErrSessionExpired, ""),
	}
	s.mu.Unlock()

	err := deleteKeys(ctx, s.store, KeyToken, KeyRefreshToken, KeyRole)
	if err != nil {
		log.Error("failed to forget persisted session", "err", err)
	}

	if s.opts.onExpired != nil {
		s.opts.onExpired()
	}
}
