package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/sony/gobreaker/v2"
)

var _ port.Gateway = (*Client)(nil)

const (
	defaultTimeout         = 10 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerOpenTime = 30 * time.Second
	maxErrorBodySize       = 64 << 10
	breakerName            = "api-gateway"
	userAgent              = "storefront-client/1"
	detailFallbackTemplate = "request failed with status %d"
)

const (
	contentTypeJSON      = "application/json"
	bearerPrefix         = "Bearer "
	headerAuthorization  = "Authorization"
	headerContentType    = "Content-Type"
	headerAccept         = "Accept"
	headerUserAgent      = "User-Agent"
	headerIdempotencyKey = "Idempotency-Key"
)

var errServerStatus = errors.New("server error status")

type Opt func(*clientOpts) error

type clientOpts struct {
	httpClient      *http.Client
	timeout         time.Duration
	breakerFailures uint32
	breakerOpenTime time.Duration
}

func HTTPClientOpt(c *http.Client) Opt {
	return func(o *clientOpts) error {
		if c == nil {
			return errors.New("http client is nil")
		}
		o.httpClient = c
		return nil
	}
}

func TimeoutOpt(d time.Duration) Opt {
	return func(o *clientOpts) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		o.timeout = d
		return nil
	}
}

// BreakerOpt configures the circuit breaker: it opens after maxFailures
// consecutive transport failures or 5xx responses and stays open for
// openTimeout.
func BreakerOpt(maxFailures uint32, openTimeout time.Duration) Opt {
	return func(o *clientOpts) error {
		if maxFailures == 0 {
			return errors.New("breaker max failures is zero")
		}
		o.breakerFailures = maxFailures
		o.breakerOpenTime = openTimeout
		return nil
	}
}

// A Client talks to the storefront API gateway.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func New(baseURL string, opts ...Opt) (*Client, error) {
	const op = "apiclient.New"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q is not absolute", op, baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	options := clientOpts{
		timeout:         defaultTimeout,
		breakerFailures: defaultBreakerFailures,
		breakerOpenTime: defaultBreakerOpenTime,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	maxFailures := options.breakerFailures
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    breakerName,
		Timeout: options.breakerOpenTime,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"op", "Client.breaker", "name", name,
				"from", from.String(), "to", to.String(),
			)
		},
	})

	return &Client{baseURL: u, http: httpClient, breaker: breaker}, nil
}

type request struct {
	method      string
	path        string
	token       string
	query       url.Values
	body        io.Reader
	contentType string
	header      http.Header
}

func jsonRequest(method, path, token string, body any) (request, error) {
	r := request{method: method, path: path, token: token}
	if body == nil {
		return r, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return request{}, err
	}
	r.body = bytes.NewReader(b)
	r.contentType = contentTypeJSON
	return r, nil
}

// call performs r and decodes a successful JSON response into out.
// out may be nil.
func (c *Client) call(ctx context.Context, r request, out any) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.APIError{
			Status: resp.StatusCode,
			Kind:   domain.ErrRejected,
			Detail: fmt.Sprintf("malformed response: %v", err),
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	const op = "Client.do"

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: r.path})
	if len(r.query) != 0 {
		endpoint.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), r.body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerUserAgent, userAgent)
	if r.contentType != "" {
		req.Header.Set(headerContentType, r.contentType)
	}
	if r.token != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+r.token)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, errServerStatus):
		return resp, nil
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		// Transport failures and an open breaker alike.
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrNetwork, err)
	}
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return &domain.APIError{
		Status: resp.StatusCode,
		Kind:   statusKind(resp.StatusCode),
		Detail: errorDetail(body, resp.StatusCode),
	}
}

func statusKind(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusBadRequest:
		return domain.ErrValidation
	case status >= http.StatusInternalServerError:
		return domain.ErrNetwork
	default:
		return domain.ErrRejected
	}
}

// errorDetail extracts a message from the gateway's error body:
// {"detail": "..."} or field errors such as {"email": ["already taken"]}.
func errorDetail(body []byte, status int) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || len(obj) == 0 {
		return fmt.Sprintf(detailFallbackTemplate, status)
	}

	if raw, ok := obj["detail"]; ok {
		if msg := firstMessage(raw); msg != "" {
			return msg
		}
	}

	fields := make([]string, 0, len(obj))
	for field := range obj {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if msg := firstMessage(obj[field]); msg != "" {
			if field == "non_field_errors" {
				return msg
			}
			return field + ": " + msg
		}
	}
	return fmt.Sprintf(detailFallbackTemplate, status)
}

func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) != 0 {
		return list[0]
	}
	return ""
}
