package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	pathProducts   = "products/products/"
	pathOrders     = "products/orders/"
	pathCategories = "products/categories/"
	pathCurrencies = "products/currencies/"
)

func (c *Client) ListProducts(
	ctx context.Context, token string, q domain.ProductQuery,
) (domain.ProductPage, error) {
	const op = "Client.ListProducts"

	r := request{
		method: http.MethodGet,
		path:   pathProducts,
		token:  token,
		query:  productQueryValues(q),
	}

	var resp productListJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return domain.ProductPage{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp.toDomain(), nil
}

func productQueryValues(q domain.ProductQuery) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 1)))
	v.Set("ordering", q.Sort.Ordering())

	f := q.Filters
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}
	if f.CategoryID > 0 {
		v.Set("category__id", strconv.FormatInt(f.CategoryID, 10))
	}
	return v
}

func (c *Client) GetProduct(
	ctx context.Context, token string, id int64,
) (domain.Product, error) {
	const op = "Client.GetProduct"

	r := request{
		method: http.MethodGet,
		path:   pathProducts + strconv.FormatInt(id, 10) + "/",
		token:  token,
	}

	var resp productJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp.toDomain(), nil
}

// PlaceOrder sends the order with its idempotency key so a retried
// submission is not ordered twice.
func (c *Client) PlaceOrder(
	ctx context.Context, token string, o domain.Order,
) (string, error) {
	const op = "Client.PlaceOrder"

	r, err := jsonRequest(http.MethodPost, pathOrders, token, fromOrder(o))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if o.IdempotencyKey != "" {
		r.header = http.Header{headerIdempotencyKey: []string{o.IdempotencyKey}}
	}

	var resp orderCreatedJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.OrderCode, nil
}

// CreateProduct uploads the product as a multipart form with an optional
// image file.
func (c *Client) CreateProduct(
	ctx context.Context, token string, p domain.NewProduct,
) (domain.Product, error) {
	const op = "Client.CreateProduct"

	body, contentType, err := productForm(p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	r := request{
		method:      http.MethodPost,
		path:        pathProducts,
		token:       token,
		body:        body,
		contentType: contentType,
	}

	var resp productJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp.toDomain(), nil
}

func productForm(p domain.NewProduct) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", strings.TrimSpace(p.Name)},
		{"description", p.Description},
		{"price", strconv.FormatFloat(p.Price, 'f', 2, 64)},
		{"discount_percent", strconv.Itoa(p.DiscountPercent)},
		{"stock", strconv.Itoa(p.Stock)},
		{"tags", strings.Join(p.Tags, ",")},
		{"category", strconv.FormatInt(p.CategoryID, 10)},
		{"currency", strconv.FormatInt(p.CurrencyID, 10)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if p.Image != nil {
		fw, err := w.CreateFormFile("image", p.Image.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, p.Image.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) CreateCategory(
	ctx context.Context, token string, nc domain.NewCategory,
) (domain.Category, error) {
	const op = "Client.CreateCategory"

	r, err := jsonRequest(http.MethodPost, pathCategories, token, categoryJSON{
		Name:        nc.Name,
		Description: nc.Description,
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	var resp categoryJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp.toDomain(), nil
}

func (c *Client) ListCategories(
	ctx context.Context, token string,
) ([]domain.Category, error) {
	const op = "Client.ListCategories"

	r := request{method: http.MethodGet, path: pathCategories, token: token}

	var resp categoryListJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp.toDomain(), nil
}

func (c *Client) CreateCurrency(
	ctx context.Context, token string, nc domain.NewCurrency,
) (domain.Currency, error) {
	const op = "Client.CreateCurrency"

	r, err := jsonRequest(http.MethodPost, pathCurrencies, token, currencyJSON{
		CountryCode:  nc.CountryCode,
		CountryName:  nc.CountryName,
		CurrencyCode: nc.CurrencyCode,
		CurrencyName: nc.CurrencyName,
	})
	if err != nil {
		return domain.Currency{}, fmt.Errorf("%s: %w", op, err)
	}

	var resp currencyJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return domain.Currency{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp.toDomain(), nil
}
