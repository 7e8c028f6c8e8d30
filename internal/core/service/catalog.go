package service

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.ProductFinder  = (*Catalog)(nil)
	_ port.CategoryLister = (*Catalog)(nil)
)

// Catalog looks up single products and the category list on behalf of the
// current session.
type Catalog struct {
	catalog port.CatalogGateway
	auth    port.Authorizer
}

func NewCatalog(catalog port.CatalogGateway, auth port.Authorizer) *Catalog {
	return &Catalog{catalog: catalog, auth: auth}
}

func (c *Catalog) Product(ctx context.Context, id int64) (domain.Product, error) {
	const op = "Catalog.Product"

	if id <= 0 {
		return domain.Product{}, fmt.Errorf("%s: %w", op,
			domain.NewValidationError("product_id", "must be positive"))
	}

	var p domain.Product
	err := c.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		p, err = c.catalog.GetProduct(ctx, token, id)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Categories lists every catalog category, e.g. to pick one for a new product.
func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	const op = "Catalog.Categories"

	var categories []domain.Category
	err := c.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		categories, err = c.catalog.ListCategories(ctx, token)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}
