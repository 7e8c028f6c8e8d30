package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.AccountManager = (*Accounts)(nil)

// Accounts runs the registration, password and catalog administration flows.
// Input is validated locally; invalid input never reaches the gateway.
type Accounts struct {
	accounts port.AccountGateway
	admin    port.AdminGateway
	auth     port.Authorizer
}

func NewAccounts(
	accounts port.AccountGateway, admin port.AdminGateway, auth port.Authorizer,
) *Accounts {
	return &Accounts{accounts: accounts, admin: admin, auth: auth}
}

func (a *Accounts) Register(ctx context.Context, r domain.Registration) error {
	const op = "Accounts.Register"

	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.accounts.Register(ctx, r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("account registered", "op", op)
	return nil
}

func (a *Accounts) RequestPasswordOTP(ctx context.Context, email string) error {
	const op = "Accounts.RequestPasswordOTP"

	email = strings.TrimSpace(email)
	if err := domain.ValidateEmail(email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.accounts.RequestPasswordOTP(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *Accounts) VerifyPasswordOTP(ctx context.Context, p domain.PasswordOTP) error {
	const op = "Accounts.VerifyPasswordOTP"

	p.Email = strings.TrimSpace(p.Email)
	p.OTP = strings.TrimSpace(p.OTP)
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := a.accounts.VerifyPasswordOTP(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *Accounts) ChangePassword(ctx context.Context, p domain.PasswordChange) error {
	const op = "Accounts.ChangePassword"

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if a.auth.Role() == "" {
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}

	err := a.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		return a.accounts.ChangePassword(ctx, token, p)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *Accounts) CreateProduct(
	ctx context.Context, p domain.NewProduct,
) (domain.Product, error) {
	const op = "Accounts.CreateProduct"

	if err := a.require(domain.RoleSeller, domain.RoleAdmin); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	// The upload may be sent twice when the token is refreshed.
	var image []byte
	if p.Image != nil {
		var err error
		if image, err = io.ReadAll(p.Image.Content); err != nil {
			return domain.Product{}, fmt.Errorf("%s: read image: %w", op, err)
		}
	}

	var created domain.Product
	err := a.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		attempt := p
		if p.Image != nil {
			attempt.Image = &domain.ProductImage{
				Filename: p.Image.Filename,
				Content:  bytes.NewReader(image),
			}
		}

		var err error
		created, err = a.admin.CreateProduct(ctx, token, attempt)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("product created", "op", op, "productID", created.ID)
	return created, nil
}

func (a *Accounts) CreateCategory(
	ctx context.Context, c domain.NewCategory,
) (domain.Category, error) {
	const op = "Accounts.CreateCategory"

	if err := a.require(domain.RoleAdmin); err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	var created domain.Category
	err := a.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		created, err = a.admin.CreateCategory(ctx, token, c)
		return err
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (a *Accounts) CreateCurrency(
	ctx context.Context, c domain.NewCurrency,
) (domain.Currency, error) {
	const op = "Accounts.CreateCurrency"

	if err := a.require(domain.RoleAdmin); err != nil {
		return domain.Currency{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Validate(); err != nil {
		return domain.Currency{}, fmt.Errorf("%s: %w", op, err)
	}

	var created domain.Currency
	err := a.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		created, err = a.admin.CreateCurrency(ctx, token, c)
		return err
	})
	if err != nil {
		return domain.Currency{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (a *Accounts) require(roles ...domain.Role) error {
	if a.auth.Role().Allowed(roles...) {
		return nil
	}
	return domain.ErrForbidden
}
