package domain

import (
	"io"
	"net/mail"
	"strings"
)

type Registration struct {
	Email    string
	Username string
	Password string
}

func (r Registration) Validate() error {
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.Username) == "" {
		return NewValidationError("username", "is required")
	}
	if r.Password == "" {
		return NewValidationError("password", "is required")
	}
	return nil
}

type PasswordOTP struct {
	Email       string
	OTP         string
	NewPassword string
}

func (p PasswordOTP) Validate() error {
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	if strings.TrimSpace(p.OTP) == "" {
		return NewValidationError("otp", "is required")
	}
	if p.NewPassword == "" {
		return NewValidationError("new_password", "is required")
	}
	return nil
}

type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

func (p PasswordChange) Validate() error {
	if p.Current == "" {
		return NewValidationError("current_password", "is required")
	}
	if p.New == "" {
		return NewValidationError("new_password", "is required")
	}
	if p.New != p.Confirm {
		return NewValidationError("confirm_password", "new passwords do not match")
	}
	return nil
}

type NewCategory struct {
	Name        string
	Description string
}

func (c NewCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "category name is required")
	}
	return nil
}

type NewCurrency struct {
	CountryName  string
	CountryCode  string
	CurrencyCode string
	CurrencyName string
}

func (c NewCurrency) Validate() error {
	fields := []struct{ name, value string }{
		{"country_name", c.CountryName},
		{"country_code", c.CountryCode},
		{"currency_code", c.CurrencyCode},
		{"currency_name", c.CurrencyName},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, "all fields are required")
		}
	}
	return nil
}

type ProductImage struct {
	Filename string
	Content  io.Reader
}

type NewProduct struct {
	Name            string
	Description     string
	Price           float64
	DiscountPercent int
	Stock           int
	Tags            []string
	CategoryID      int64
	CurrencyID      int64
	Image           *ProductImage
}

func (p NewProduct) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return NewValidationError("name", "is required")
	case p.Price <= 0:
		return NewValidationError("price", "must be positive")
	case p.Stock < 0:
		return NewValidationError("stock", "must not be negative")
	case p.DiscountPercent < 0 || p.DiscountPercent > 100:
		return NewValidationError("discount_percent", "must be within 0..100")
	case p.CategoryID <= 0:
		return NewValidationError("category", "is required")
	case p.CurrencyID <= 0:
		return NewValidationError("currency", "is required")
	case p.Image != nil && p.Image.Content == nil:
		return NewValidationError("image", "has no content")
	}
	return nil
}

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email", "is not a valid address")
	}
	return nil
}
