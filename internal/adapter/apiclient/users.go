package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	pathLogin          = "users/login/"
	pathRefresh        = "users/refresh/"
	pathRegister       = "users/register/"
	pathForgotPassword = "users/forgot-password/"
	pathVerifyOTP      = "users/forgot-password/verify/"
	pathPasswordReset  = "users/password-reset/"
)

// Login exchanges credentials for a token pair. A 401 from the gateway
// means the credentials were wrong.
func (c *Client) Login(ctx context.Context, cred domain.Credentials) (domain.TokenPair, error) {
	const op = "Client.Login"

	r, err := jsonRequest(http.MethodPost, pathLogin, "", credentialsJSON{
		Email:    cred.Email,
		Password: cred.Password,
	})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	var resp loginJSON
	if err := c.call(ctx, r, &resp); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			apiErr.Kind = domain.ErrInvalidCredentials
		}
		return domain.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair := domain.TokenPair{Access: resp.Access, Refresh: resp.Refresh}
	if resp.Role != "" {
		role, ok := domain.ParseRole(resp.Role)
		if !ok {
			err := &domain.APIError{
				Status: http.StatusOK,
				Kind:   domain.ErrRejected,
				Detail: fmt.Sprintf("unknown role %q", resp.Role),
			}
			return domain.TokenPair{}, fmt.Errorf("%s: %w", op, err)
		}
		pair.Role = role
	}
	return pair, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "Client.Refresh"

	r, err := jsonRequest(http.MethodPost, pathRefresh, "", refreshRequestJSON{
		Refresh: refreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var resp refreshResponseJSON
	if err := c.call(ctx, r, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.Access == "" {
		err := &domain.APIError{
			Status: http.StatusOK,
			Kind:   domain.ErrRejected,
			Detail: "refresh response has no access token",
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.Access, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	const op = "Client.Register"

	r, err := jsonRequest(http.MethodPost, pathRegister, "", registrationJSON{
		Email:    reg.Email,
		Username: reg.Username,
		Password: reg.Password,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.call(ctx, r, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) RequestPasswordOTP(ctx context.Context, email string) error {
	const op = "Client.RequestPasswordOTP"

	r, err := jsonRequest(http.MethodPost, pathForgotPassword, "", emailJSON{Email: email})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.call(ctx, r, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) VerifyPasswordOTP(ctx context.Context, p domain.PasswordOTP) error {
	const op = "Client.VerifyPasswordOTP"

	r, err := jsonRequest(http.MethodPost, pathVerifyOTP, "", passwordOTPJSON{
		Email:       p.Email,
		OTP:         p.OTP,
		NewPassword: p.NewPassword,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.call(ctx, r, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) ChangePassword(
	ctx context.Context, token string, p domain.PasswordChange,
) error {
	const op = "Client.ChangePassword"

	r, err := jsonRequest(http.MethodPost, pathPasswordReset, token, passwordChangeJSON{
		CurrentPassword: p.Current,
		NewPassword:     p.New,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.call(ctx, r, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
