package domain

import "strings"

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return r, true
	}
	return "", false
}

// Allowed reports whether r is one of the roles, ignoring case.
func (r Role) Allowed(roles ...Role) bool {
	if r == "" {
		return false
	}
	for _, allowed := range roles {
		if strings.EqualFold(string(r), string(allowed)) {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// A Session is the authentication state of the storefront user.
//
// AccessToken and Role are either both set or both empty.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         Role
	Status       Status
	LastError    string
}

func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.Role != ""
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return NewValidationError("email", "is required")
	}
	if c.Password == "" {
		return NewValidationError("password", "is required")
	}
	return nil
}

// TokenPair is what the gateway issues on login.
type TokenPair struct {
	Access  string
	Refresh string
	Role    Role
}
