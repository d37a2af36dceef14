// Package security provides authorization and access control.
package security

import (
	"context"
	"fmt"

	"posledger/internal/core/apperror"
	appctx "posledger/internal/core/context"
)

// Role defines a coarse access level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleViewer  Role = "viewer"
)

// AccessScope defines the boundaries of data visibility for current request.
// Every query and mutation is scoped to exactly one company taken from the
// authenticated token, never from the request body.
type AccessScope struct {
	// CompanyID is the current company (from JWT).
	CompanyID string

	// UserID is the authenticated user
	UserID string

	// IsAdmin bypasses role checks
	IsAdmin bool

	// Roles assigned to the user
	Roles []string
}

// NewAccessScope creates AccessScope from context.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}

	return &AccessScope{
		CompanyID: user.CompanyID,
		UserID:    user.UserID,
		IsAdmin:   user.IsAdmin,
		Roles:     user.Roles,
	}
}

// RequireCompany returns the scope company or an error when the request
// carries no company claim.
func (s *AccessScope) RequireCompany() (string, error) {
	if s.CompanyID == "" {
		return "", apperror.NewUnauthorized("company claim missing from token")
	}
	return s.CompanyID, nil
}

// HasRole checks if user has the given role.
func (s *AccessScope) HasRole(role Role) bool {
	if s.IsAdmin {
		return true
	}
	for _, r := range s.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// RequireRole returns error if the role is missing.
func (s *AccessScope) RequireRole(role Role) error {
	if !s.HasRole(role) {
		return apperror.NewForbidden(
			fmt.Sprintf("role %s required", role),
		).WithDetail("role", role)
	}
	return nil
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
