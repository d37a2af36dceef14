package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"posledger/internal/core/apperror"
	appctx "posledger/internal/core/context"
	"posledger/internal/core/security"
)

// Claims is the access-token payload. The company claim is mandatory:
// every request is scoped to the company from the token, never from
// the request body or query.
type Claims struct {
	CompanyID string   `json:"company_id"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// TokenValidator verifies HMAC-signed access tokens.
type TokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a validator for HS256 tokens.
func NewTokenValidator(secret, issuer string) *TokenValidator {
	return &TokenValidator{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// ValidateToken parses and verifies a token and maps its claims to UserContext.
func (v *TokenValidator) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("sub claim missing")
	}
	if claims.CompanyID == "" {
		return nil, fmt.Errorf("company_id claim missing")
	}

	isAdmin := false
	for _, r := range claims.Roles {
		if r == string(security.RoleAdmin) {
			isAdmin = true
		}
	}

	return &appctx.UserContext{
		UserID:    claims.Subject,
		CompanyID: claims.CompanyID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		IsAdmin:   isAdmin,
	}, nil
}

// Auth middleware validates JWT tokens and populates user context and
// the request access scope.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		// Check Bearer prefix
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token"))
			c.Abort()
			return
		}

		// Add user and scope to context
		ctx := appctx.WithUser(c.Request.Context(), user)
		ctx = security.WithScope(ctx, security.NewAccessScope(ctx))
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("user_id", user.UserID)
		c.Set("company_id", user.CompanyID)

		c.Next()
	}
}

// RequireRole middleware checks if user has one of the required roles.
// Admins pass every check.
func RequireRole(roles ...security.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := security.GetScope(c.Request.Context())
		if scope.UserID == "" {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		for _, required := range roles {
			if scope.HasRole(required) {
				c.Next()
				return
			}
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
