package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/id"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		CompanyID: id.New().String(),
		Email:     "cashier@example.com",
		Roles:     []string{"cashier"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.New().String(),
			Issuer:    "posledger",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestValidateToken_MapsClaims(t *testing.T) {
	claims := validClaims()
	v := NewTokenValidator(testSecret, "posledger")

	user, err := v.ValidateToken(signToken(t, testSecret, claims))
	require.NoError(t, err)

	assert.Equal(t, claims.Subject, user.UserID)
	assert.Equal(t, claims.CompanyID, user.CompanyID)
	assert.Equal(t, claims.Email, user.Email)
	assert.Equal(t, []string{"cashier"}, user.Roles)
	assert.False(t, user.IsAdmin)
}

func TestValidateToken_AdminRoleSetsIsAdmin(t *testing.T) {
	claims := validClaims()
	claims.Roles = []string{"manager", "admin"}
	v := NewTokenValidator(testSecret, "")

	user, err := v.ValidateToken(signToken(t, testSecret, claims))
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	v := NewTokenValidator(testSecret, "")

	_, err := v.ValidateToken(signToken(t, "other-secret", validClaims()))
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	v := NewTokenValidator(testSecret, "")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestValidateToken_MissingExpiry(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = nil
	v := NewTokenValidator(testSecret, "")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	claims := validClaims()
	claims.Issuer = "someone-else"
	v := NewTokenValidator(testSecret, "posledger")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestValidateToken_IssuerNotCheckedWhenUnset(t *testing.T) {
	claims := validClaims()
	claims.Issuer = "someone-else"
	v := NewTokenValidator(testSecret, "")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.NoError(t, err)
}

func TestValidateToken_MissingCompany(t *testing.T) {
	claims := validClaims()
	claims.CompanyID = ""
	v := NewTokenValidator(testSecret, "")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company_id")
}

func TestValidateToken_MissingSubject(t *testing.T) {
	claims := validClaims()
	claims.Subject = ""
	v := NewTokenValidator(testSecret, "")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestValidateToken_RejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	v := NewTokenValidator(testSecret, "")
	_, err = v.ValidateToken(signed)
	assert.Error(t, err)
}
