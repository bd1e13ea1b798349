package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewTokenManager("test-secret", 1)
	supplierID := uuid.New()
	user := &models.User{
		ID:         uuid.New(),
		Email:      "supplier@example.com",
		Role:       models.RoleSupplier,
		SupplierID: &supplierID,
	}

	token, expiresAt, err := manager.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleSupplier, claims.Role)
	require.NotNil(t, claims.SupplierID)
	assert.Equal(t, supplierID, *claims.SupplierID)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 1)
	verifier := NewTokenManager("secret-b", 1)

	token, _, err := issuer.Issue(&models.User{ID: uuid.New(), Email: "a@b.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", 1)

	claims := &Claims{
		UserID: uuid.New(),
		Email:  "old@example.com",
		Role:   models.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = manager.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_Garbage(t *testing.T) {
	manager := NewTokenManager("test-secret", 1)

	_, err := manager.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cure-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cure-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cure-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
	assert.False(t, CheckPassword("not-a-hash", "s3cure-pass"))
}
