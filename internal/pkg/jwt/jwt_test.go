package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/worktime-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestNewJWTService_InvalidExpiration(t *testing.T) {
	_, err := NewJWTService(testSecret, "forever")
	assert.Error(t, err)
}

func TestGenerateAccessToken(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	token, expiresAt, err := svc.GenerateAccessToken("emp-1", user.RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, int64(0))

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestSSEToken_RoundTrip(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	token, expiresIn, err := svc.GenerateSSEToken("emp-1", user.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	employeeID, role, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employeeID)
	assert.Equal(t, user.RoleEmployee, role)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	access, _, err := svc.GenerateAccessToken("emp-1", user.RoleEmployee)
	require.NoError(t, err)

	_, _, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	_, _, err = svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateSSEToken_RejectsOtherSecret(t *testing.T) {
	issuer, err := NewJWTService("another-secret", "1h")
	require.NoError(t, err)
	verifier, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	token, _, err := issuer.GenerateSSEToken("emp-1", user.RoleEmployee)
	require.NoError(t, err)

	_, _, err = verifier.ValidateSSEToken(token)
	assert.Error(t, err)
}
