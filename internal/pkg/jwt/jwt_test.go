package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

func TestJWTService_EncodeVerify(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt")

	token, err := svc.Encode(Identity{UserID: "u-1", Role: user.RoleAdmin, Email: "a@example.com"}, time.Hour)
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.UserID)
	assert.True(t, identity.IsAdmin())
	assert.Equal(t, "a@example.com", identity.Email)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("other-secret").Encode(Identity{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret-key-for-jwt").Verify(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt")
	token, err := svc.Encode(Identity{UserID: "u-1"}, -time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		want   string
	}{
		{"user_id wins", map[string]interface{}{"user_id": "a", "id": "b", "sub": "c"}, "a"},
		{"id", map[string]interface{}{"id": "b", "role": "employee"}, "b"},
		{"userId", map[string]interface{}{"userId": "d"}, "d"},
		{"sub", map[string]interface{}{"sub": "c"}, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := IdentityFromClaims(tt.claims)
			require.NoError(t, err)
			assert.Equal(t, tt.want, identity.UserID)
		})
	}

	_, err := IdentityFromClaims(map[string]interface{}{"role": "admin"})
	assert.ErrorIs(t, err, ErrMissingUserID)
}
