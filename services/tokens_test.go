package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"kyc-hub/models"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, "kyc-hub")
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	token, issued, err := svc.Issue(u)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "kyc-hub", claims.Issuer)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour, "kyc-hub")
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}

	t.Run("foreign signature", func(t *testing.T) {
		other := NewTokenService("another-secret", time.Hour, "kyc-hub")
		token, _, err := other.Issue(u)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenService("test-secret", time.Hour, "kyc-hub")
		old.clock = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := old.Issue(u)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenServiceDefaultTTL(t *testing.T) {
	svc := NewTokenService("s", 0, "")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	_, claims, err := svc.Issue(&models.User{ID: primitive.NewObjectID(), Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), claims.ExpiresAt.Time)
}
