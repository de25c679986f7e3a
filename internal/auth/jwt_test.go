package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-that-is-long-enough-32", time.Hour)
	memberID := uuid.New()

	token, err := mgr.GenerateToken(memberID, "alice@example.com", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID.String(), claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.DisplayName)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("correct-secret-that-is-long-enough", time.Hour)
	other := NewJWTManager("different-secret-that-is-long-too", time.Hour)

	token, err := mgr.GenerateToken(uuid.New(), "", "")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret-that-is-long-enough-32", -time.Minute)

	token, err := mgr.GenerateToken(uuid.New(), "", "")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret-that-is-long-enough-32", time.Hour)

	_, err := mgr.ValidateToken("not-a-token")
	assert.Error(t, err)
}
