package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	Configure("test-secret", time.Hour)

	userID := uuid.New()
	token, err := GenerateJWT(userID, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "exweb", claims.Issuer)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	Configure("test-secret", time.Hour)

	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	Configure("secret-one", time.Hour)
	token, err := GenerateJWT(uuid.New(), "admin")
	require.NoError(t, err)

	Configure("secret-two", time.Hour)
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	Configure("test-secret", time.Nanosecond)
	token, err := GenerateJWT(uuid.New(), "admin")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
