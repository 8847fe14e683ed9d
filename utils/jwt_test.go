package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", "u1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = ValidateToken("other", token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("s3cret", "u1", "", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("s3cret", token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsEmptySecret(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "mallory",
		"role": RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(""))
	require.NoError(t, err)

	_, err = ValidateToken("", forged)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = GenerateToken("", "u1", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
