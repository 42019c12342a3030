package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, "owner")
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Username)
	assert.Equal(t, "owner", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, "owner")
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken("secret", -time.Minute, "owner")
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("secret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
