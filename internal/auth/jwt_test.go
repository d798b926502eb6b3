package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseJWT(t *testing.T) {
	tok, err := SignJWT(42, "s3cret", time.Hour)
	require.NoError(t, err)

	uid, err := ParseJWT(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok, err := SignJWT(1, "a", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(tok, "b")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	tok, err := SignJWT(1, "a", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(tok, "a")
	assert.Error(t, err)
}
