package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.Generate(id)
	require.NoError(t, err)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Generate(uuid.New())
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)
	token, err := m.Generate(uuid.New())
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secreto123"))
	assert.False(t, CheckPassword(hash, "otra"))
}

func TestRandomCode(t *testing.T) {
	code, err := RandomCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r))
	}
}
