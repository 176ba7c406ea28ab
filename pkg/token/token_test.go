package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("unit-test-secret", "donatetrack", time.Hour)

	signed, expiresAt, err := m.Issue("USR-1", "user@example.com", "donor")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "USR-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "donor", claims.Role)
	assert.Equal(t, "donatetrack", claims.Issuer)
}

func TestManager_Parse_WrongSecret(t *testing.T) {
	m := NewManager("secret-a", "donatetrack", time.Hour)
	signed, _, err := m.Issue("USR-1", "user@example.com", "donor")
	require.NoError(t, err)

	other := NewManager("secret-b", "donatetrack", time.Hour)
	_, err = other.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Parse_Expired(t *testing.T) {
	m := NewManager("unit-test-secret", "donatetrack", -time.Minute)
	signed, _, err := m.Issue("USR-1", "user@example.com", "donor")
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_Parse_Garbage(t *testing.T) {
	m := NewManager("unit-test-secret", "donatetrack", time.Hour)
	_, err := m.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
