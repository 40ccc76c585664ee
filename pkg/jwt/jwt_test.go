package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour, "presence-engine")

	token, err := m.Generate("user-1", "ada@example.com", "ada", []string{"owner"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, []string{"owner"}, claims.Roles)
	assert.Equal(t, "presence-engine", claims.Issuer)
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour, "presence-engine")

	_, err := m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewManager("secret-a", time.Hour, "presence-engine")
	verifier := NewManager("secret-b", time.Hour, "presence-engine")

	token, err := issuer.Generate("user-1", "ada@example.com", "ada", nil)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", -time.Minute, "presence-engine")

	token, err := m.Generate("user-1", "ada@example.com", "ada", nil)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
