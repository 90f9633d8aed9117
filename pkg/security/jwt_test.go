package security

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&JWTConfig{SecretKey: "test-secret", Issuer: "creatorsim"})
	require.NoError(t, err)
	return m
}

func TestNewJWTManager(t *testing.T) {
	_, err := NewJWTManager(&JWTConfig{})
	assert.ErrorIs(t, err, ErrSecretKeyEmpty)

	_, err = NewJWTManager(&JWTConfig{SecretKey: "x", Algorithm: "none-such"})
	assert.True(t, errors.Is(err, ErrAlgorithmInvalid))
}

func TestGenerateAndValidate(t *testing.T) {
	m := newManager(t)

	token, err := m.GenerateToken("player-1", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.Subject)
	assert.Equal(t, "creatorsim", claims.Issuer)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("ops"))

	_, err = m.GenerateToken("")
	assert.ErrorIs(t, err, ErrSubjectMissing)
}

func TestValidateRejects(t *testing.T) {
	m := newManager(t)

	_, err := m.ValidateToken("")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = m.ValidateToken("Bearer not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	other, err := NewJWTManager(&JWTConfig{SecretKey: "other-secret"})
	require.NoError(t, err)
	token, err := other.GenerateToken("player-1")
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	m.nowFunc = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := m.GenerateToken("player-1")
	require.NoError(t, err)
	m.nowFunc = time.Now
	_, err = m.ValidateToken(old)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAlgorithmMismatch(t *testing.T) {
	m := newManager(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "p",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrAlgorithmMismatch)
}
