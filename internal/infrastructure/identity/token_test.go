package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, err := iss.Issue("userA", true)
	require.NoError(t, err)

	signer, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "userA", signer.Identity)
	assert.True(t, signer.IsSigner)
}

func TestIssuer_NonSigner(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, err := iss.Issue("userA", false)
	require.NoError(t, err)

	signer, err := iss.Verify(token)
	require.NoError(t, err)
	assert.False(t, signer.IsSigner)
	assert.False(t, signer.Controls("userA"))
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a", time.Hour)
	b, _ := NewIssuer("secret-b", time.Hour)

	token, err := a.Issue("userA", true)
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := iss.Issue("userA", true)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":    "userA",
		"signer": true,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = iss.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsMissingSubject(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"signer": true,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = iss.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("  ", 0)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
