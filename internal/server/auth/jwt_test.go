package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
)

var (
	accessSecret  = []byte("access-secret")
	refreshSecret = []byte("refresh-secret")
)

func sampleClaims() AccessClaims {
	return AccessClaims{UserID: "01HX", Username: "alice", Email: "alice@example.com", FullName: "Alice A"}
}

func withClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func TestAccessRoundTrip(t *testing.T) {
	tok, err := IssueAccess(sampleClaims(), accessSecret, time.Minute)
	require.NoError(t, err)

	got, err := VerifyAccess(tok, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, "01HX", got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice A", got.FullName)
	assert.Equal(t, TokenTypeAccess, got.Type)
	assert.NotEmpty(t, got.ID)
}

func TestRefreshRoundTrip(t *testing.T) {
	tok, err := IssueRefresh("01HX", refreshSecret, time.Hour)
	require.NoError(t, err)

	got, err := VerifyRefresh(tok, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "01HX", got.UserID)
	assert.Equal(t, TokenTypeRefresh, got.Type)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	a, err := IssueRefresh("01HX", refreshSecret, time.Hour)
	require.NoError(t, err)
	b, err := IssueRefresh("01HX", refreshSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	withClock(t, issued)

	access, err := IssueAccess(sampleClaims(), accessSecret, time.Minute)
	require.NoError(t, err)
	refresh, err := IssueRefresh("01HX", refreshSecret, time.Hour)
	require.NoError(t, err)

	now = time.Now

	_, err = VerifyAccess(access, accessSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = VerifyRefresh(refresh, refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_SecretsDoNotCross(t *testing.T) {
	access, err := IssueAccess(sampleClaims(), accessSecret, time.Minute)
	require.NoError(t, err)
	refresh, err := IssueRefresh("01HX", refreshSecret, time.Hour)
	require.NoError(t, err)

	_, err = VerifyRefresh(access, refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	_, err = VerifyAccess(refresh, accessSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_WrongKind(t *testing.T) {
	// same secret on both sides, still rejected by typ
	shared := []byte("shared")
	refresh, err := IssueRefresh("01HX", shared, time.Hour)
	require.NoError(t, err)
	access, err := IssueAccess(sampleClaims(), shared, time.Minute)
	require.NoError(t, err)

	_, err = VerifyAccess(refresh, shared)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	_, err = VerifyRefresh(access, shared)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := VerifyAccess(tok, accessSecret)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "token %q", tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "01HX",
		Type:             TokenTypeRefresh,
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = VerifyRefresh(none, refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(refreshSecret)
	require.NoError(t, err)
	_, err = VerifyRefresh(hs512, refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_MissingExpiryOrSubject(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{UserID: "01HX", Type: TokenTypeRefresh}).
		SignedString(refreshSecret)
	require.NoError(t, err)
	_, err = VerifyRefresh(noExp, refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Type:             TokenTypeRefresh,
	}).SignedString(refreshSecret)
	require.NoError(t, err)
	_, err = VerifyRefresh(noSub, refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssue_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (string, error)
	}{
		{"access empty secret", func() (string, error) { return IssueAccess(sampleClaims(), nil, time.Minute) }},
		{"access zero ttl", func() (string, error) { return IssueAccess(sampleClaims(), accessSecret, 0) }},
		{"access no user", func() (string, error) { return IssueAccess(AccessClaims{}, accessSecret, time.Minute) }},
		{"refresh empty secret", func() (string, error) { return IssueRefresh("01HX", nil, time.Hour) }},
		{"refresh negative ttl", func() (string, error) { return IssueRefresh("01HX", refreshSecret, -time.Hour) }},
		{"refresh no user", func() (string, error) { return IssueRefresh("", refreshSecret, time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := tt.fn()
			assert.Error(t, err)
			assert.Empty(t, tok)
			assert.False(t, errors.Is(err, common.ErrInvalidToken))
		})
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	tok, err := IssueAccess(sampleClaims(), accessSecret, time.Minute)
	require.NoError(t, err)
	_, err = VerifyAccess(tok, nil)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashToken("token-a"))
	assert.NotEqual(t, a, HashToken("token-b"))
}
