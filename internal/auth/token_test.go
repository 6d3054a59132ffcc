package auth

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/models"
)

var testSecret = []byte("test-secret")

func newTestManager(now time.Time) *TokenManager {
	m := NewTokenManager(testSecret, 30*time.Minute, 60*time.Minute)
	m.Now = func() time.Time { return now }
	return m
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "alice", Name: "Alice", Root: true}
}

func TestIssuePair_ClaimsRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := newTestManager(now)
	u := testUser()

	pair, err := m.IssuePair(u)
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.EqualValues(t, 1800, pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := m.Verify(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, access.UserID)
	assert.Equal(t, "alice", access.Username)
	assert.True(t, access.Root)
	assert.Equal(t, TypeAccess, access.Type)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), access.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), access.IssuedAt.Unix())

	refresh, err := m.Verify(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, now.Add(60*time.Minute).Unix(), refresh.ExpiresAt.Unix())
}

func TestVerify_WrongType(t *testing.T) {
	m := newTestManager(time.Now())
	pair, err := m.IssuePair(testUser())
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, TypeRefresh)
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.ErrorIs(t, err, apperror.ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "Token is invalid.", err.Error())

	_, err = m.Verify(pair.RefreshToken, TypeAccess)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Now()
	m := newTestManager(issued)
	pair, err := m.IssuePair(testUser())
	require.NoError(t, err)

	m.Now = func() time.Time { return issued.Add(31 * time.Minute) }

	_, err = m.Verify(pair.AccessToken, TypeAccess)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "token is expired.", err.Error())

	_, err = m.Verify(pair.RefreshToken, TypeRefresh)
	require.NoError(t, err, "refresh token outlives the access token")
}

func TestVerify_Tampered(t *testing.T) {
	m := newTestManager(time.Now())
	pair, err := m.IssuePair(testUser())
	require.NoError(t, err)

	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.Verify(tampered, TypeAccess)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Verify("not-a-token", TypeAccess)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_OtherSecret(t *testing.T) {
	pair, err := newTestManager(time.Now()).IssuePair(testUser())
	require.NoError(t, err)

	other := NewTokenManager([]byte("other"), time.Minute, time.Minute)
	_, err = other.Verify(pair.AccessToken, TypeAccess)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_MissingClaims(t *testing.T) {
	m := newTestManager(time.Now())
	exp := time.Now().Add(time.Minute).Unix()

	cases := map[string]jwt.MapClaims{
		"no user_id":  {"username": "alice", "type": TypeAccess, "exp": exp},
		"no username": {"user_id": uuid.NewString(), "type": TypeAccess, "exp": exp},
		"no type":     {"user_id": uuid.NewString(), "username": "alice", "exp": exp},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
			require.NoError(t, err)

			_, err = m.Verify(raw, TypeAccess)
			require.ErrorIs(t, err, ErrTokenInvalid)
			assert.Equal(t, http.StatusUnauthorized, apperror.Status(err))
		})
	}
}

func TestVerify_RejectsNoneAlg(t *testing.T) {
	m := newTestManager(time.Now())
	claims := jwt.MapClaims{
		"user_id":  uuid.NewString(),
		"username": "alice",
		"type":     TypeAccess,
		"exp":      time.Now().Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(raw, TypeAccess)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
