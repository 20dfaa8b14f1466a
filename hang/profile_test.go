package hang

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.json")
	p := &Profile{
		User:  ProfileUser{ID: 3, Username: "alice", Email: "a@example.com"},
		Token: "knox-token",
	}
	require.NoError(t, p.Save(path))

	got, err := LoadProfile(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *p, *got)
}

func TestLoadProfileMissingMeansLoggedOut(t *testing.T) {
	got, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemoveProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	p := &Profile{User: ProfileUser{Username: "alice"}, Token: "t"}
	require.NoError(t, p.Save(path))
	require.NoError(t, RemoveProfile(path))

	got, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Removing an already-missing profile is fine.
	require.NoError(t, RemoveProfile(path))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	expired := &Profile{Token: signedToken(t, now.Add(-time.Hour))}
	assert.True(t, expired.TokenExpired(now))

	valid := &Profile{Token: signedToken(t, now.Add(time.Hour))}
	assert.False(t, valid.TokenExpired(now))
}

func TestTokenExpiredOpaqueToken(t *testing.T) {
	// Knox tokens are opaque; without a readable exp claim the client
	// treats them as valid and lets the server decide.
	p := &Profile{Token: "8f14e45fceea167a"}
	assert.False(t, p.TokenExpired(time.Now()))
}

func TestTokenExpiredEmpty(t *testing.T) {
	assert.True(t, (&Profile{}).TokenExpired(time.Now()))
	var nilProfile *Profile
	assert.True(t, nilProfile.TokenExpired(time.Now()))
}
