package hang

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Profile is the persisted identity blob: the logged-in user plus the
// bearer token the socket handshake carries. It is the only messaging
// state that survives a restart.
type Profile struct {
	User  ProfileUser `json:"user"`
	Token string      `json:"token"`
}

// ProfileUser identifies the logged-in user.
type ProfileUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DefaultProfilePath returns the conventional profile location under the
// user's home directory.
func DefaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hang", "profile.json"), nil
}

// LoadProfile reads the stored profile. A missing file means logged out
// and returns (nil, nil); callers build no-op clients from a nil profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, WrapError(ErrorSerialization, "decode profile", err)
	}
	return &p, nil
}

// Save writes the profile, creating the parent directory if needed.
func (p *Profile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return WrapError(ErrorSerialization, "encode profile", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// RemoveProfile deletes the stored profile (logout).
func RemoveProfile(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// TokenExpired inspects the token's exp claim without verifying the
// signature; verification is the server's job. Opaque non-JWT tokens have
// no readable expiry and are treated as still valid.
func (p *Profile) TokenExpired(now time.Time) bool {
	if p == nil || p.Token == "" {
		return true
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(p.Token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
