package webapi

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHeader carries the API password on authenticated requests.
const PasswordHeader = "X-API-Password"

// bcryptCost is the hashing cost factor. Cost 12 takes roughly 250ms on
// modern hardware.
const bcryptCost = 12

// Password errors.
var (
	ErrEmptyPassword    = errors.New("webapi: password cannot be empty")
	ErrPasswordMismatch = errors.New("webapi: password does not match")
)

// HashPassword creates a bcrypt hash of the given password. The hash embeds
// a random salt and the cost factor.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a bcrypt hash.
func VerifyPassword(hash, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// PasswordAuth gates API handlers behind a single shared password carried in
// the PasswordHeader. The plaintext is hashed once at construction and never
// retained.
type PasswordAuth struct {
	hash string
}

// NewPasswordAuth builds an authenticator for the given password.
func NewPasswordAuth(password string) (*PasswordAuth, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &PasswordAuth{hash: hash}, nil
}

// Middleware rejects requests whose PasswordHeader does not verify.
func (a *PasswordAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := VerifyPassword(a.hash, r.Header.Get(PasswordHeader)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing API password")
			return
		}
		next.ServeHTTP(w, r)
	})
}
