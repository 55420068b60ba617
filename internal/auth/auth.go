// Package auth checks HTTP basic credentials against the configured account.
package auth

import (
	"crypto/subtle"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"indengsvc/backend/internal/pkg/config"
	"indengsvc/backend/internal/pkg/errs"
)

// ErrInvalidCredentials is returned for any username or password mismatch.
var ErrInvalidCredentials = errors.New("incorrect username or password")

type Auth struct {
	username     []byte
	passwordHash []byte
}

// New hashes the configured password once so requests compare against the
// hash instead of the plain text.
func New(cfg config.Auth) (*Auth, error) {
	if cfg.Username == "" {
		return nil, &errs.ConfigurationError{Setting: config.Prefix + "_AUTH_USERNAME"}
	}
	if cfg.Password == "" {
		return nil, &errs.ConfigurationError{Setting: config.Prefix + "_AUTH_PASSWORD"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing configured password")
	}

	return &Auth{
		username:     []byte(cfg.Username),
		passwordHash: hash,
	}, nil
}

// Check verifies both values and always runs the bcrypt comparison, so a
// wrong username costs the same as a wrong password.
func (a *Auth) Check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), a.username) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))

	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
