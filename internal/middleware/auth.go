package middleware

import (
	"errors"
	"net/http"

	"indengsvc/backend/foundation/web"
	"indengsvc/backend/internal/auth"
)

const realm = `Basic realm="indengsvc"`

// Authenticate requires HTTP basic credentials matching the configured
// account.
func Authenticate(a *auth.Auth) web.Middleware {
	m := func(handler web.Handler) web.Handler {

		h := func(c *web.Context) error {
			username, password, ok := c.Request.BasicAuth()
			if !ok {
				c.Header("WWW-Authenticate", realm)
				err := errors.New("expected authorization header format: Basic <credentials>")
				return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
			}

			if err := a.Check(username, password); err != nil {
				c.Header("WWW-Authenticate", realm)
				return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
			}

			return handler(c)
		}

		return h
	}

	return m
}
