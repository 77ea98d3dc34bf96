package middleware

import (
	"github.com/labstack/echo/v4"
)

// ClientIPKey is the echo context key under which the caller's identity is
// stored for the request's lifetime.
const ClientIPKey = "client_ip"

// ClientIdentity resolves the submitter's network identity once per request
// and stashes it in the context. Echo's RealIP takes the first entry of
// X-Forwarded-For, then X-Real-IP, then the transport peer address, which
// matches the quota contract. The value is used only for quota and
// ownership checks and never written to a response.
func ClientIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ClientIPKey, c.RealIP())
			return next(c)
		}
	}
}

// ClientIP returns the identity stored by ClientIdentity, or "" when the
// middleware did not run.
func ClientIP(c echo.Context) string {
	ip, _ := c.Get(ClientIPKey).(string)
	return ip
}
