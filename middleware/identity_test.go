package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveIdentity(t *testing.T, mutate func(*http.Request)) string {
	t.Helper()

	e := echo.New()
	var got string
	e.GET("/", func(c echo.Context) error {
		got = ClientIP(c)
		return c.NoContent(http.StatusOK)
	}, ClientIdentity())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:54321"
	mutate(req)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return got
}

func TestClientIdentityPrefersForwardedFor(t *testing.T) {
	got := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 70.41.3.18")
		r.Header.Set("X-Real-IP", "198.51.100.2")
	})
	assert.Equal(t, "203.0.113.7", got)
}

func TestClientIdentityFallsBackToRealIP(t *testing.T) {
	got := resolveIdentity(t, func(r *http.Request) {
		r.Header.Set("X-Real-IP", "198.51.100.2")
	})
	assert.Equal(t, "198.51.100.2", got)
}

func TestClientIdentityFallsBackToPeerAddress(t *testing.T) {
	got := resolveIdentity(t, func(r *http.Request) {})
	assert.Equal(t, "10.0.0.9", got)
}

func TestClientIPWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "", ClientIP(c))
}
