package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridepoolapp/backend/internal/middleware"
)

func TestIdentity_HeaderPresent(t *testing.T) {
	var got string
	h := middleware.NewIdentity()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/me/trips", nil)
	req.Header.Set("X-User-ID", "user-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "user-42", got)
}

func TestIdentity_Anonymous(t *testing.T) {
	var got string
	h := middleware.NewIdentity()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.UserID(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/trips", nil))

	assert.Empty(t, got)
}
