package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabled_RejectsEverything(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rr := httptest.NewRecorder()
	Disabled("admin authentication is not configured")(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/messages", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"admin authentication is not configured"}`, rr.Body.String())
	assert.False(t, called)
}
