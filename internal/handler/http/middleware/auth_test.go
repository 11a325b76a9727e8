package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripQueryToken(t *testing.T) {
	var gotQuery, gotURI, gotToken string
	h := StripQueryToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotURI = r.RequestURI
		gotToken = TokenFromQuery(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?token=secret-jwt&limit=5", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "limit=5", gotQuery)
	assert.Equal(t, "/api/v1/events?limit=5", gotURI)
	assert.Equal(t, "secret-jwt", gotToken)
	assert.Equal(t, "token=secret-jwt&limit=5", req.URL.RawQuery)
}

func TestStripQueryToken_NoToken(t *testing.T) {
	var gotToken string
	h := StripQueryToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = TokenFromQuery(r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/events?limit=5", nil))

	assert.Empty(t, gotToken)
}
