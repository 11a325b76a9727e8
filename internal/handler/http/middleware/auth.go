package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-console/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-console/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/jwt"
)

type contextKey int

const (
	identityKey contextKey = iota
	queryTokenKey
)

// StripQueryToken removes the "token" query parameter from the request URL
// so it never reaches the request log. The value is kept on the context for
// TokenFromQuery. It must run before the request logger.
func StripQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		token := q.Get("token")
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		q.Del("token")
		r = r.WithContext(context.WithValue(r.Context(), queryTokenKey, token))
		u := *r.URL
		u.RawQuery = q.Encode()
		r.URL = &u
		r.RequestURI = u.RequestURI()
		next.ServeHTTP(w, r)
	})
}

// TokenFromQuery returns the token that StripQueryToken took off the query
// string. Browsers cannot set headers on an EventSource.
func TokenFromQuery(r *http.Request) string {
	token, _ := r.Context().Value(queryTokenKey).(string)
	return token
}

// Verifier accepts a bearer token from the Authorization header only.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, jwtauth.TokenFromHeader)
}

// StreamVerifier also accepts the token from the query string. Use it only
// on the event stream.
func StreamVerifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, jwtauth.TokenFromHeader, TokenFromQuery)
}

// AuthRequired rejects requests without a valid token. The caller's identity
// and raw token are put on the context; the token is forwarded to the backend.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		identity, err := jwt.IdentityFromClaims(claims)
		if err != nil {
			response.HandleError(w, auth.ErrMissingClaims)
			return
		}

		raw := jwtauth.TokenFromHeader(r)
		if raw == "" {
			raw = TokenFromQuery(r)
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		ctx = apiclient.ContextWithToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the identity set by AuthRequired.
func IdentityFromContext(ctx context.Context) (jwt.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(jwt.Identity)
	return identity, ok
}
