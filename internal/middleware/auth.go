package middleware

import (
	"net/http"
	"strings"

	"github.com/mmynk/formbuilder/internal/auth"
)

// AuthedHandlerFunc is an HTTP handler that receives the resolved caller as
// an argument instead of reading it from the request context.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, p auth.Principal)

// OptionalAuthHandlerFunc receives the caller when a valid token was sent,
// or nil for anonymous requests.
type OptionalAuthHandlerFunc func(w http.ResponseWriter, r *http.Request, p *auth.Principal)

// ErrorWriter renders an error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Gate resolves bearer tokens into principals for HTTP handlers.
type Gate struct {
	verifier *auth.Verifier
	onError  ErrorWriter
}

// NewGate creates a Gate. onError renders authentication failures.
func NewGate(verifier *auth.Verifier, onError ErrorWriter) *Gate {
	return &Gate{verifier: verifier, onError: onError}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth validates the access token and passes the caller to next.
// Requests without a valid token are rejected.
func (g *Gate) RequireAuth(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			g.onError(w, r, err)
			return
		}

		_, user, err := g.verifier.Verify(r.Context(), token, auth.TokenAccess)
		if err != nil {
			g.onError(w, r, err)
			return
		}

		p := auth.PrincipalFor(user)
		annotateUser(w, p.UserID)
		next(w, r, p)
	}
}

// OptionalAuth validates the access token if present, but allows requests
// without authentication. An invalid token is treated as no token.
func (g *Gate) OptionalAuth(next OptionalAuthHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			next(w, r, nil)
			return
		}

		_, user, err := g.verifier.Verify(r.Context(), token, auth.TokenAccess)
		if err != nil {
			next(w, r, nil)
			return
		}

		p := auth.PrincipalFor(user)
		annotateUser(w, p.UserID)
		next(w, r, &p)
	}
}
