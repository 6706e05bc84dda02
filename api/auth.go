/*
auth.go - Caller identity extraction

PURPOSE:
  Decodes the caller-declared identity headers into a ledger.AuthContext
  and attaches it to the request context. The headers are trusted request
  metadata, not a verified token; the engine re-checks the role on every
  gated operation, so swapping this middleware for a real session layer
  later requires no engine changes.

HEADERS:
  X-Role:    admin | commander | logistics
  X-Base-ID: the caller's home base (commander/logistics)
  X-User-ID: the caller's user id, recorded on transactions
*/
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/manojmanoj143/assigment/ledger"
)

type contextKey string

const authContextKey contextKey = "authContext"

// AuthContext is middleware that decodes identity headers on every request.
func AuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := ledger.AuthContext{
			Role: ledger.Role(r.Header.Get("X-Role")),
		}
		if v := r.Header.Get("X-Base-ID"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				baseID := ledger.BaseID(id)
				auth.BaseID = &baseID
			}
		}
		if v := r.Header.Get("X-User-ID"); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				auth.UserID = ledger.UserID(id)
			}
		}

		ctx := context.WithValue(r.Context(), authContextKey, auth)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authFrom returns the caller identity attached by AuthContext. A request
// that skipped the middleware gets the zero value, which authorizes
// nothing.
func authFrom(r *http.Request) ledger.AuthContext {
	auth, _ := r.Context().Value(authContextKey).(ledger.AuthContext)
	return auth
}
