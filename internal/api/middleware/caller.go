package middleware

import (
	"context"
	"net/http"
)

// callerContextKey is the context key family for this package.
type callerContextKey string

const callerAccountKey callerContextKey = "caller_account_id"

// CallerHeader is the header public-surface callers supply their account
// id in, standing in for the chain host's predecessor_account_id.
const CallerHeader = "X-Account-Id"

// WithCallerAccount injects the X-Account-Id header into the request
// context so downstream handlers never read headers directly.
func WithCallerAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := r.Header.Get(CallerHeader)
		ctx := context.WithValue(r.Context(), callerAccountKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerAccount returns the caller account id injected by WithCallerAccount
// or withCallerAccountValue, or "" if neither ran.
func CallerAccount(r *http.Request) string {
	caller, _ := r.Context().Value(callerAccountKey).(string)
	return caller
}

// withCallerAccountValue injects an already-known caller identity (e.g.
// from an admin session) rather than reading it from a header.
func withCallerAccountValue(r *http.Request, caller string) *http.Request {
	ctx := context.WithValue(r.Context(), callerAccountKey, caller)
	return r.WithContext(ctx)
}
