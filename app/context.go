package main

import (
	"context"
	"net/http"
)

type contextKey string

const tokenContextKey = contextKey("token")

func (app *application) createTokenContext(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), tokenContextKey, token)
	return r.WithContext(ctx)
}

// getTokenContext returns the bearer token extracted by the middleware, or
// an empty string when the request carried none.
func (app *application) getTokenContext(r *http.Request) string {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
