package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverPanic(t *testing.T) {
	app := newBareTestApplication()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something broke")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	app.recoverPanic(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestExtractToken(t *testing.T) {
	app := newBareTestApplication()

	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "No Header", header: "", want: ""},
		{name: "Bearer Token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "Wrong Scheme", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "Bare Token", header: "abc.def.ghi", want: ""},
		{name: "Lowercase Scheme", header: "bearer abc.def.ghi", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = app.getTokenContext(r)
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			app.extractToken(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, got)
			assert.Equal(t, "Authorization", rec.Header().Get("Vary"))
		})
	}
}

func TestGetTokenContext_NoMiddleware(t *testing.T) {
	app := newBareTestApplication()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", app.getTokenContext(req))
}
