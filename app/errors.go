package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url))
}

// writeErrorResponse emits the stable failure shape: a JSON object with a
// single error string and the matching status code.
func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	err := app.writeJSON(w, status, envelope{"error": message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.writeErrorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "resource not found")
}

func (app *application) unknownEndpointResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "unknown endpoint")
}

// errorResponse classifies a service failure exactly once per request and
// maps it onto the closed set of externally visible outcomes. A missing or
// bad credential and an unresolvable token subject are both 401 but keep
// distinct messages; an authenticated non-owner is 403, never collapsed into
// either. Duplicate usernames map to 400, matching the behavior the API has
// always shipped. Anything unrecognized falls through to the generic fault
// response.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError

	switch {
	case errors.Is(err, blogservice.ErrMalformedID):
		app.writeErrorResponse(w, r, http.StatusBadRequest, "malformed id")
	case errors.As(err, &validationErr):
		app.writeErrorResponse(w, r, http.StatusBadRequest, validationErr.Message())
	case errors.Is(err, userservice.ErrDuplicateUsername):
		app.writeErrorResponse(w, r, http.StatusBadRequest, "expected `username` to be unique")
	case errors.Is(err, userservice.ErrMissingToken), errors.Is(err, userservice.ErrInvalidToken):
		app.writeErrorResponse(w, r, http.StatusUnauthorized, "token invalid")
	case errors.Is(err, userservice.ErrNotFound), errors.Is(err, blogservice.ErrUserForeignKey):
		app.writeErrorResponse(w, r, http.StatusUnauthorized, "user not found")
	case errors.Is(err, userservice.ErrAuthenticationFailure):
		app.writeErrorResponse(w, r, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, blogservice.ErrNotOwner):
		app.writeErrorResponse(w, r, http.StatusForbidden, "user not authorized to delete this blog")
	case errors.Is(err, blogservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
