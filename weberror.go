// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"errors"
	"net/http"
)

// Failures raised by the resolver and the binder. Callers classify them with
// errors.Is; the message after the colon carries the detail.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrBadRequest           = errors.New("bad request")
	ErrNoSuchMethod         = errors.New("no such method")
	ErrAccessDenied         = errors.New("access denied")
	ErrUnsupportedParameter = errors.New("unsupported parameter")
	ErrInvalidArgument      = errors.New("invalid argument value")
)

type WebError struct {
	Code int
	Err  string
}

func (err WebError) Error() string {
	return err.Err
}

// StatusOf maps a dispatch error to the HTTP status reported to the client.
func StatusOf(err error) int {
	var werr WebError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &werr):
		return werr.Code
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrNoSuchMethod),
		errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	}
	// ErrInvalidConfiguration, ErrUnsupportedParameter and anything else
	return http.StatusInternalServerError
}

// Convert a dispatch error into the WebError written to the client. Errors of
// unknown origin are not leaked to the outside.
func asWebError(err error) WebError {
	var werr WebError
	if errors.As(err, &werr) {
		return werr
	}
	code := StatusOf(err)
	if code == http.StatusBadRequest {
		return WebError{code, err.Error()}
	}
	return WebError{code, "Server Error"}
}
