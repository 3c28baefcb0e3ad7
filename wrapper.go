// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"strings"
	"time"
)

// Handler type after dispatch: the component (or static file, or 404) has
// been chosen and only the context remains. Call it and it writes the
// response. Only exported to allow external definition of wrappers.
type SimpleHandler func(*Context) error

// Called for every request and passed the handler that web.go thinks should be
// called to process this specific request. Use this to do some global
// tinkering like:
//
// * specialized error pages (if werr, ok := err.(WebError); ok { ... })
//
// * encode data if client supports it (gzip etc)
//
// * set site-wide headers
//
// Note that when a wrapper is called by web.go the actual handler itself is
// NOT called by web.go it must be called by the wrapper. This allows
// fine-grained control over the context in which to call it and what to do
// with potential errors.
//
// The handler does not have to invoke a component: web.go creates handlers on
// the fly to serve static files and 404 situations. It is whatever web.go
// WOULD have called if a wrapper were not defined.
type Wrapper func(SimpleHandler, *Context) error

// Bind a simple request handler to a wrapper
func wrapHandler(wrapper Wrapper, bareh SimpleHandler) SimpleHandler {
	return func(ctx *Context) error {
		return wrapper(bareh, ctx)
	}
}

// Sets the Server and Date headers on every response.
func DefaultHeadersWrapper(h SimpleHandler, ctx *Context) error {
	ctx.Header().Set("Server", "web.go")
	ctx.Header().Set("Date", webTime(time.Now().UTC()))
	return h(ctx)
}

func webTime(t time.Time) string {
	ftime := t.Format(time.RFC1123)
	if strings.HasSuffix(ftime, "UTC") {
		ftime = ftime[0:len(ftime)-3] + "GMT"
	}
	return ftime
}
