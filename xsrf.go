// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// XSRF support
// set Server.XSRFUser (WithXSRFUser) to identify the user a token is issued to
// call XSRFFormField to get a hidden form field, then add to the form
// before process POST request, use XSRFValidate to validate _xsrf form value

package web

import (
	"html"
	"time"

	"golang.org/x/net/xsrftoken"
)

const xsrfField = "_xsrf"

// XSRFToken returns the token of the current user, issuing it in a secure
// cookie when the request carries none. Empty without a cookie secret or a
// user.
func (ctx *Context) XSRFToken() string {
	if ctx.xsrfToken != "" {
		return ctx.xsrfToken
	}
	server := ctx.Server
	if server.XSRFUser == nil || server.Config.CookieSecret == "" {
		return ""
	}
	uid := server.XSRFUser(ctx)
	if uid == "" {
		return ""
	}
	if token, ok := ctx.GetSecureCookie(xsrfField); ok && xsrftoken.Valid(token, server.Config.CookieSecret, uid, "POST") {
		ctx.xsrfToken = token
		return token
	}
	token := xsrftoken.Generate(server.Config.CookieSecret, uid, "POST")
	if err := ctx.SetSecureCookie(xsrfField, token, int64(xsrftoken.Timeout/time.Second)); err != nil {
		ctx.Logger.WithError(err).Warn("failed to issue xsrf token")
		return ""
	}
	ctx.xsrfToken = token
	return token
}

// XSRFValidate reports whether the posted _xsrf value matches the token of
// the current user.
func XSRFValidate(ctx *Context) bool {
	token := ctx.XSRFToken()
	if token == "" {
		return false
	}
	return token == ctx.Request.FormValue(xsrfField)
}

func XSRFFormField(ctx *Context) string {
	return "<input type=\"hidden\" name=\"" + xsrfField + "\" value=\"" +
		html.EscapeString(ctx.XSRFToken()) + "\"/>"
}
