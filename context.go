// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Incoming request ids are reused, missing ones generated and echoed back.
const requestIDHeader = "X-Request-Id"

// The request context handed to every component.
type Context struct {
	// The incoming request that led to this component being invoked
	Request *http.Request
	// Aggregated parameters from the query string and POST data, POST data
	// wins.
	Params *Collection
	Query  *Collection
	Form   *Collection
	Server *Server
	ID     string
	Logger *logrus.Entry
	// Copied from Server.User before the component is invoked. Use this to
	// communicate global state between your components.
	User any
	// Resolved target, set before the component is invoked.
	Component string
	Method    string
	// Wrapped response, allows hooks after headers are set
	Response *ResponseWriter
	// The response writer that the component should write to.
	http.ResponseWriter
	// False iff 0 bytes of body data have been written so far
	wroteData bool
	xsrfToken string
}

func newContext(s *Server, w http.ResponseWriter, req *http.Request) *Context {
	id := req.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	rw := newResponseWriter(w)
	rw.Header().Set(requestIDHeader, id)
	ctx := &Context{
		Request:        req,
		Params:         NewCollection(nil),
		Query:          NewCollection(nil),
		Form:           NewCollection(nil),
		Server:         s,
		ID:             id,
		User:           s.User,
		Response:       rw,
		ResponseWriter: rw,
	}
	ctx.Logger = s.Logger.WithFields(logrus.Fields{
		"request_id": id,
		"method":     req.Method,
		"path":       req.URL.Path,
	})
	return ctx
}

// Parse the query string and the body. JSON bodies are decoded into Form.
func (ctx *Context) parseParams() {
	req := ctx.Request
	ctx.Query = NewCollectionFromValues(req.URL.Query())
	if isJSON(req.Header.Get("Content-Type")) && req.Body != nil {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && err != io.EOF {
			ctx.Logger.WithError(err).Debug("ignoring malformed JSON body")
		}
		ctx.Form = NewCollection(body)
	} else {
		//ignore errors from ParseForm because it's usually harmless.
		req.ParseForm()
		ctx.Form = NewCollectionFromValues(req.PostForm)
	}
	ctx.Params = ctx.Query.Merge(ctx.Form)
}

func isJSON(ctype string) bool {
	mediatype, _, err := mime.ParseMediaType(ctype)
	return err == nil && mediatype == "application/json"
}

// Path of the request, the part the resolver works on.
func (ctx *Context) Path() string {
	if ctx.Request == nil || ctx.Request.URL == nil {
		return ""
	}
	return ctx.Request.URL.Path
}

// Param returns the request parameter key, def when it is absent.
func (ctx *Context) Param(key string, def any) any {
	return ctx.Params.Get(key, def)
}

func (ctx *Context) Write(data []byte) (int, error) {
	ctx.wroteData = true
	return ctx.ResponseWriter.Write(data)
}

func (ctx *Context) WriteString(content string) (int, error) {
	return ctx.Write([]byte(content))
}

// Best-effort serialization of response data. Values that are not text or a
// stream are encoded according to the response content type, JSON if there
// is no encoder for it.
func (ctx *Context) writeAnything(i any) error {
	switch typed := i.(type) {
	case string:
		_, err := ctx.Write([]byte(typed))
		return err
	case []byte:
		_, err := ctx.Write(typed)
		return err
	case io.WriterTo:
		_, err := typed.WriteTo(ctx)
		return err
	case io.Reader:
		_, err := io.Copy(ctx, typed)
		return err
	}
	enc, ok := lookupEncoder(ctx.Header().Get("Content-Type"))
	if !ok {
		enc = JSONencoder
		ctx.ContentType("json")
	}
	data, err := enc(i)
	if err != nil {
		return err
	}
	_, err = ctx.Write(data)
	return err
}

func (ctx *Context) Abort(status int, body string) {
	ctx.WriteHeader(status)
	ctx.WriteString(body)
}

func (ctx *Context) Redirect(status int, url_ string) {
	ctx.Header().Set("Location", url_)
	ctx.Abort(status, "Redirecting to: "+url_)
}

func (ctx *Context) NotModified() {
	ctx.WriteHeader(304)
}

func (ctx *Context) NotFound(message string) {
	ctx.Abort(404, message)
}

func (ctx *Context) NotAcceptable(message string) {
	ctx.Abort(406, message)
}

func (ctx *Context) Unauthorized(message string) {
	ctx.Abort(401, message)
}

// Sets the content type by extension, as defined in the mime package.
// For example, ctx.ContentType("json") sets the content-type to "application/json"
// if the supplied extension contains a slash (/) it is set as the content-type
// verbatim without passing it to mime.  returns the content type as it was
// set, or an empty string if none was found.
func (ctx *Context) ContentType(ext string) string {
	ctype := ""
	if strings.ContainsRune(ext, '/') {
		ctype = ext
	} else {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		ctype = mime.TypeByExtension(ext)
	}
	if ctype != "" {
		ctx.Header().Set("Content-Type", ctype)
	}
	return ctype
}

func (ctx *Context) SetHeader(hdr, val string, unique bool) {
	if unique {
		ctx.Header().Set(hdr, val)
	} else {
		ctx.Header().Add(hdr, val)
	}
}

func (ctx *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(ctx, cookie)
}

// NewCookie returns a cookie expiring in age seconds, a session cookie when
// age is 0.
func NewCookie(name string, value string, age int64) *http.Cookie {
	var utctime time.Time
	if age != 0 {
		utctime = time.Unix(time.Now().Unix()+age, 0).UTC()
	}
	return &http.Cookie{Name: name, Value: value, Expires: utctime, Path: "/"}
}

// GetBasicAuth returns the user and password of the request's basic
// authorization header.
func (ctx *Context) GetBasicAuth() (string, string, error) {
	user, password, ok := ctx.Request.BasicAuth()
	if !ok {
		return "", "", errors.New("not basic authentication")
	}
	return user, password, nil
}
