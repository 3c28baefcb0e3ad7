// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// any mime type shares a prefix with a string in this array will be compressed
var compressableTypePrefixes = [...]string{
	"text/",
	"application/json",
	"application/xml",
	"application/javascript",
}

// supported encodings in order of preference
var bodyEncoders = []struct {
	name string
	wrap func(io.Writer) io.Writer
}{
	{"gzip", func(w io.Writer) io.Writer { return gzip.NewWriter(w) }},
	{"deflate", func(w io.Writer) io.Writer {
		def, _ := flate.NewWriter(w, flate.DefaultCompression)
		return def
	}},
}

func compressable(ctype string) bool {
	for _, t := range compressableTypePrefixes {
		if strings.HasPrefix(ctype, t) {
			return true
		}
	}
	return false
}

// Encodings the client accepts, those with q=0 excluded.
func acceptedEncodings(header string) map[string]bool {
	accepted := map[string]bool{}
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		name := strings.ToLower(strings.TrimSpace(fields[0]))
		if name == "" {
			continue
		}
		accepted[name] = true
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}
			if q, err := strconv.ParseFloat(param[2:], 64); err == nil && q == 0 {
				accepted[name] = false
			}
		}
	}
	return accepted
}

// conditionally compress the HTTP response. this function must be executed
// after all response headers have been set by the component (because it needs
// to inspect them) but before they have been written to the client (because
// it needs to change the headers and the data writer).
func compressResponse(w *ResponseWriter, req *http.Request) {
	if !compressable(w.Header().Get("Content-Type")) {
		return
	}
	// do not re-encode
	if w.Header().Get("Content-Encoding") != "" {
		return
	}
	accepted := acceptedEncodings(req.Header.Get("Accept-Encoding"))
	for _, enc := range bodyEncoders {
		if !accepted[enc.name] {
			continue
		}
		w.WrapBodyWriter(enc.wrap)
		w.Header().Set("Content-Encoding", enc.name)
		w.Header().Del("Content-Length")
		w.Header().Add("Vary", "Accept-Encoding")
		return
	}
}

// Compress response data when applicable (client wants it and response is
// suitable)
func CompressWrapper(h SimpleHandler, ctx *Context) error {
	ctx.Response.AddAfterHeaderFunc(func(w *ResponseWriter) {
		compressResponse(w, ctx.Request)
	})
	return h(ctx)
}
