// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
)

// wrap http.ResponseWriter to allow function hooks that are executed after the
// response headers are set and after the body is sent.
type ResponseWriter struct {
	// callbacks to execute sequentially with reference to this object after
	// all headers have been set
	afterHeaders []func(*ResponseWriter)
	// closed in reverse order when the entire response has been written,
	// closing an outer writer can flush pending data to an underlying writer.
	closers []io.Closer
	// lock to call the afterheaders functions exactly once before writing body
	once sync.Once
	// Underlying response writer, only use this for the headers
	http.ResponseWriter
	status      int
	wroteHeader bool
	written     int64
	// body data is written here. can be wrapped by afterheaders functions
	BodyWriter io.Writer
}

func newResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, BodyWriter: w}
}

func (w *ResponseWriter) triggerAfterHeaders() {
	w.once.Do(func() {
		for _, f := range w.afterHeaders {
			f(w)
		}
	})
}

func (w *ResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.BodyWriter.Write(data)
	w.written += int64(n)
	return n, err
}

func (w *ResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
	w.triggerAfterHeaders()
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Close() error {
	var err error
	for i := range w.closers {
		c := w.closers[len(w.closers)-i-1]
		err2 := c.Close()
		if err == nil && err2 != nil {
			err = err2
		}
	}
	return err
}

func (w *ResponseWriter) WrapBodyWriter(f func(w io.Writer) io.Writer) {
	w.BodyWriter = f(w.BodyWriter)
	if c, ok := w.BodyWriter.(io.Closer); ok {
		w.closers = append(w.closers, c)
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Add callback to execute when all headers have been set and body data is
// about to be written
func (w *ResponseWriter) AddAfterHeaderFunc(f func(*ResponseWriter)) {
	w.afterHeaders = append(w.afterHeaders, f)
}

// Status sent to the client, 0 while headers are pending.
func (w *ResponseWriter) Status() int {
	return w.status
}

// Written is the number of body bytes handed to the body writer.
func (w *ResponseWriter) Written() int64 {
	return w.written
}

// Return true if the status code indicates succesful handling: 1xx, 2xx or
// 3xx.
func httpSuccess(status int) bool {
	return status >= 100 && status <= 399
}

// True if the writer has sent a status code to the client indicating success
func (w *ResponseWriter) Success() bool {
	return httpSuccess(w.status)
}
