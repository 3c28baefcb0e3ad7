// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the server logger from the log_level and log_format
// settings. Unknown levels fall back to info.
func NewLogger(cfg *Config, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := logrus.New()
	logger.SetOutput(out)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: !cfg.ColorOutput,
			FullTimestamp: true,
		})
	}
	return logger
}

// Log one request by calling every method in the order defined below. Logging
// may be done in a separate goroutine from handling. Arguments are passed by
// reference for efficiency but MUST NOT be changed!
type OneAccessLogger interface {
	// Called with the raw incoming request
	LogRequest(*http.Request)
	// Parameters as parsed by web.go, only called when there are any
	LogParams(*Collection)
	// Called when headers are set by the component and will be written to
	// the client
	LogHeader(status int, header http.Header)
	// Called when response has been written to client. If an error occurred at
	// any point during handling it is passed as an argument. Otherwise err is
	// nil.
	LogDone(err error)
}

// Factory function that generates new one-shot access loggers
type AccessLogger func(*Context) OneAccessLogger

type plainOneAccessLogger struct{ *logrus.Entry }

func (l plainOneAccessLogger) LogRequest(req *http.Request) {
	l.Infof("%s %s", req.Method, req.URL.Path)
}

func (l plainOneAccessLogger) LogParams(p *Collection) {
	l.Infof("Params: %v", p.Map())
}

func (l plainOneAccessLogger) LogHeader(status int, h http.Header) {
	l.WithField("status", status).Debug("headers sent")
}

func (l plainOneAccessLogger) LogDone(err error) {
	if err != nil {
		l.WithError(err).Warn("request failed")
	}
}

type coloredOneAccessLogger struct{ *logrus.Entry }

func (l coloredOneAccessLogger) LogRequest(req *http.Request) {
	l.Infof("%s%s %s%s", ttyCodes.green, req.Method, req.URL.Path, ttyCodes.reset)
}

func (l coloredOneAccessLogger) LogParams(p *Collection) {
	l.Infof("%sParams: %v%s", ttyCodes.white, p.Map(), ttyCodes.reset)
}

func (l coloredOneAccessLogger) LogHeader(status int, h http.Header) {
	code := ttyCodes.green
	if !httpSuccess(status) {
		code = ttyCodes.red
	}
	l.WithField("status", status).Debugf("%sheaders sent%s", code, ttyCodes.reset)
}

func (l coloredOneAccessLogger) LogDone(err error) {
	if err != nil {
		l.WithError(err).Warnf("%srequest failed%s", ttyCodes.red, ttyCodes.reset)
	}
}

// Simple stateless access logger that prints all requests to the request
// logger
func DefaultAccessLogger(ctx *Context) OneAccessLogger {
	if ctx.Server.Config.ColorOutput {
		return coloredOneAccessLogger{ctx.Logger}
	}
	return plainOneAccessLogger{ctx.Logger}
}
