// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// this file is about the actual handling of a request: it comes in, what
// happens? the route table or the resolver determine which component is
// responsible, the registry builds it and its method is invoked with the
// request parameters bound to its arguments.

package web

import (
	"fmt"
	"mime"
	"net"
	"net/http"
	"path"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/gmetric"
)

type Server struct {
	Config   *Config
	Logger   *logrus.Logger
	Registry *Registry
	Routes   *Routes
	Resolver *Resolver
	// Generates the per request access logger, nil disables access logging
	AccessLogger AccessLogger
	// Passed verbatim to every component on every request
	User any
	// Identifies the user XSRF tokens are issued to
	XSRFUser func(*Context) string
	// All requests are passed through these wrappers
	Wrappers []Wrapper
	Metrics  *gmetric.Service

	fs        FileSystem
	metricMux sync.Mutex
	mux       sync.Mutex
	// Save the listener so it can be closed
	l   net.Listener
	srv *http.Server
	// secure cookie keys, derived from Config.CookieSecret
	encKey  []byte
	signKey []byte
}

type Option func(s *Server)

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithRegistry replaces the components registered with Register.
func WithRegistry(registry *Registry) Option {
	return func(s *Server) {
		s.Registry = registry
	}
}

// WithFileSystem sets where the resolver looks for component files.
func WithFileSystem(fs FileSystem) Option {
	return func(s *Server) {
		s.fs = fs
	}
}

func WithMetrics(metrics *gmetric.Service) Option {
	return func(s *Server) {
		s.Metrics = metrics
	}
}

func WithAccessLogger(logger AccessLogger) Option {
	return func(s *Server) {
		s.AccessLogger = logger
	}
}

func WithUser(user any) Option {
	return func(s *Server) {
		s.User = user
	}
}

func WithXSRFUser(fn func(*Context) string) Option {
	return func(s *Server) {
		s.XSRFUser = fn
	}
}

func NewServer(config *Config, options ...Option) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Server{Config: config, AccessLogger: DefaultAccessLogger}
	for _, option := range options {
		option(s)
	}
	if s.Logger == nil {
		s.Logger = NewLogger(config, nil)
	}
	if s.Registry == nil {
		s.Registry = NewRegistry()
		for _, name := range defaultRegistry.Names() {
			factory, _ := defaultRegistry.Lookup(name)
			s.Registry.Register(name, factory)
		}
	}
	if s.fs == nil {
		s.fs = NewFileSystem(config.SearchRoot)
	}
	if s.Metrics == nil {
		s.Metrics = gmetric.New()
	}
	s.Resolver = config.Resolver(s.fs)
	s.Routes = NewRoutes(config.AutomaticRoutes)
	for _, route := range config.Routes {
		method := route.Method
		if method == "" {
			method = config.DefaultMethod
		}
		s.Routes.AddRoute(route.URI, route.Component, method)
	}
	if config.CookieSecret != "" {
		s.encKey = genKey(config.CookieSecret, "encryption key salt")
		s.signKey = genKey(config.CookieSecret, "signature key salt")
	}
	// Set two commonly used mimetypes that are often not set by default
	// Handy for robots.txt and favicon.ico
	mime.AddExtensionType(".txt", "text/plain; charset=utf-8")
	mime.AddExtensionType(".ico", "image/x-icon")
	s.AddWrapper(DefaultHeadersWrapper)
	return s, nil
}

// Queue response wrapper that is called after all other wrappers
func (s *Server) AddWrapper(wrap Wrapper) {
	s.Wrappers = append(s.Wrappers, wrap)
}

func (s *Server) SetLogger(logger *logrus.Logger) {
	s.Logger = logger
}

// Fully clothed request handler
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch {
	case s.isWebsocket(req):
		s.serveWebsocket(w, req)
	case s.isMetricRequest(req):
		s.serveMetrics(w, req)
	default:
		s.Process(w, req)
	}
}

// Process dispatches one plain HTTP request to its component.
func (s *Server) Process(w http.ResponseWriter, req *http.Request) {
	ctx := newContext(s, w, req)
	ctx.parseParams()

	var alog OneAccessLogger = nopAccessLogger{}
	if s.AccessLogger != nil {
		alog = s.AccessLogger(ctx)
	}
	alog.LogRequest(req)
	if ctx.Params.Len() > 0 {
		alog.LogParams(ctx.Params)
	}
	ctx.Response.AddAfterHeaderFunc(func(w *ResponseWriter) {
		alog.LogHeader(w.Status(), w.Header())
	})
	err := s.handle(ctx)
	if cerr := ctx.Response.Close(); cerr != nil {
		ctx.Logger.WithError(cerr).Debug("closing response")
	}
	alog.LogDone(err)
}

// Pass the dispatcher through the wrappers and apply it to ctx.
func (s *Server) handle(ctx *Context) error {
	var simpleh SimpleHandler = s.dispatch
	for _, wrap := range s.Wrappers {
		simpleh = wrapHandler(wrap, simpleh)
	}
	return s.applyHandler(simpleh, ctx)
}

// Find the component for the request path and invoke it. Static files are
// served when nothing resolves.
func (s *Server) dispatch(ctx *Context) error {
	route, found, err := s.Routes.Find(ctx.Path(), s.Resolver)
	if found {
		return s.invoke(ctx, route)
	}
	if path := s.findFile(ctx.Request); path != "" {
		http.ServeFile(ctx, ctx.Request, path)
		return nil
	}
	if err != nil {
		return err
	}
	return WebError{404, "Page not found"}
}

func (s *Server) invoke(ctx *Context, route Route) error {
	instance := s.Registry.New(route.Component)
	if instance == nil {
		ctx.Logger.WithField("component", route.Component).Warn("component resolved but not registered")
		return WebError{404, "Page not found"}
	}
	ctx.Component = route.Component
	ctx.Method = route.Method
	// Set the default content-type
	ctx.ContentType("text/html; charset=utf-8")

	onDone := s.Counter(route.Component).Begin(time.Now())
	instance.Initialize(instance, ctx, route.Method, ctx.Params)
	err := instance.Call()
	if err != nil {
		onDone(time.Now(), err)
		return err
	}
	onDone(time.Now())
	s.Routes.Remember(route)
	return nil
}

// Calls function with recover block. The first return value is whatever the
// function returns if it didnt panic. The second is what was passed to panic()
// if it did.
func (s *Server) safelyCall(ctx *Context, f func() error) (softerr error, harderr interface{}) {
	defer func() {
		if err := recover(); err != nil {
			// raised by the Collection accessors, a client error
			if werr, ok := err.(WebError); ok {
				softerr = werr
				return
			}
			if !s.Config.RecoverPanic {
				// go back to panic
				ctx.Logger.Errorf("Panic: %v", err)
				panic(err)
			}
			harderr = err
			ctx.Logger.WithField("stack", string(debug.Stack())).Errorf("Component crashed with error: %v", err)
		}
	}()
	return f(), nil
}

// Apply the handler to this context and try to handle errors where possible
func (s *Server) applyHandler(f SimpleHandler, ctx *Context) (err error) {
	softerr, harderr := s.safelyCall(ctx, func() error {
		return f(ctx)
	})
	if harderr != nil {
		//there was an error or panic while calling the component
		ctx.Abort(500, "Server Error")
		return fmt.Errorf("%v", harderr)
	}
	if softerr != nil {
		werr := asWebError(softerr)
		ctx.Logger.WithError(softerr).WithField("status", werr.Code).Info("component returned error")
		// Non-web errors are not leaked to the outside
		ctx.Abort(werr.Code, werr.Error())
		err = softerr
	}
	return
}

// If this request corresponds to a static file return its path
func (s *Server) findFile(req *http.Request) string {
	if req.Method != "GET" && req.Method != "HEAD" {
		return ""
	}
	// rooted, so no ".." survives
	reqPath := path.Clean("/" + req.URL.Path)
	for _, staticDir := range s.Config.StaticDirs {
		staticFile := path.Join(staticDir, reqPath)
		if OSFileSystem.IsFile(staticFile) {
			return staticFile
		}
	}

	// Try to serve index.html || index.htm
	indexFilenames := []string{"index.html", "index.htm"}
	for _, staticDir := range s.Config.StaticDirs {
		for _, indexFilename := range indexFilenames {
			if indexPath := path.Join(staticDir, reqPath, indexFilename); OSFileSystem.IsFile(indexPath) {
				return indexPath
			}
		}
	}
	return ""
}

type nopAccessLogger struct{}

func (nopAccessLogger) LogRequest(*http.Request)   {}
func (nopAccessLogger) LogParams(*Collection)      {}
func (nopAccessLogger) LogHeader(int, http.Header) {}
func (nopAccessLogger) LogDone(error)              {}
