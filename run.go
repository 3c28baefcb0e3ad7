// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/fcgi"
)

func (s *Server) listen(addr string) (net.Listener, error) {
	if addr == "" {
		addr = s.Config.Addr
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	s.l = l
	s.mux.Unlock()
	return l, nil
}

// Listen for HTTP connections, on Config.Addr when addr is empty
func (s *Server) Run(addr string) error {
	l, err := s.listen(addr)
	if err != nil {
		return err
	}
	defer l.Close()
	srv := &http.Server{Handler: s}
	s.mux.Lock()
	s.srv = srv
	s.mux.Unlock()
	s.Logger.Info("web.go serving ", l.Addr())
	if err = srv.Serve(l); errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Listen for HTTPS connections
func (s *Server) RunTLS(addr, certFile, keyFile string) error {
	if certFile == "" {
		certFile = s.Config.Cert
	}
	if keyFile == "" {
		keyFile = s.Config.Key
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("opening certificate: %w", err)
	}
	l, err := s.listen(addr)
	if err != nil {
		return err
	}
	defer l.Close()
	srv := &http.Server{Handler: s}
	s.mux.Lock()
	s.srv = srv
	s.mux.Unlock()
	tlsListener := tls.NewListener(l, &tls.Config{Certificates: []tls.Certificate{cert}})
	s.Logger.Info("web.go serving with TLS ", l.Addr())
	if err = srv.Serve(tlsListener); errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Runs the web application and serves fcgi requests for this Server object.
func (s *Server) RunFcgi(addr string) error {
	l, err := s.listen(addr)
	if err != nil {
		return err
	}
	defer l.Close()
	s.Logger.Info("web.go serving fcgi ", l.Addr())
	return fcgi.Serve(l, s)
}

// Addr of the listener, empty when the server is not running.
func (s *Server) Addr() string {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.l == nil {
		return ""
	}
	return s.l.Addr().String()
}

// Stops the web server
func (s *Server) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.srv != nil {
		return s.srv.Close()
	}
	if s.l != nil {
		return s.l.Close()
	}
	return nil
}
