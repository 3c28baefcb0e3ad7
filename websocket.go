// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"
)

// SocketRequest is one component call sent over a websocket. Path is resolved
// like a request path and Data is bound to the method parameters.
type SocketRequest struct {
	ID   string         `json:"id"`
	Path string         `json:"path"`
	Data map[string]any `json:"data"`
}

// SocketResponse answers the SocketRequest with the same ID.
type SocketResponse struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func (s *Server) isWebsocket(req *http.Request) bool {
	uri := s.Config.WebsocketPath
	return uri != "" && req.URL.Path == uri && strings.EqualFold(req.Header.Get("Upgrade"), "websocket")
}

func (s *Server) serveWebsocket(w http.ResponseWriter, req *http.Request) {
	websocket.Server{Handler: s.serveSocket}.ServeHTTP(w, req)
}

// Read requests off the connection until it closes, answering each in turn.
func (s *Server) serveSocket(ws *websocket.Conn) {
	defer ws.Close()
	logger := s.Logger.WithField("remote", ws.Request().RemoteAddr)
	for {
		var request SocketRequest
		if err := websocket.JSON.Receive(ws, &request); err != nil {
			if err != io.EOF {
				logger.WithError(err).Debug("websocket receive")
			}
			return
		}
		response := s.dispatchMessage(ws.Request(), &request)
		if err := websocket.JSON.Send(ws, response); err != nil {
			logger.WithError(err).Debug("websocket send")
			return
		}
	}
}

// Dispatch a websocket message the way an HTTP GET of its path would be.
func (s *Server) dispatchMessage(upgrade *http.Request, request *SocketRequest) *SocketResponse {
	req := upgrade.Clone(upgrade.Context())
	req.Method = "GET"
	req.URL = &url.URL{Path: "/" + strings.TrimLeft(request.Path, "/")}
	req.Header.Del("Upgrade")
	req.Header.Del(requestIDHeader)
	if request.ID != "" {
		req.Header.Set(requestIDHeader, request.ID)
	}
	recorder := newBufferedResponse()
	ctx := newContext(s, recorder, req)
	ctx.Params = NewCollection(request.Data)
	ctx.Form = ctx.Params
	err := s.handle(ctx)
	if cerr := ctx.Response.Close(); cerr != nil {
		ctx.Logger.WithError(cerr).Debug("closing response")
	}
	if err != nil {
		ctx.Logger.WithError(err).Debug("websocket call failed")
	}
	return &SocketResponse{ID: request.ID, Status: recorder.status, Body: recorder.body.String()}
}

// Collects a response in memory.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}, status: http.StatusOK}
}

func (r *bufferedResponse) Header() http.Header {
	return r.header
}

func (r *bufferedResponse) Write(data []byte) (int, error) {
	return r.body.Write(data)
}

func (r *bufferedResponse) WriteHeader(status int) {
	r.status = status
}
