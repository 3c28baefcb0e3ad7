// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestServer_Websocket(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.WebsocketPath = "/ws"
	})
	srv := httptest.NewServer(s)
	defer srv.Close()

	ws, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "", "http://localhost/")
	require.Nil(t, err)
	defer ws.Close()

	var useCases = []struct {
		description string
		request     SocketRequest
		expect      SocketResponse
	}{
		{
			description: "bound from data",
			request:     SocketRequest{ID: "1", Path: "/Home/test", Data: map[string]any{"arg1": "a"}},
			expect:      SocketResponse{ID: "1", Status: 200, Body: "1:a 2:default"},
		},
		{
			description: "json numbers",
			request:     SocketRequest{ID: "2", Path: "Home/sum", Data: map[string]any{"a": 40, "b": 2}},
			expect:      SocketResponse{ID: "2", Status: 200, Body: "42"},
		},
		{
			description: "defaults",
			request:     SocketRequest{ID: "3", Path: "/Home/test"},
			expect:      SocketResponse{ID: "3", Status: 200, Body: "1:def 2:default"},
		},
		{
			description: "dispatch error",
			request:     SocketRequest{ID: "4", Path: "/Home/privateMethod"},
			expect:      SocketResponse{ID: "4", Status: 400, Body: "access denied: you are not authorized to call web.Home::privateMethod"},
		},
		{
			description: "not found",
			request:     SocketRequest{ID: "5", Path: "/Nothing/here"},
			expect:      SocketResponse{ID: "5", Status: 404, Body: "Page not found"},
		},
	}
	for _, useCase := range useCases {
		require.Nil(t, websocket.JSON.Send(ws, useCase.request), useCase.description)
		var response SocketResponse
		require.Nil(t, websocket.JSON.Receive(ws, &response), useCase.description)
		assert.Equal(t, useCase.expect, response, useCase.description)
	}
}

func TestServer_WebsocketPathWithoutUpgrade(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.WebsocketPath = "/ws"
	})
	// a plain request to the socket path is dispatched as usual
	testRouting(t, s, Test{method: "GET", path: "/ws", expectedStatus: 404, expectedBody: "Page not found"})
}
