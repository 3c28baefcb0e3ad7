// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"strings"
	"sync"
)

// Route sends one exact URI to a component method.
type Route struct {
	URI       string `json:"uri" yaml:"uri" toml:"uri" hcl:"uri,label"`
	Component string `json:"component" yaml:"component" toml:"component" hcl:"component"`
	Method    string `json:"method" yaml:"method" toml:"method" hcl:"method,optional"`
}

// Routes is the static route table consulted before the resolver. In
// automatic mode resolved URIs whose method ran are remembered as routes.
type Routes struct {
	Automatic bool
	mux       sync.RWMutex
	routes    map[string]Route
}

func NewRoutes(automatic bool) *Routes {
	return &Routes{Automatic: automatic, routes: map[string]Route{}}
}

func (r *Routes) AddRoute(uri, component, method string) {
	uri = normalizeURI(uri)
	r.mux.Lock()
	defer r.mux.Unlock()
	r.routes[uri] = Route{URI: uri, Component: component, Method: method}
}

func (r *Routes) Lookup(uri string) (Route, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	route, ok := r.routes[normalizeURI(uri)]
	return route, ok
}

// Find returns the route for uri, falling back to the resolver for unknown
// URIs. Resolved routes are not remembered; see Remember.
func (r *Routes) Find(uri string, resolver *Resolver) (Route, bool, error) {
	if route, ok := r.Lookup(uri); ok {
		return route, true, nil
	}
	if resolver == nil {
		return Route{}, false, nil
	}
	resolution, err := resolver.Resolve(uri)
	if err != nil || !resolution.Found() {
		return Route{}, false, err
	}
	return Route{URI: normalizeURI(uri), Component: resolution.Component, Method: resolution.Method}, true, nil
}

// Remember adds route to the table in automatic mode. Call it once the
// route's method has been invoked successfully.
func (r *Routes) Remember(route Route) {
	if !r.Automatic {
		return
	}
	r.AddRoute(route.URI, route.Component, route.Method)
}

func (r *Routes) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.routes)
}

func normalizeURI(uri string) string {
	return strings.Trim(uri, "/")
}
