// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"sort"
	"sync"
)

// Factory returns a fresh, uninitialized component.
type Factory func() Instance

// Registry maps component names, as produced by the resolver, to the
// factories that build them. Go cannot load code from the resolved file, so
// the file only identifies which registered type serves the request.
type Registry struct {
	mux       sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register binds name to factory, replacing any previous binding. The
// component's descriptor is built here rather than on its first request.
func (r *Registry) Register(name string, factory Factory) {
	if instance := factory(); instance != nil {
		Describe(instance)
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.factories[name] = factory
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// New builds the component registered under name, nil if there is none.
func (r *Registry) New(name string) Instance {
	factory, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	return factory()
}

func (r *Registry) Names() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Components registered from init functions, copied into every new server.
var defaultRegistry = NewRegistry()

// Register adds a component to the registry every new server starts from.
func Register(name string, factory Factory) {
	defaultRegistry.Register(name, factory)
}
