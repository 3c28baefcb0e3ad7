// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"fmt"
	"sync"
)

// Instance is what the server needs from a component: it is initialized with
// the request it serves, then its method is invoked.
type Instance interface {
	Initialize(self Instance, ctx *Context, method string, data DataSource)
	Method() string
	Data() DataSource
	HasMethod(name string) bool
	Invoke(method string) error
	Call() error
}

// Component is the base every component embeds. It keeps the request context
// (and through it the server), the method to call and the data its
// parameters are bound from.
//
//	type Home struct{ web.Component }
//
//	func (h *Home) Index() string { return "Hello Index!" }
type Component struct {
	self   any
	ctx    *Context
	method string
	data   DataSource

	once       sync.Once
	descriptor *Descriptor
}

// Initialize attaches the component to a request. self is the outer value
// embedding Component; its methods are the ones invoked.
func (c *Component) Initialize(self Instance, ctx *Context, method string, data DataSource) {
	c.self = self
	c.ctx = ctx
	c.method = method
	c.data = data
}

func (c *Component) Context() *Context {
	return c.ctx
}

// Server is the dispatcher that created the component, nil outside a request.
func (c *Component) Server() *Server {
	if c.ctx == nil {
		return nil
	}
	return c.ctx.Server
}

func (c *Component) Method() string {
	return c.method
}

func (c *Component) SetMethod(method string) *Component {
	c.method = method
	return c
}

func (c *Component) Data() DataSource {
	return c.data
}

func (c *Component) SetData(data DataSource) *Component {
	c.data = data
	return c
}

func (c *Component) HasMethod(name string) bool {
	_, ok := c.describe().Lookup(name)
	return ok
}

// Invoke calls method on the component, binding its parameters from the
// component data.
func (c *Component) Invoke(method string) error {
	return c.describe().invoke(method, c.data, c.ctx)
}

// Call invokes the method the component was initialized with.
func (c *Component) Call() error {
	if c.method == "" {
		return fmt.Errorf("%w: method to invoke is missing", ErrBadRequest)
	}
	return c.Invoke(c.method)
}

func (c *Component) describe() *Descriptor {
	c.once.Do(func() {
		target := c.self
		if target == nil {
			target = c
		}
		c.descriptor = Describe(target)
	})
	return c.descriptor
}
