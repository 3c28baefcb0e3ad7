// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Simple web framework.
//
// At the core of web.go are components: types embedding web.Component whose
// methods answer requests.
//
//	type Home struct {
//		web.Component
//	}
//
//	func (h *Home) Index() string {
//		return "hello, world"
//	}
//
//	func init() {
//		web.Register("Home", func() web.Instance { return &Home{} })
//	}
//
// There is no routing table to fill in. The request path names the component
// and its method: "/Blog/Post/show" is looked up as Blog/Post.go (method
// show), then Blog/Post/show.go, then the folder's default component
// Blog/Post/Index.go and Blog/Post/show/Index.go, below the configured search
// root. The first file that exists wins and the component registered under
// its name (Blog.Post, Blog.Post.show, ...) is invoked.
//
// Request parameters are bound to method arguments by name. Components list
// the parameters, their defaults and their visibility in Describe:
//
//	func (h *Home) Describe(d *web.Descriptor) {
//		d.Public("hello", h.Hello, web.Param("name").Default("world"))
//	}
//
//	func (h *Home) Hello(name string) string {
//		return "hello, " + name
//	}
//
// Visit /Home/hello?name=fidodido to see 'hello, fidodido'
//
// Methods may take a pointer to web.Context as their first parameter. This
// variable serves many purposes: it contains information about the request,
// and it provides methods to control the http connection.
//
// See examples/sample for a complete application.
package web
