// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One request and the response it should produce.
type Test struct {
	method         string
	path           string
	body           string
	contentType    string
	requestHeaders http.Header
	expectedStatus int
	expectedBody   string
	// checked for presence and value, other headers are ignored
	headers http.Header
}

var nopLogger = func() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}()

func buildTestRequest(test Test) *http.Request {
	var body io.Reader
	if test.body != "" {
		body = strings.NewReader(test.body)
	}
	req := httptest.NewRequest(test.method, test.path, body)
	if test.contentType != "" {
		req.Header.Set("Content-Type", test.contentType)
	}
	for k, v := range test.requestHeaders {
		req.Header[k] = v
	}
	return req
}

// Serve the request and check status and body.
func testRouting(t *testing.T, s *Server, test Test) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, buildTestRequest(test))
	assert.Equal(t, test.expectedStatus, rec.Code, "%s %s", test.method, test.path)
	assert.Equal(t, test.expectedBody, rec.Body.String(), "%s %s", test.method, test.path)
	return rec
}

// testRouting and the expected headers.
func testFull(t *testing.T, s *Server, test Test) *httptest.ResponseRecorder {
	t.Helper()
	rec := testRouting(t, s, test)
	for k, v := range test.headers {
		assert.Equal(t, v, rec.Header()[http.CanonicalHeaderKey(k)], "%s %s header %s", test.method, test.path, k)
	}
	return rec
}

// Create empty component files below a fresh root.
func testRoot(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, file := range files {
		location := filepath.Join(root, filepath.FromSlash(file))
		require.Nil(t, os.MkdirAll(filepath.Dir(location), 0o755))
		require.Nil(t, os.WriteFile(location, nil, 0o644))
	}
	return root
}

type Home struct {
	Component
}

func (h *Home) Describe(d *Descriptor) {
	d.Public("index", h.Index)
	d.Public("test", h.Test, Param("arg1").Default("def"), Param("arg2").Default("default"))
	d.Public("sum", h.Sum, Param("a"), Param("b").Default(1))
	d.Public("greet", h.Greet, Param("name"))
	d.Public("referencedParameter", h.ReferencedParameter, Param("arg"))
	d.Private("privateMethod", h.PrivateMethod)
	d.Abstract("protectedMethod")
	d.Public("fail", h.Fail, Param("kind"))
	d.Public("crash", h.Crash)
	d.Public("item", h.Item, Param("id"))
	d.Public("required", h.Required)
	d.Public("setMethod", h.SetMethod, Param("method"))
}

func (h *Home) Index() string {
	return "Hello Index!"
}

func (h *Home) Test(arg1, arg2 string) string {
	return fmt.Sprintf("1:%s 2:%s", arg1, arg2)
}

func (h *Home) Sum(a, b int) (string, error) {
	return fmt.Sprint(a + b), nil
}

func (h *Home) Greet(ctx *Context, name string) {
	ctx.WriteString("hello " + name)
}

func (h *Home) ReferencedParameter(arg *string) string {
	return "unreachable"
}

func (h *Home) PrivateMethod() string {
	return "unreachable"
}

func (h *Home) Fail(kind string) error {
	switch kind {
	case "web":
		return WebError{418, "short and stout"}
	case "bad":
		return fmt.Errorf("%w: not today", ErrBadRequest)
	}
	return errors.New("database password is hunter2")
}

func (h *Home) Crash() string {
	panic("boom")
}

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (h *Home) Item(id int) item {
	return item{ID: id, Name: "item"}
}

func (h *Home) Required(ctx *Context) string {
	return fmt.Sprint(ctx.Params.GetInt("n") * 2)
}

// Index component of the root and of folders.
type Index struct {
	Component
}

func (i *Index) Index() string {
	return "root index"
}

func (i *Index) Whoami() string {
	return i.Context().Component + "::" + i.Method()
}

func testRegistry() *Registry {
	registry := NewRegistry()
	registry.Register("Home", func() Instance { return &Home{} })
	registry.Register("Index", func() Instance { return &Index{} })
	registry.Register("Admin.Index", func() Instance { return &Index{} })
	registry.Register("Admin.Users.Index", func() Instance { return &Index{} })
	registry.Register("Shop.Cart.Index", func() Instance { return &Index{} })
	return registry
}

func testServer(t *testing.T, configure func(cfg *Config), options ...Option) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SearchRoot = testRoot(t, "Home.go", "Index.go", "Admin/Index.go", "Admin/Users/Index.go", "Shop/Cart/Index.go", "Orphan.go")
	cfg.ColorOutput = false
	if configure != nil {
		configure(cfg)
	}
	options = append([]Option{WithLogger(nopLogger), WithRegistry(testRegistry())}, options...)
	s, err := NewServer(cfg, options...)
	require.Nil(t, err)
	return s
}

func TestServer_Dispatch(t *testing.T) {
	s := testServer(t, nil)
	var tests = []Test{
		{method: "GET", path: "/", expectedStatus: 200, expectedBody: "root index"},
		{method: "GET", path: "/Home", expectedStatus: 200, expectedBody: "Hello Index!"},
		{method: "GET", path: "/Home/index", expectedStatus: 200, expectedBody: "Hello Index!"},
		{method: "GET", path: "/Home/test", expectedStatus: 200, expectedBody: "1:def 2:default"},
		{method: "GET", path: "/Home/test?arg1=a", expectedStatus: 200, expectedBody: "1:a 2:default"},
		{method: "GET", path: "/Home/test?arg1=a&arg2=", expectedStatus: 200, expectedBody: "1:a 2:"},
		{method: "POST", path: "/Home/test?arg1=query", body: "arg1=form", contentType: "application/x-www-form-urlencoded", expectedStatus: 200, expectedBody: "1:form 2:default"},
		{method: "POST", path: "/Home/test", body: `{"arg2":"json"}`, contentType: "application/json", expectedStatus: 200, expectedBody: "1:def 2:json"},
		{method: "GET", path: "/Home/sum?a=2&b=3", expectedStatus: 200, expectedBody: "5"},
		{method: "GET", path: "/Home/sum?a=2", expectedStatus: 200, expectedBody: "3"},
		{method: "GET", path: "/Home/greet?name=bob", expectedStatus: 200, expectedBody: "hello bob"},
		{method: "GET", path: "/Whoami", expectedStatus: 404, expectedBody: "Page not found"},
		{method: "GET", path: "/Admin", expectedStatus: 200, expectedBody: "root index"},
		{method: "GET", path: "/Admin/whoami", expectedStatus: 200, expectedBody: "Admin.Index::whoami"},
		// the folder's own Index wins over the sub folder
		{method: "GET", path: "/Admin/Users", expectedStatus: 400, expectedBody: "no such method: component 'web.Index' has no method 'Users'"},
		{method: "GET", path: "/Shop/Cart", expectedStatus: 200, expectedBody: "root index"},
		{method: "GET", path: "/Shop/Cart/whoami", expectedStatus: 200, expectedBody: "Shop.Cart.Index::whoami"},
		{method: "GET", path: "/Admin/Users/whoami", expectedStatus: 200, expectedBody: "Admin.Users.Index::whoami"},
		{method: "GET", path: "/Nothing/here", expectedStatus: 404, expectedBody: "Page not found"},
		// resolved but not registered
		{method: "GET", path: "/Orphan", expectedStatus: 404, expectedBody: "Page not found"},
	}
	for _, test := range tests {
		testFull(t, s, test)
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	s := testServer(t, nil)
	var tests = []Test{
		{method: "GET", path: "/Home/missing", expectedStatus: 400, expectedBody: "no such method: component 'web.Home' has no method 'missing'"},
		{method: "GET", path: "/Home/privateMethod", expectedStatus: 400, expectedBody: "access denied: you are not authorized to call web.Home::privateMethod"},
		{method: "GET", path: "/Home/protectedMethod", expectedStatus: 400, expectedBody: "access denied: you are not authorized to call web.Home::protectedMethod"},
		{method: "GET", path: "/Home/referencedParameter?arg=x", expectedStatus: 500, expectedBody: "Server Error"},
		{method: "GET", path: "/Home/sum?a=two", expectedStatus: 400, expectedBody: "invalid argument value: a: 'two' is not a valid int"},
		{method: "GET", path: "/Home/fail?kind=web", expectedStatus: 418, expectedBody: "short and stout"},
		{method: "GET", path: "/Home/fail?kind=bad", expectedStatus: 400, expectedBody: "bad request: not today"},
		{method: "GET", path: "/Home/fail", expectedStatus: 500, expectedBody: "Server Error"},
		{method: "GET", path: "/Home/crash", expectedStatus: 500, expectedBody: "Server Error"},
		{method: "GET", path: "/Home/required?n=21", expectedStatus: 200, expectedBody: "42"},
		{method: "GET", path: "/Home/required?n=x", expectedStatus: 400, expectedBody: "Illegal integer parameter n"},
		{method: "GET", path: "/Home/required", expectedStatus: 400, expectedBody: "Required parameter n missing"},
	}
	for _, test := range tests {
		testFull(t, s, test)
	}
}

func TestServer_InvalidRoot(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.SearchRoot = filepath.Join(t.TempDir(), "missing")
	})
	testRouting(t, s, Test{method: "GET", path: "/Home", expectedStatus: 500, expectedBody: "Server Error"})
}

func TestServer_NoDefaults(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.DefaultComponent = ""
		cfg.DefaultMethod = ""
	})
	testRouting(t, s, Test{method: "GET", path: "/", expectedStatus: 400, expectedBody: "bad request: no component requested"})
	testRouting(t, s, Test{method: "GET", path: "/Home", expectedStatus: 400, expectedBody: "bad request: no method requested"})
	testRouting(t, s, Test{method: "GET", path: "/Home/test", expectedStatus: 200, expectedBody: "1:def 2:default"})
}

func TestServer_JSONResult(t *testing.T) {
	s := testServer(t, nil)
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	testFull(t, s, Test{
		method:         "GET",
		path:           "/Home/item?id=7",
		expectedStatus: 200,
		expectedBody:   "{\"id\":7,\"name\":\"item\"}\n",
		headers:        header,
	})
}

func TestServer_DefaultHeaders(t *testing.T) {
	s := testServer(t, nil)
	rec := testRouting(t, s, Test{
		method:         "GET",
		path:           "/Home",
		requestHeaders: http.Header{"X-Request-Id": []string{"abc"}},
		expectedStatus: 200,
		expectedBody:   "Hello Index!",
	})
	assert.Equal(t, "web.go", rec.Header().Get("Server"))
	assert.NotEmpty(t, rec.Header().Get("Date"))
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = testRouting(t, s, Test{method: "GET", path: "/Home", expectedStatus: 200, expectedBody: "Hello Index!"})
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}

func TestServer_Routes(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.Routes = []Route{
			{URI: "/hello", Component: "Home", Method: "test"},
			{URI: "/welcome", Component: "Home"},
		}
	})
	testRouting(t, s, Test{method: "GET", path: "/hello?arg2=x", expectedStatus: 200, expectedBody: "1:def 2:x"})
	testRouting(t, s, Test{method: "GET", path: "/welcome", expectedStatus: 200, expectedBody: "Hello Index!"})
	assert.Equal(t, 2, s.Routes.Len())
}

func TestServer_AutomaticRoutes(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.AutomaticRoutes = true
	})
	testRouting(t, s, Test{method: "GET", path: "/Home/test", expectedStatus: 200, expectedBody: "1:def 2:default"})
	route, ok := s.Routes.Lookup("/Home/test")
	require.True(t, ok)
	assert.Equal(t, Route{URI: "Home/test", Component: "Home", Method: "test"}, route)

	// failed calls leave the table alone
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("/Home/nosuch%d", i)
		testRouting(t, s, Test{method: "GET", path: path, expectedStatus: 400, expectedBody: fmt.Sprintf("no such method: component 'web.Home' has no method 'nosuch%d'", i)})
	}
	testRouting(t, s, Test{method: "GET", path: "/Home/sum?a=two", expectedStatus: 400, expectedBody: "invalid argument value: a: 'two' is not a valid int"})
	assert.Equal(t, 1, s.Routes.Len())
	_, ok = s.Routes.Lookup("/Home/sum")
	assert.False(t, ok)

	// remembered even once the file is gone
	require.Nil(t, os.Remove(filepath.Join(s.Config.SearchRoot, "Home.go")))
	testRouting(t, s, Test{method: "GET", path: "/Home/test", expectedStatus: 200, expectedBody: "1:def 2:default"})
}

func TestServer_StaticFiles(t *testing.T) {
	static := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(static, "robots.txt"), []byte("User-agent: *"), 0o644))
	require.Nil(t, os.MkdirAll(filepath.Join(static, "docs"), 0o755))
	require.Nil(t, os.WriteFile(filepath.Join(static, "docs", "index.html"), []byte("<p>docs</p>"), 0o644))
	s := testServer(t, func(cfg *Config) {
		cfg.StaticDirs = []string{static}
	})
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	testFull(t, s, Test{method: "GET", path: "/robots.txt", expectedStatus: 200, expectedBody: "User-agent: *", headers: header})
	testRouting(t, s, Test{method: "GET", path: "/docs/", expectedStatus: 200, expectedBody: "<p>docs</p>"})
	testRouting(t, s, Test{method: "POST", path: "/robots.txt", expectedStatus: 404, expectedBody: "Page not found"})
	testRouting(t, s, Test{method: "GET", path: "/../" + filepath.Base(static) + "/robots.txt", expectedStatus: 404, expectedBody: "Page not found"})
}

func TestServer_Wrapper(t *testing.T) {
	s := testServer(t, nil)
	s.AddWrapper(func(h SimpleHandler, ctx *Context) error {
		err := h(ctx)
		var werr WebError
		if errors.As(err, &werr) && werr.Code == 404 {
			return WebError{404, "nothing at " + ctx.Path()}
		}
		return err
	})
	testRouting(t, s, Test{method: "GET", path: "/Nothing/here", expectedStatus: 404, expectedBody: "nothing at /Nothing/here"})
}

func TestServer_User(t *testing.T) {
	var seen any
	s := testServer(t, nil, WithUser("shared"))
	s.AddWrapper(func(h SimpleHandler, ctx *Context) error {
		seen = ctx.User
		return h(ctx)
	})
	testRouting(t, s, Test{method: "GET", path: "/Home", expectedStatus: 200, expectedBody: "Hello Index!"})
	assert.Equal(t, "shared", seen)
}

func TestServer_RecoverPanicDisabled(t *testing.T) {
	s := testServer(t, func(cfg *Config) {
		cfg.RecoverPanic = false
	})
	assert.Panics(t, func() {
		s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/Home/crash", nil))
	})
}

func TestNewServer_DefaultRegistry(t *testing.T) {
	Register("Registered", func() Instance { return &Index{} })

	cfg := DefaultConfig()
	cfg.SearchRoot = testRoot(t, "Registered.go")
	s, err := NewServer(cfg, WithLogger(nopLogger))
	require.Nil(t, err)
	testRouting(t, s, Test{method: "GET", path: "/Registered", expectedStatus: 200, expectedBody: "root index"})
}

func TestNewServer_InvalidConfig(t *testing.T) {
	_, err := NewServer(DefaultConfig())
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}
