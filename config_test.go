// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestLoadConfig(t *testing.T) {
	var useCases = []struct {
		description string
		name        string
		content     string
	}{
		{
			description: "yaml",
			name:        "config.yaml",
			content: `search_root: /srv/components
default_method: show
automatic_routes: true
static_dirs: [/srv/static]
cookie_secret: s3cret
routes:
  - uri: /about
    component: Pages.About
    method: show
`,
		},
		{
			description: "toml",
			name:        "config.toml",
			content: `search_root = "/srv/components"
default_method = "show"
automatic_routes = true
static_dirs = ["/srv/static"]
cookie_secret = "s3cret"

[[routes]]
uri = "/about"
component = "Pages.About"
method = "show"
`,
		},
		{
			description: "hcl",
			name:        "config.hcl",
			content: `search_root = "/srv/components"
default_method = "show"
automatic_routes = true
static_dirs = ["/srv/static"]
cookie_secret = "s3cret"

route "/about" {
  component = "Pages.About"
  method = "show"
}
`,
		},
		{
			description: "json",
			name:        "config.json",
			content:     `{"search_root":"/srv/components","default_method":"show","automatic_routes":true,"static_dirs":["/srv/static"],"cookie_secret":"s3cret","routes":[{"uri":"/about","component":"Pages.About","method":"show"}]}`,
		},
	}

	ctx := context.Background()
	fs := afs.New()
	for _, useCase := range useCases {
		URL := "mem://localhost/config/" + useCase.name
		if !assert.Nil(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(useCase.content))), useCase.description) {
			continue
		}
		cfg, err := LoadConfig(ctx, URL, fs)
		if !assert.Nil(t, err, useCase.description) {
			continue
		}
		assert.Equal(t, "/srv/components", cfg.SearchRoot, useCase.description)
		assert.Equal(t, "show", cfg.DefaultMethod, useCase.description)
		assert.True(t, cfg.AutomaticRoutes, useCase.description)
		assert.Equal(t, []string{"/srv/static"}, cfg.StaticDirs, useCase.description)
		assert.Equal(t, "s3cret", cfg.CookieSecret, useCase.description)
		assert.Equal(t, []Route{{URI: "/about", Component: "Pages.About", Method: "show"}}, cfg.Routes, useCase.description)
		// untouched keys keep their defaults
		assert.Equal(t, ".go", cfg.Extension, useCase.description)
		assert.Equal(t, "Index", cfg.DefaultComponent, useCase.description)
		assert.Equal(t, DefaultSeparator, cfg.Separator, useCase.description)
		assert.Equal(t, "0.0.0.0:9999", cfg.Addr, useCase.description)
		assert.True(t, cfg.RecoverPanic, useCase.description)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	upload := func(name, content string) string {
		URL := "mem://localhost/config/errors/" + name
		assert.Nil(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(content))))
		return URL
	}

	_, err := LoadConfig(ctx, "mem://localhost/config/errors/missing.yaml", fs)
	assert.NotNil(t, err)

	_, err = LoadConfig(ctx, upload("broken.yaml", "search_root: [unterminated"), fs)
	assert.NotNil(t, err)

	_, err = LoadConfig(ctx, upload("empty.yaml", "   "), fs)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = LoadConfig(ctx, upload("ext.yaml", "search_root: /srv\nextension: go\n"), fs)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "must start with a dot")

	_, err = LoadConfig(ctx, upload("route.yaml", "search_root: /srv\nroutes:\n  - uri: /about\n"), fs)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestConfig_Resolver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchRoot = "/srv/components"
	resolver := cfg.Resolver(nil)
	assert.Equal(t, &Resolver{Root: "/srv/components", Extension: ".go", DefaultComponent: "Index", DefaultMethod: "index", Separator: DefaultSeparator}, resolver)
}

func TestLoadConfig_HCLEnvironment(t *testing.T) {
	t.Setenv("KNTWEB_ROOT", "/srv/from-env")
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/config/env/config.hcl"
	assert.Nil(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(`search_root = "${env.KNTWEB_ROOT}/components"`))))
	cfg, err := LoadConfig(ctx, URL, fs)
	if assert.Nil(t, err) {
		assert.Equal(t, "/srv/from-env/components", cfg.SearchRoot)
	}
}
