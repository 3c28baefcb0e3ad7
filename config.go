// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Config drives a Server. It can be loaded from YAML, TOML, HCL or JSON.
type Config struct {
	// Directory (or afs URL) holding the component files
	SearchRoot string `json:"search_root" yaml:"search_root" toml:"search_root" hcl:"search_root,optional"`
	// Component file extension, including the dot
	Extension        string `json:"extension" yaml:"extension" toml:"extension" hcl:"extension,optional"`
	DefaultComponent string `json:"default_component" yaml:"default_component" toml:"default_component" hcl:"default_component,optional"`
	DefaultMethod    string `json:"default_method" yaml:"default_method" toml:"default_method" hcl:"default_method,optional"`
	// Replaces "/" in component names
	Separator       string  `json:"separator" yaml:"separator" toml:"separator" hcl:"separator,optional"`
	AutomaticRoutes bool    `json:"automatic_routes" yaml:"automatic_routes" toml:"automatic_routes" hcl:"automatic_routes,optional"`
	Routes          []Route `json:"routes" yaml:"routes" toml:"routes" hcl:"route,block"`

	StaticDirs    []string `json:"static_dirs" yaml:"static_dirs" toml:"static_dirs" hcl:"static_dirs,optional"`
	Addr          string   `json:"addr" yaml:"addr" toml:"addr" hcl:"addr,optional"`
	Cert          string   `json:"cert" yaml:"cert" toml:"cert" hcl:"cert,optional"`
	Key           string   `json:"key" yaml:"key" toml:"key" hcl:"key,optional"`
	CookieSecret  string   `json:"cookie_secret" yaml:"cookie_secret" toml:"cookie_secret" hcl:"cookie_secret,optional"`
	RecoverPanic  bool     `json:"recover_panic" yaml:"recover_panic" toml:"recover_panic" hcl:"recover_panic,optional"`
	ColorOutput   bool     `json:"color_output" yaml:"color_output" toml:"color_output" hcl:"color_output,optional"`
	LogLevel      string   `json:"log_level" yaml:"log_level" toml:"log_level" hcl:"log_level,optional"`
	LogFormat     string   `json:"log_format" yaml:"log_format" toml:"log_format" hcl:"log_format,optional"`
	WebsocketPath string   `json:"websocket_path" yaml:"websocket_path" toml:"websocket_path" hcl:"websocket_path,optional"`
	MetricURI     string   `json:"metric_uri" yaml:"metric_uri" toml:"metric_uri" hcl:"metric_uri,optional"`
}

func DefaultConfig() *Config {
	return &Config{
		Extension:        ".go",
		DefaultComponent: "Index",
		DefaultMethod:    "index",
		Separator:        DefaultSeparator,
		Addr:             "0.0.0.0:9999",
		RecoverPanic:     true,
		ColorOutput:      true,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SearchRoot) == "" {
		return fmt.Errorf("%w: search_root is required", ErrInvalidConfiguration)
	}
	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfiguration, c.Extension)
	}
	for _, route := range c.Routes {
		if route.Component == "" {
			return fmt.Errorf("%w: route %q has no component", ErrInvalidConfiguration, route.URI)
		}
	}
	return nil
}

// Resolver returns a resolver searching the configured root.
func (c *Config) Resolver(fs FileSystem) *Resolver {
	return &Resolver{
		FS:               fs,
		Root:             c.SearchRoot,
		Extension:        c.Extension,
		DefaultComponent: c.DefaultComponent,
		DefaultMethod:    c.DefaultMethod,
		Separator:        c.Separator,
	}
}

// LoadConfig reads the configuration at URL on top of DefaultConfig. The
// format follows the extension: .yaml/.yml, .toml, .hcl, JSON otherwise.
func LoadConfig(ctx context.Context, URL string, fs afs.Service) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config: %v", URL)
	}
	cfg := DefaultConfig()
	if err = unmarshalWithExt(data, cfg, path.Base(URL)); err != nil {
		return nil, errors.Wrapf(err, "invalid config: %v", URL)
	}
	return cfg, cfg.Validate()
}

func unmarshalWithExt(data []byte, cfg *Config, name string) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch path.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse yaml due to the: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse toml due to the: %w", err)
		}
	case ".hcl":
		if err := hclsimple.Decode(name, data, hclEvalContext(), cfg); err != nil {
			return fmt.Errorf("failed to parse hcl due to the: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse json due to the: %w", err)
		}
	}
	return nil
}

// HCL configs may refer to the environment as env.NAME.
func hclEvalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && hclsyntax.ValidIdentifier(k) {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
	}
}
