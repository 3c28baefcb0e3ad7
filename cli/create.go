// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

var projectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-]*$`)

type createOptions struct {
	dir    string
	module string
	addr   string
}

// project scaffold, file name to template
var projectFiles = []struct {
	name string
	tmpl *template.Template
}{
	{"main.go", template.Must(template.New("main").Parse(maintmpl))},
	{"components/Index.go", template.Must(template.New("index").Parse(indextmpl))},
	{"components/Home.go", template.Must(template.New("home").Parse(hometmpl))},
	{"config.yaml", template.Must(template.New("config").Parse(configtmpl))},
	{"static/robots.txt", template.Must(template.New("robots").Parse(robotstmpl))},
}

func newCreateCmd() *cobra.Command {
	opts := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new web.go project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "."
			}
			if !strings.Contains(dir, "://") {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
				dir = abs
			}
			return create(cmd.Context(), afs.New(), cmd.OutOrStdout(), dir, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "parent directory or afs URL, the working directory by default")
	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "go module path, the project name by default")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "0.0.0.0:9999", "listen address written to the configuration")
	return cmd
}

type project struct {
	Name   string
	Module string
	Addr   string
}

func create(ctx context.Context, fs afs.Service, out io.Writer, parent, name string, opts *createOptions) error {
	if !projectName.MatchString(name) {
		return fmt.Errorf("invalid project name %q", name)
	}
	projectURL := url.Join(parent, name)
	if exists, _ := fs.Exists(ctx, projectURL); exists {
		return fmt.Errorf("project directory already exists: %v", projectURL)
	}
	data := project{Name: name, Module: opts.module, Addr: opts.addr}
	if data.Module == "" {
		data.Module = name
	}
	if data.Addr == "" {
		data.Addr = "0.0.0.0:9999"
	}
	fmt.Fprintln(out, "Creating project", projectURL)
	for _, f := range projectFiles {
		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, data); err != nil {
			return err
		}
		fileURL := url.Join(projectURL, f.name)
		fmt.Fprintln(out, "Creating", fileURL)
		if err := fs.Upload(ctx, fileURL, file.DefaultFileOsMode, &buf); err != nil {
			return fmt.Errorf("failed to write %v: %w", fileURL, err)
		}
	}
	return nil
}

var maintmpl = `package main

import (
	"github.com/knt/web/cli"

	_ "{{.Module}}/components"
)

func main() {
	cli.Main("{{.Name}}")
}
`

var indextmpl = `package components

import "github.com/knt/web"

// Index answers "/" and every folder without a component of its own.
type Index struct {
	web.Component
}

func (i *Index) Index() string {
	return "hello, world"
}

func init() {
	web.Register("Index", func() web.Instance { return &Index{} })
}
`

var hometmpl = `package components

import "github.com/knt/web"

type Home struct {
	web.Component
}

func (h *Home) Describe(d *web.Descriptor) {
	d.Public("index", h.Index)
	d.Public("hello", h.Hello, web.Param("name").Default("{{.Name}}"))
}

func (h *Home) Index() string {
	return "Hello Index!"
}

func (h *Home) Hello(name string) string {
	return "hello, " + name
}

func init() {
	web.Register("Home", func() web.Instance { return &Home{} })
}
`

var configtmpl = `search_root: components
extension: .go
default_component: Index
default_method: index
addr: {{.Addr}}
static_dirs:
  - static
log_level: info
`

var robotstmpl = `User-agent: *
Disallow:
`
