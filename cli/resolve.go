// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"

	"github.com/knt/web"
	"github.com/spf13/cobra"
)

type resolveOptions struct {
	config           string
	root             string
	extension        string
	defaultComponent string
	defaultMethod    string
	separator        string
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}
	defaults := web.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show how a request path resolves to a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := web.DefaultConfig()
			if opts.config != "" {
				loaded, err := web.LoadConfig(cmd.Context(), opts.config, nil)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			flags := cmd.Flags()
			if flags.Changed("root") || cfg.SearchRoot == "" {
				cfg.SearchRoot = opts.root
			}
			if flags.Changed("ext") {
				cfg.Extension = opts.extension
			}
			if flags.Changed("component") {
				cfg.DefaultComponent = opts.defaultComponent
			}
			if flags.Changed("method") {
				cfg.DefaultMethod = opts.defaultMethod
			}
			if flags.Changed("separator") {
				cfg.Separator = opts.separator
			}
			resolver := cfg.Resolver(web.NewFileSystem(cfg.SearchRoot))
			return printResolution(cmd.OutOrStdout(), resolver, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "configuration URL, flags override its values")
	cmd.Flags().StringVarP(&opts.root, "root", "r", ".", "search root")
	cmd.Flags().StringVar(&opts.extension, "ext", defaults.Extension, "component file extension")
	cmd.Flags().StringVar(&opts.defaultComponent, "component", defaults.DefaultComponent, "default component")
	cmd.Flags().StringVar(&opts.defaultMethod, "method", defaults.DefaultMethod, "default method")
	cmd.Flags().StringVar(&opts.separator, "separator", defaults.Separator, "component name separator")
	return cmd
}

func printResolution(w io.Writer, resolver *web.Resolver, requestPath string) error {
	candidates, err := resolver.Candidates(requestPath)
	if err != nil {
		return err
	}
	for i, candidate := range candidates {
		fmt.Fprintf(w, "%d. %s -> %s\n", i+1, candidate.File, candidate.Method)
	}
	resolution, err := resolver.Resolve(requestPath)
	if err != nil {
		return err
	}
	if !resolution.Found() {
		fmt.Fprintln(w, "not found")
		return nil
	}
	fmt.Fprintf(w, "component: %s\nmethod: %s\nfile: %s\n", resolution.Component, resolution.Method, resolution.File)
	return nil
}
