// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cli holds the kntweb commands. Applications built on web.go call
// Main from their own main package so that the components they register are
// served.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version of the kntweb tool.
const Version = "0.2.0"

// NewRootCmd returns the command tree named name.
func NewRootCmd(name string) *cobra.Command {
	root := &cobra.Command{
		Use:           name,
		Short:         "Serve components resolved from request paths",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(name))
	root.AddCommand(newServeCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newCreateCmd())
	return root
}

// Main runs the command tree and exits on failure.
func Main(name string) {
	if err := NewRootCmd(name).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, Version)
		},
	}
}
