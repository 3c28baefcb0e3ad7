// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/knt/web"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	config string
	addr   string
	fcgi   bool
	scgi   bool
	tls    bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registered components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.config, "config", "c", "config.yaml", "configuration URL (yaml, toml, hcl or json)")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "listen address, overrides the configuration")
	cmd.Flags().BoolVar(&opts.fcgi, "fcgi", false, "serve FastCGI instead of HTTP")
	cmd.Flags().BoolVar(&opts.scgi, "scgi", false, "serve SCGI instead of HTTP")
	cmd.Flags().BoolVar(&opts.tls, "tls", false, "serve HTTPS with the configured cert and key")
	return cmd
}

func serve(ctx context.Context, opts *serveOptions) error {
	cfg, err := web.LoadConfig(ctx, opts.config, nil)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	srv, err := web.NewServer(cfg)
	if err != nil {
		return err
	}
	if len(srv.Registry.Names()) == 0 {
		srv.Logger.Warn("no components registered, only static files will be served")
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	switch {
	case opts.fcgi:
		err = srv.RunFcgi(cfg.Addr)
	case opts.scgi:
		err = srv.RunScgi(cfg.Addr)
	case opts.tls:
		err = srv.RunTLS(cfg.Addr, cfg.Cert, cfg.Key)
	default:
		err = srv.Run(cfg.Addr)
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}
