package main

import (
	"context"
	"flag"
	"fmt"

	"relayconsole/config"
	"relayconsole/internal/httpserver"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func runProxy(ctx context.Context, cfg *config.Config, args []string, log *zap.Logger) error {
	fs := flag.NewFlagSet("proxy", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Proxy.Server.Addr, "listen address")
	target := fs.String("target", cfg.Proxy.Target, "backend base URL")
	static := fs.String("static", cfg.Proxy.StaticDir, "serve a built frontend from this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !log.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := httpserver.NewRouter(httpserver.Options{
		Target:      *target,
		StripPrefix: cfg.Proxy.StripPrefix,
		StaticDir:   *static,
		Metrics:     cfg.Proxy.Metrics,
	}, log)
	if err != nil {
		return fmt.Errorf("init proxy: %w", err)
	}

	log.Info("Starting dev proxy",
		zap.String("addr", *addr),
		zap.String("target", *target),
		zap.String("strip_prefix", cfg.Proxy.StripPrefix),
	)
	fmt.Printf("Dev proxy on %s, forwarding %s/* to %s\n", *addr, cfg.Proxy.StripPrefix, *target)
	return httpserver.NewServer(*addr, router, log).Run(ctx)
}
