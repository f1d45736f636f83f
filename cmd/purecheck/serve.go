package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/bububa/purecheck/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves POST /upload, POST /chat, POST /clear-session, GET /session and GET /healthz.
Guideline questions are answered from the index built by "purecheck ingest".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	defer a.Close()

	srv, err := buildServer(ctx, a)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	return srv.Run(ctx, addr)
}

func buildServer(ctx context.Context, a *app) (*server.Server, error) {
	gin.SetMode(a.cfg.Server.Mode)
	analyzer, err := a.analyzer()
	if err != nil {
		return nil, err
	}
	idx, err := a.index(ctx)
	if err != nil {
		return nil, err
	}
	if !idx.Ready(ctx) {
		a.logger.WarnContext(ctx, "guideline index is empty, run purecheck ingest",
			slog.String("collection", idx.Collection()))
	}
	sessions, err := a.sessions()
	if err != nil {
		return nil, err
	}
	go a.purgeSessions(ctx, sessions, time.Hour)
	images, err := a.imageStore(ctx)
	if err != nil {
		return nil, err
	}
	sc := a.cfg.Server
	return server.New(analyzer, a.chat(idx), sessions,
		server.WithValidator(a.validator()),
		server.WithImageStore(images),
		server.WithCookie(sc.CookieName, sc.CookieSecure, a.cfg.Session.TTL),
		server.WithRequestTimeout(sc.RequestTimeout),
		server.WithReadiness(idx),
		server.WithLogger(a.logger),
	), nil
}
