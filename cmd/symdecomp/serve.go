package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the decomposition tools over HTTP",
	Long: `Starts an HTTP server exposing the tools:

  POST /tool     execute a tool call {"tool": ..., "params": {...}}
  GET  /schema   tool schema for agent registration
  GET  /health   health check

The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           newHandler(newToolbox(), logger, cfg.Server.MaxBodyBytes),
		ReadHeaderTimeout: cfg.GetReadHeaderTimeout(),
		ReadTimeout:       cfg.GetReadTimeout(),
		WriteTimeout:      cfg.GetWriteTimeout(),
		IdleTimeout:       cfg.GetIdleTimeout(),
	}
	logger.Info("symdecomp server listening", zap.String("addr", ln.Addr().String()))
	return serve(ctx, ln, srv, cfg.GetShutdownTimeout())
}

// serve runs srv on ln until ctx is done, then shuts it down within
// shutdownTimeout. A listener failure also ends the run.
func serve(ctx context.Context, ln net.Listener, srv *http.Server, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
