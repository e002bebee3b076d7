package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"Newsroom-Apps/internal/config"
	"Newsroom-Apps/internal/logger"
	"Newsroom-Apps/internal/metrics"
	"Newsroom-Apps/internal/news"
	"Newsroom-Apps/internal/newsapi"
	"Newsroom-Apps/internal/newswire"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "yaml config path")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of running the console demo")
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "newsroom: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging, os.Stderr)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *serve, os.Stdout, log); err != nil {
		log.Error("newsroom failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, serve bool, out io.Writer, log *slog.Logger) error {
	reg := prometheus.NewRegistry()

	// The one publisher of this process; everything below receives it explicitly.
	pub := news.NewPublisher(
		news.WithOutput(out),
		news.WithLogger(log),
		news.WithRecorder(metrics.New(reg)),
	)

	transport, err := newTransport(ctx, cfg.Wire, log)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer transport.Close()

	wire := newswire.New(pub, transport, newswire.WithTopic(cfg.Wire.Topic), newswire.WithLogger(log))
	if err := wire.Start(); err != nil {
		return fmt.Errorf("wire: %w", err)
	}
	defer wire.Close()
	log.Info("wire started", "node", wire.NodeID(), "topic", wire.Topic())

	if !serve {
		return runDemo(wire, cfg.Demo, out)
	}
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	return serveHTTP(ctx, ln, newsapi.NewServer(wire,
		newsapi.WithGatherer(reg),
		newsapi.WithLogger(log),
		newsapi.WithStreamBuffer(cfg.Wire.Buffer),
	), log)
}

// serveHTTP serves api on ln until ctx is cancelled. Request contexts derive
// from ctx, so open streams end as soon as shutdown begins.
func serveHTTP(ctx context.Context, ln net.Listener, api *newsapi.Server, log *slog.Logger) error {
	r := chi.NewRouter()
	api.Register(r)

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("newsroom listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("newsroom shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(err, srv.Close())
	}
	return nil
}
