package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/itemtree"
	httpAdapter "github.com/aretw0/itemtree/pkg/adapters/http"
	redisAdapter "github.com/aretw0/itemtree/pkg/adapters/redis"
	"github.com/aretw0/itemtree/pkg/observability"
	"github.com/aretw0/itemtree/pkg/workspace"
	"github.com/spf13/cobra"
)

const redisPrefix = "itemtree:"

var serveCmd = &cobra.Command{
	Use:   "serve [layout...]",
	Short: "Start the HTTP server",
	Long: `Serves a workspace of named trees over a JSON API, with Server-Sent Events per tree and
Prometheus metrics. Every layout given as argument is opened as a tree named after its file.
With --redis, writers take a distributed lock per tree name, mutations are published on Redis,
and the events of other replicas are relayed to this server's SSE subscribers. Trees stay in
each replica's memory: Redis shares events and write serialization, not tree state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		redisURL, _ := cmd.Flags().GetString("redis")
		publishTimeout, _ := cmd.Flags().GetDuration("publish-timeout")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var ws *workspace.Manager
		metrics := observability.NewMetrics(func() int { return len(ws.List()) })
		streams := httpAdapter.NewStreamManager(logger)

		opts := []workspace.Option{
			workspace.WithLogger(logger),
			workspace.WithHooks(metrics.Hooks),
			workspace.WithHooks(streams.Hooks),
			workspace.WithHooks(observability.LogHooks(logger)),
		}
		if redisURL != "" {
			client, err := redisAdapter.NewClient(redisURL)
			if err != nil {
				return err
			}
			defer client.Close()
			publisher := redisAdapter.NewPublisher(client, redisPrefix, logger,
				redisAdapter.WithPublishTimeout(publishTimeout))
			if err := relayRemote(ctx, publisher, streams); err != nil {
				return err
			}
			opts = append(opts,
				workspace.WithLocker(redisAdapter.NewLocker(client, redisPrefix)),
				workspace.WithHooks(publisher.Hooks),
			)
			logger.Info("redis enabled", "channel", publisher.Channel())
		}
		ws = itemtree.NewWorkspace(nil, opts...)

		for _, path := range args {
			spec, err := loadLayout(path)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if err := ws.OpenLayout(ctx, name, spec); err != nil {
				return fmt.Errorf("open %s: %w", name, err)
			}
			logger.Info("tree opened", "tree", name, "layout", path)
		}

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(ws,
				httpAdapter.WithStreams(streams),
				httpAdapter.WithMetrics(metrics.Handler()),
				httpAdapter.WithLogger(logger),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting itemtree server", "address", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			logger.Info("itemtree server stopped gracefully")
			return nil
		}
	},
}

// relayRemote streams the mutations published by other replicas to the local SSE
// subscribers of the same tree name, until ctx is done.
func relayRemote(ctx context.Context, publisher *redisAdapter.Publisher, streams *httpAdapter.StreamManager) error {
	events, err := publisher.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", publisher.Channel(), err)
	}
	go publisher.Forward(events, func(e redisAdapter.Event) {
		streams.Send(e.Tree, e.MutationEvent)
	})
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis URL for distributed locks and mutation events (e.g. redis://localhost:6379/0)")
	serveCmd.Flags().Duration("publish-timeout", 2*time.Second, "Upper bound for publishing one mutation event to Redis")
}
