package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/toppgo/toppgo/internal/server"
	"github.com/toppgo/toppgo/pkg/topp"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var (
		addr    string
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the query pipeline as an HTTP API",
		Long: `Start an HTTP server exposing the query pipeline.

Endpoints:
  GET  /healthz         liveness probe
  GET  /api/categories  the annotation category vocabulary
  POST /api/query       run filter, lookup, enrichment, and merge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Server.Addr != "" && !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			return runServe(cmd.Context(), addr, baseURL)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&baseURL, "base-url", topp.DefaultBaseURL, "ToppGene API base URL")

	return cmd
}

func runServe(ctx context.Context, addr, baseURL string) error {
	logger := loggerFromContext(ctx)

	client := topp.NewClient(
		topp.WithBaseURL(baseURL),
		topp.WithLogf(logger.Debugf),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(client, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
