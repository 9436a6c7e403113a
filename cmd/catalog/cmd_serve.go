package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/siherrmann/catalog/core/search"
	"github.com/siherrmann/catalog/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			if listenAddr != "" {
				cfg.HTTP.ListenAddr = listenAddr
			}

			c, err := openCatalog(logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = c.Close() }()

			search.RegisterMetrics()
			server.RegisterMetrics()
			srv := server.NewServer(c, cfg.SearchConfig().DefaultType, logger)

			httpSrv := &http.Server{
				Addr:         cfg.HTTP.ListenAddr,
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.ReadTimeout(),
				WriteTimeout: cfg.WriteTimeout(),
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP API server starting", "addr", cfg.HTTP.ListenAddr)
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
					errCh <- fmt.Errorf("serve: HTTP server: %w", listenErr)
				}
				close(errCh)
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("Shutting down")
			case startErr := <-errCh:
				return startErr
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("serve: graceful shutdown: %w", err)
			}

			if startErr := <-errCh; startErr != nil {
				return startErr
			}

			logger.Info("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides http.listen_addr)")
	return cmd
}
