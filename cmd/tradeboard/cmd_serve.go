package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"tradeboard/internal/httpapi"
)

func serveCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	table, err := a.loadTable(ctx)
	if err != nil {
		return err
	}

	opts := httpapi.DefaultOptions()
	opts.DefaultHorizon = a.cfg.Forecast.DefaultHorizon
	handler := httpapi.New(table, opts, a.logger, httpapi.NewMetrics())

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Int("records", table.Len()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
