package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/infra/httpserver"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local gateway for the browser UI",
		Long:  "Starts a loopback HTTP gateway exposing the scan, dashboard and review workflows to a local web UI.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}

			handler := httpserver.NewRouter(httpserver.Deps{
				Session:        a.sess,
				Auth:           a.client,
				Aggregator:     a.aggregator,
				Engine:         a.engine,
				Review:         a.review,
				Reports:        a.reports,
				Analyzer:       a.client,
				Submitter:      a.client,
				DefaultVariant: a.defaultVariant(),
			})

			srv := &http.Server{
				Addr:    fmt.Sprintf("127.0.0.1:%d", a.cfg.Gateway.Port),
				Handler: handler,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", srv.Addr).Info("gateway listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		},
	}
}
