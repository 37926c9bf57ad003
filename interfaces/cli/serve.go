package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
	"github.com/felixgeelhaar/framing-go/interfaces/api"
)

// newServeCmd creates the serve command: the HTTP API.
func (a *App) newServeCmd() *cobra.Command {
	var (
		configPath string
		address    string
		cors       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the framing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			opts := []api.Option{}
			if rt.notion != nil {
				opts = append(opts,
					api.WithRecordStore(rt.notion),
					api.WithKeywordSource(rt.notion),
				)
			}

			srv := api.New(api.Config{
				Address:      cfg.Server.Address,
				EnableCORS:   cors,
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
			}, rt.pipeline, rt.engine, opts...)

			errCh := make(chan error, 1)
			go func() {
				logging.Info().Add(logging.Str("address", cfg.Server.Address)).Msg("api listening")
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				fmt.Fprintln(a.stdout, "server stopped")
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().BoolVar(&cors, "cors", false, "enable CORS headers")

	return cmd
}
