package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/morphohq/morpho/internal/agent"
	"github.com/morphohq/morpho/internal/config"
	"github.com/morphohq/morpho/internal/engine"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve [roots...]",
		Short: "Serve the analysis tools over HTTP",
		Long: `serve exposes list_all, generate_call_graph, and get_source as POST
/tool/<name> endpoints, plus GET /info, /healthz, and /metrics. Roots come
from the arguments, then MORPHO_ROOTS, then the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			roots, err := config.ResolveRoots(args)
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			log := newLogger(cmd.ErrOrStderr())
			srv := agent.New(engine.New(roots, log), cfg.Blacklist, log)

			httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("agent listening", "addr", cfg.Addr, "primary", roots[0].Name)
				for _, path := range []string{"/tool/list_all", "/tool/generate_call_graph", "/tool/get_source"} {
					log.Info("tool endpoint", "path", path)
				}
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	return cmd
}
