package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"github.com/vsinha/blendmrp/pkg/interfaces/api"
	"github.com/vsinha/blendmrp/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the planning and substitution API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "Listen port (defaults to SERVER_PORT)",
				EnvVars: []string{"SERVER_PORT"},
			},
		},
		Before: a.open,
		After:  a.close,
		Action: a.serve,
	}
}

func (a *app) serve(c *cli.Context) error {
	cfg := a.runtime.Config
	port := cfg.Server.Port
	if c.IsSet("port") {
		port = c.String("port")
	}

	if cfg.Server.Mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(&api.Services{
		Planning:     a.runtime.Planning,
		Substitution: a.runtime.Substitution,
		Catalog:      a.runtime.Store,
		Events:       a.runtime.Events,
		Metrics:      a.runtime.Metrics,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("port", port).Str("driver", cfg.Database.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return cli.Exit("failed to start server: "+err.Error(), 1)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cli.Exit("server forced to shutdown: "+err.Error(), 1)
	}
	logger.Log.Info().Msg("Server exiting")
	return nil
}
