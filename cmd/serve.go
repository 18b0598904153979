package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	pmcontext "github.com/platform-mesh/golang-commons/context"
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/platform-mesh/golang-commons/sentry"
	"github.com/platform-mesh/golang-commons/traces"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/platform-mesh/graphql-schema-provider/common/watcher"
	"github.com/platform-mesh/graphql-schema-provider/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the resolved schema over GraphQL",
	Example: "graphql-schema-provider serve --project-config project.yaml",
	Run: func(_ *cobra.Command, _ []string) {
		defer pmcontext.Recover(log)

		log.Info().Str("LogLevel", log.GetLevel().String()).Msg("Starting the schema server...")

		if err := appCfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}

		ctx, _, shutdown := pmcontext.StartContext(log, appCfg, 1*time.Second)
		defer shutdown()

		if err := initializeSentry(ctx, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Sentry")
		}

		tracingShutdown, err := initializeTracing(ctx, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			if err := tracingShutdown(ctx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown TracerProvider")
			}
		}()

		srv := server.New(log.ComponentLogger("server"), appCfg)
		reloader := server.NewReloader(log.ComponentLogger("reloader"), srv, newProvider, appCfg.RequestTimeout)

		// an unresolved schema is not fatal: readiness stays false until a
		// config change resolves one
		if err := reloader.Reload(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to resolve initial schema")
			sentry.CaptureError(err, nil)
		}

		if err := runServers(ctx, log, srv, reloader); err != nil {
			log.Fatal().Err(err).Msg("Failed to run servers")
		}
	},
}

func initializeSentry(ctx context.Context, log *logger.Logger) error {
	if defaultCfg.Sentry.Dsn == "" {
		return nil
	}

	err := sentry.Start(ctx,
		defaultCfg.Sentry.Dsn, defaultCfg.Environment, defaultCfg.Region,
		defaultCfg.Image.Name, defaultCfg.Image.Tag,
	)
	if err != nil {
		return fmt.Errorf("sentry init failed: %w", err)
	}
	return nil
}

func initializeTracing(ctx context.Context, log *logger.Logger) (func(ctx context.Context) error, error) {
	if defaultCfg.Tracing.Enabled {
		shutdown, err := traces.InitProvider(ctx, defaultCfg.Tracing.Collector)
		if err != nil {
			return nil, fmt.Errorf("unable to start gRPC-Sidecar TracerProvider: %w", err)
		}
		return shutdown, nil
	}

	shutdown, err := traces.InitLocalProvider(ctx, defaultCfg.Tracing.Collector, false)
	if err != nil {
		return nil, fmt.Errorf("unable to start local TracerProvider: %w", err)
	}
	log.Debug().Msg("using local TracerProvider")
	return shutdown, nil
}

func createServers(srv *server.Server) (*http.Server, *http.Server, *http.Server) {
	mainMux := http.NewServeMux()
	mainMux.Handle("/graphql", srv)
	mainServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appCfg.Serve.Port),
		Handler: mainMux,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    defaultCfg.Metrics.BindAddress,
		Handler: metricsMux,
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	healthMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !srv.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	healthServer := &http.Server{
		Addr:    defaultCfg.HealthProbeBindAddress,
		Handler: healthMux,
	}

	return mainServer, metricsServer, healthServer
}

func shutdownServers(ctx context.Context, log *logger.Logger, servers ...*http.Server) {
	log.Info().Msg("Shutting down HTTP servers...")

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("HTTP server shutdown failed")
		}
	}
}

func listen(log *logger.Logger, name string, srv *http.Server) func() error {
	return func() error {
		log.Info().Str("addr", srv.Addr).Msgf("Starting %s HTTP server", name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server error: %w", name, err)
		}
		return nil
	}
}

func runServers(ctx context.Context, log *logger.Logger, srv *server.Server, reloader *server.Reloader) error {
	mainServer, metricsServer, healthServer := createServers(srv)

	configWatcher, err := watcher.NewFileWatcher(reloader, log.ComponentLogger("watcher"), appCfg.Serve.ReloadDebounce)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(listen(log, "main", mainServer))
	eg.Go(listen(log, "metrics", metricsServer))
	eg.Go(listen(log, "health", healthServer))

	eg.Go(func() error {
		return reloader.Run(egCtx)
	})

	eg.Go(func() error {
		return configWatcher.Watch(egCtx, appCfg.ConfigFile)
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultCfg.ShutdownTimeout)
		defer cancel()

		shutdownServers(shutdownCtx, log, mainServer, metricsServer, healthServer)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Server shut down successfully")
	return nil
}
