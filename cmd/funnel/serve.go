package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/analytics"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/metrics"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/httpapi"
	redisadapter "github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/redis"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/rest"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/sqlite"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

// serveConfig is read from the environment. Flags cover the basics; backends
// are deployment concerns and stay out of the command line.
type serveConfig struct {
	RedisURL     string        `env:"FUNNEL_REDIS_URL"`
	SessionTTL   time.Duration `env:"FUNNEL_SESSION_TTL" envDefault:"720h"`
	RestURL      string        `env:"FUNNEL_REST_URL"`
	RestAPIKey   string        `env:"FUNNEL_REST_API_KEY"`
	SQLitePath   string        `env:"FUNNEL_SQLITE_PATH"`
	LogJSON      bool          `env:"FUNNEL_LOG_JSON" envDefault:"true"`
	LogLevel     string        `env:"FUNNEL_LOG_LEVEL" envDefault:"info"`
	AnalyticsLog bool          `env:"FUNNEL_ANALYTICS_LOG" envDefault:"false"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the funnel engine in server mode, exposing the session API over HTTP. Backends (Redis, remote sync, SQLite) are configured through FUNNEL_* environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		contentPath, _ := cmd.Flags().GetString("content")
		port, _ := cmd.Flags().GetString("port")

		if err := runServe(contentPath, port); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runServe(contentPath, port string) error {
	cfg, err := env.ParseAs[serveConfig]()
	if err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := logging.New(level)
	if cfg.LogJSON {
		logger = logging.NewJSON(level)
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	engineOpts := []funnel.Option{
		funnel.WithLogger(logger),
		funnel.WithLifecycleHooks(m.Hooks()),
		funnel.WithFailureCallback(m.DispatchFailure),
	}

	if cfg.RedisURL != "" {
		redisOpts, err := backend.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid FUNNEL_REDIS_URL: %w", err)
		}
		client := backend.NewClient(redisOpts)
		defer client.Close()
		engineOpts = append(engineOpts,
			funnel.WithSnapshotStore(redisadapter.NewFromClient(client, redisadapter.WithTTL(cfg.SessionTTL))),
			funnel.WithLocker(redisadapter.NewLocker(client, "funnel:")),
		)
		logger.Info("snapshot store: redis", "ttl", cfg.SessionTTL)
	}

	if cfg.RestURL != "" {
		engineOpts = append(engineOpts, funnel.WithRecordWriter(rest.New(cfg.RestURL, cfg.RestAPIKey)))
		logger.Info("record writer: rest", "url", cfg.RestURL)
	}
	if cfg.SQLitePath != "" {
		writer, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		defer writer.Close()
		engineOpts = append(engineOpts, funnel.WithRecordWriter(writer))
		logger.Info("record writer: sqlite", "path", cfg.SQLitePath)
	}

	var emitter *analytics.Emitter
	if cfg.AnalyticsLog {
		emitter = analytics.New(
			[]ports.Collector{analytics.NewLogCollector(logger)},
			analytics.WithLogger(logger),
		)
		defer emitter.Close()
		engineOpts = append(engineOpts, funnel.WithCollector(emitter))
	}

	ctx := context.Background()
	engine, err := funnel.Open(ctx, contentPath, engineOpts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	if report := engine.Validate(); !report.OK() {
		logger.Warn("content has defects",
			"missingTargets", report.MissingTargets,
			"unreachable", report.Unreachable,
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.NewHandler(engine, httpapi.WithLogger(logger)))
	mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting funnel server", "addr", srv.Addr, "content", contentPath)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		logger.Info("starting shutdown", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		logger.Info("funnel server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
