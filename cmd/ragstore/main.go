package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/embercloud/ragstore/internal/config"
	"github.com/embercloud/ragstore/internal/embedding"
	"github.com/embercloud/ragstore/internal/ingest"
	"github.com/embercloud/ragstore/internal/observability"
	"github.com/embercloud/ragstore/internal/server"
	"github.com/embercloud/ragstore/internal/store"
	"github.com/embercloud/ragstore/internal/vector"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ragstore",
		Short: "Namespace-scoped dense-vector store for retrieval augmented generation",
	}

	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "Config file path (defaults and RAGSTORE_* env apply without one)")

	var (
		serverURL string
		namespace string
	)
	ingestCmd := &cobra.Command{
		Use:   "ingest file...",
		Short: "Upsert transcript text files into a running service (use - for stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := ingest.ReadTexts(args)
			if err != nil {
				return err
			}
			client := ingest.NewClient(serverURL)
			n, err := client.Upsert(cmd.Context(), namespace, texts)
			if err != nil {
				return err
			}
			fmt.Printf("Upserted %d items to namespace %q\n", n, namespace)
			return nil
		},
	}
	ingestCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the ragstore service")
	ingestCmd.Flags().StringVar(&namespace, "namespace", "default", "Target namespace")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ragstore " + version)
		},
	}

	rootCmd.AddCommand(serveCmd, ingestCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	metrics := observability.NewServiceMetrics()

	st := store.NewRedis(store.RedisOptions{
		Address:  cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	provider, err := embedding.NewFactory().Create(embedding.ProviderConfig{
		Provider:          cfg.Embedding.Provider,
		APIKey:            cfg.Embedding.APIKey,
		Model:             cfg.Embedding.Model,
		BaseURL:           cfg.Embedding.BaseURL,
		Dimensions:        cfg.Embedding.Dimensions,
		Timeout:           cfg.Embedding.Timeout,
		MaxRetries:        cfg.Embedding.MaxRetries,
		RetryDelay:        cfg.Embedding.RetryDelay,
		RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
	})
	if err != nil {
		return fmt.Errorf("creating embedding provider: %w", err)
	}

	var searcher vector.Searcher
	var qdrantClose func() error
	switch cfg.Vector.Backend {
	case "qdrant":
		q, err := vector.NewQdrant(ctx, provider, cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection, logger)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		searcher = q
		qdrantClose = q.Close
	default:
		searcher = vector.NewEngine(provider, st, metrics, logger)
	}

	router := mux.NewRouter()
	server.NewAPI(searcher, logger).Routes(router)

	health := server.NewHealth(version)
	health.RegisterCheck("store", server.StoreHealthChecker(st.Ping))
	health.RegisterCheck("embedder", server.EmbedderHealthChecker(provider.Name(), nil))
	health.Routes(router)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdown := server.NewShutdownHandler(&server.ShutdownConfig{
		Timeout: cfg.Server.ShutdownTimeout,
	}, logger)

	httpHook := server.HTTPServerShutdownHook("http-server", httpServer.Shutdown)
	shutdown.RegisterHook(httpHook.Name, httpHook.Priority, httpHook.Fn)
	traceHook := server.TracingShutdownHook(tp.Shutdown)
	shutdown.RegisterHook(traceHook.Name, traceHook.Priority, traceHook.Fn)
	storeHook := server.StoreShutdownHook(st.Close)
	shutdown.RegisterHook(storeHook.Name, storeHook.Priority, storeHook.Fn)
	if qdrantClose != nil {
		shutdown.RegisterHook("qdrant", 85, func(ctx context.Context) error {
			return qdrantClose()
		})
	}
	shutdown.Start()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := st.Ping(pingCtx); err != nil {
		logger.Warn("store not reachable at startup", "addr", cfg.Redis.Addr, "error", err)
	}
	cancel()
	health.SetReady(true)

	logger.Info("server starting",
		"addr", addr,
		"embedding_provider", provider.Name(),
		"vector_backend", cfg.Vector.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-shutdown.ShutdownCh():
	}

	shutdown.Wait()
	logger.Info("server stopped")
	return nil
}
