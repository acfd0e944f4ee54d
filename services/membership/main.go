// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/outpost-collective/outpost/pkg/logging"
	"github.com/outpost-collective/outpost/services/membership/catalog"
	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/config"
	"github.com/outpost-collective/outpost/services/membership/handlers"
	"github.com/outpost-collective/outpost/services/membership/middleware"
	"github.com/outpost-collective/outpost/services/membership/observability"
	"github.com/outpost-collective/outpost/services/membership/routes"
	"github.com/outpost-collective/outpost/services/membership/storage"
	"github.com/outpost-collective/outpost/services/membership/timeline"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("membership-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func logLevel(name string) logging.Level {
	switch name {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func buildVerifier(cfg config.AuthConfig) middleware.TokenVerifier {
	if cfg.Mode == "static" {
		tokens := make(map[string]middleware.Identity, len(cfg.Tokens))
		for _, entry := range cfg.Tokens {
			tokens[entry.Token] = middleware.Identity{
				AgentID: entry.AgentID,
				Handle:  entry.Handle,
				Roles:   entry.Roles,
			}
		}
		return middleware.NewStaticVerifier(tokens)
	}
	slog.Warn("auth is in dev mode, every request is a local admin")
	return middleware.DevVerifier{}
}

func main() {
	configPath := flag.String("config", os.Getenv("OUTPOST_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "membership",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if cfg.Tracing.Enabled {
		cleanup, err := initTracer(cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	}

	metrics := observability.InitMetrics()

	// --- Storage ---
	storageCfg := storage.DefaultConfig(cfg.Storage.Path)
	storageCfg.InMemory = cfg.Storage.InMemory
	storageCfg.SyncWrites = cfg.Storage.SyncWrites
	db, err := storage.Open(storageCfg)
	if err != nil {
		log.Fatalf("failed to open the data directory: %v", err)
	}
	defer db.Close()
	store := storage.NewStore(db)

	// --- Challenge catalog ---
	cat := catalog.New(cfg.Catalog.Dir, slog.Default())
	cat.OnReload(func(count int) {
		metrics.RecordCatalogReload(true, count)
	})
	if err := cat.Load(); err != nil {
		log.Fatalf("failed to load the challenge catalog: %v", err)
	}

	// --- Engine wiring ---
	tracker := cipher.NewTracker(store)
	gate := cipher.NewGate(tracker, slog.Default())
	walker := timeline.NewWalker(store, tracker, slog.Default())
	feed := handlers.NewFeed(cfg.Feed.EventsPerSecond, cfg.Feed.Burst, metrics, slog.Default())

	router := gin.Default()
	router.Use(otelgin.Middleware("membership-service"))
	routes.SetupRoutes(router, routes.Options{
		Store:    store,
		Catalog:  cat,
		Gate:     gate,
		Tracker:  tracker,
		Walker:   walker,
		Verifier: buildVerifier(cfg.Auth),
		Metrics:  metrics,
		Feed:     feed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: router,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("starting the membership server", "addr", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Catalog.Watch {
		group.Go(func() error {
			return cat.Watch(ctx)
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownGraceSeconds)*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
