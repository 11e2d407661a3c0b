// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains registry main function to start the registry service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/absmach/registry/events/store"
	"github.com/absmach/registry/eventstore/mongodb"
	"github.com/absmach/registry/host"
	"github.com/absmach/registry/host/api"
	"github.com/absmach/registry/host/middleware"
	rlog "github.com/absmach/registry/logger"
	"github.com/absmach/registry/pkg/prometheus"
	"github.com/absmach/registry/pkg/uuid"
	"github.com/absmach/registry/registry"
	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const (
	svcName       = "registry"
	envPrefixDB   = "REGISTRY_DB_"
	envPrefixHost = "REGISTRY_HOST_"
)

type config struct {
	LogLevel   string `env:"REGISTRY_LOG_LEVEL"  envDefault:"info"`
	HTTPPort   string `env:"REGISTRY_HTTP_PORT"  envDefault:"9021"`
	ESURL      string `env:"REGISTRY_ES_URL"     envDefault:"redis://localhost:6379/0"`
	ESStream   string `env:"REGISTRY_ES_STREAM"  envDefault:"registry.things"`
	InstanceID string `env:"REGISTRY_INSTANCE_ID" envDefault:""`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := rlog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}

	var exitCode int
	defer rlog.ExitWithError(&exitCode)

	idp := uuid.New()
	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = idp.ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	dbConfig := mongodb.Config{}
	if err := env.ParseWithOptions(&dbConfig, env.Options{Prefix: envPrefixDB}); err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}
	db, err := mongodb.Connect(ctx, dbConfig)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to database: %s", err))
		exitCode = 1
		return
	}

	limits := registry.Limits{}
	if err := env.Parse(&limits); err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}

	hostConfig := host.Config{}
	if err := env.ParseWithOptions(&hostConfig, env.Options{Prefix: envPrefixHost}); err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}

	publisher, err := store.NewPublisher(cfg.ESURL, cfg.ESStream)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to event store: %s", err))
		exitCode = 1
		return
	}
	defer publisher.Close()

	dispatcher := registry.New(limits, idp)
	h := host.New(hostConfig, dispatcher, mongodb.NewEventRepository(db), mongodb.NewSnapshotRepository(db), publisher, logger)
	defer h.Close()

	counter, latency := prometheus.MakeMetrics(svcName, "commands")
	var svc host.Service = h
	svc = middleware.Tracing(otel.Tracer(svcName), svc)
	svc = middleware.Metrics(counter, latency, svc)
	svc = middleware.Logging(logger, svc)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.MakeHandler(svc, logger, cfg.InstanceID),
	}

	g.Go(func() error {
		logger.Info(fmt.Sprintf("%s service http server listening at %s", svcName, server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sig:
			logger.Info(fmt.Sprintf("%s service shutdown by signal: %s", svcName, s))
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
		exitCode = 1
	}
}
