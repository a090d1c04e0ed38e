package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/topstepx-broker/src/broker"
	"github.com/jiaming2012/topstepx-broker/src/logger"
	"github.com/jiaming2012/topstepx-broker/src/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Main: %v", err)
	}
}

func run() (err error) {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OtelEnabled {
		otelShutdown, otelErr := setupOTelSDK(ctx)
		if otelErr != nil {
			return fmt.Errorf("failed to setup otel sdk: %w", otelErr)
		}

		logger.EnableTracing()

		defer func() {
			err = errors.Join(err, otelShutdown(context.Background()))
		}()
	}

	log.WithFields(log.Fields{
		"base_api_url":  cfg.BaseAPIURL,
		"live_mode":     cfg.LiveMode,
		"cache_backend": cfg.CacheBackend,
	}).Info("Main: starting topstepx broker")

	b, err := broker.New(ctx, cfg)
	if err != nil {
		return err
	}

	defer b.Close()

	var wg sync.WaitGroup

	s, err := newServer(&wg, b)
	if err != nil {
		return err
	}

	s.start(ctx)

	srv := &http.Server{
		Handler: s.handler,
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	log.Info("Main: init complete")

	select {
	case <-stop:
	case err = <-serveErr:
		log.Errorf("Main: server failed: %v", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Errorf("Main: failed to shut down http server: %v", shutdownErr)
	}

	s.close()

	wg.Wait()

	log.Info("Main: gracefully stopped!")
	return err
}
