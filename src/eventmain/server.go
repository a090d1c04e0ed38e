package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/topstepx-broker/src/broker"
	"github.com/jiaming2012/topstepx-broker/src/eventpubsub"
	"github.com/jiaming2012/topstepx-broker/src/eventproducers/api"
	"github.com/jiaming2012/topstepx-broker/src/realtime"
	"github.com/jiaming2012/topstepx-broker/src/worker"
)

type server struct {
	handler     http.Handler
	broadcaster *realtime.Broadcaster
	scheduler   *worker.ReauthScheduler
}

func newServer(wg *sync.WaitGroup, b *broker.Broker) (*server, error) {
	loc, err := b.Config.ReauthLocation()
	if err != nil {
		return nil, fmt.Errorf("newServer: %w", err)
	}

	scheduler, err := worker.NewReauthScheduler(wg, b.Sessions, b.Config.Reauth.At, loc, b.Config.Reauth.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("newServer: %w", err)
	}

	broadcaster, err := realtime.NewBroadcaster(eventpubsub.NewBus(), b.Cache, b.Sync)
	if err != nil {
		return nil, fmt.Errorf("newServer: %w", err)
	}

	router := mux.NewRouter()
	api.NewHandler(b.Sessions, b.Cache, broadcaster).SetupRoutes(router)

	return &server{
		handler:     otelhttp.NewHandler(router, serviceName),
		broadcaster: broadcaster,
		scheduler:   scheduler,
	}, nil
}

func (s *server) start(ctx context.Context) {
	s.scheduler.Start(ctx)
}

func (s *server) close() {
	s.broadcaster.Close()
}
