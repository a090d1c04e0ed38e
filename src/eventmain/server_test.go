package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/topstepx-broker/src/broker"
	"github.com/jiaming2012/topstepx-broker/src/kvstore"
	"github.com/jiaming2012/topstepx-broker/src/mock"
	"github.com/jiaming2012/topstepx-broker/src/utils"
)

func TestServer(t *testing.T) {
	platform := mock.NewMockTopstepX(t)

	cfg := utils.DefaultConfig()
	cfg.CacheBackend = utils.CacheBackendMemory
	cfg.BaseAPIURL = platform.URL()
	require.NoError(t, cfg.Validate())

	var wg sync.WaitGroup
	s, err := newServer(&wg, broker.NewWithStore(cfg, kvstore.NewMemoryStore()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.start(ctx)

	ts := httptest.NewServer(s.handler)

	t.Run("serves the account snapshot", func(t *testing.T) {
		res, err := http.Get(ts.URL + "/api/accounts")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)

		require.Equal(t, http.StatusOK, res.StatusCode)
		require.JSONEq(t, `[]`, string(body))
	})

	t.Run("schedules one reauth job", func(t *testing.T) {
		jobs := s.scheduler.Jobs()
		require.Len(t, jobs, 1)
		require.Equal(t, "17:45", jobs[0].At)
	})

	t.Run("shuts down cleanly", func(t *testing.T) {
		ts.Close()
		cancel()
		s.close()
		wg.Wait()
	})
}
