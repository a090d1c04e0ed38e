package eventservices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBridgeClient_Listen(t *testing.T) {
	t.Run("delivers non-empty lines", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/stream" {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			fmt.Fprint(w, "order filled\n\n  \nposition closed\n")
		}))
		defer server.Close()

		var lines []string
		err := NewBridgeClient(server.URL+"/").Listen(context.Background(), func(line string) {
			lines = append(lines, line)
		})

		require.NoError(t, err)
		require.Equal(t, []string{"order filled", "position closed"}, lines)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		err := NewBridgeClient(server.URL).Listen(context.Background(), func(string) {})

		require.Error(t, err)
	})
}
