package eventservices

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const bridgeStreamPath = "/stream"

// BridgeClient reads the line-oriented event stream published by the node bridge.
type BridgeClient struct {
	url        string
	httpClient *http.Client
}

func NewBridgeClient(baseURL string) *BridgeClient {
	return &BridgeClient{
		url: strings.TrimRight(baseURL, "/") + bridgeStreamPath,
		// no client timeout: the stream stays open until ctx is cancelled
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Listen calls onLine for every non-empty line until the stream ends or ctx is done.
func (c *BridgeClient) Listen(ctx context.Context, onLine func(line string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("BridgeClient.Listen: failed to create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("BridgeClient.Listen: request failed: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("BridgeClient.Listen: unexpected status %d", res.StatusCode)
	}

	log.Infof("connected to bridge stream %s", c.url)

	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		onLine(line)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("BridgeClient.Listen: stream read failed: %w", err)
	}

	return nil
}
