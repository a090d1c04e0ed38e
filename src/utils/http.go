package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBody bounds how much of an upstream body is read into memory.
const maxResponseBody = 4 << 20

type HTTPResponse struct {
	StatusCode int
	Body       []byte
}

func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PostJSON sends payload as a JSON body. bearerToken is added as an
// Authorization header when non-empty. A nil payload sends an empty body.
func PostJSON(ctx context.Context, client *http.Client, url string, bearerToken string, payload interface{}) (*HTTPResponse, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("PostJSON: failed to marshal payload: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("PostJSON: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearerToken))
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PostJSON: request failed: %w", err)
	}

	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("PostJSON: failed to read response body: %w", err)
	}

	return &HTTPResponse{
		StatusCode: res.StatusCode,
		Body:       b,
	}, nil
}
