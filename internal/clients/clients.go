// Package clients holds the HTTP clients for the three remote collaborators
// of the fulfillment core: the inventory service, the master-data/BOM
// service, and the SimAL production scheduler. All calls are synchronous
// with a bounded timeout; callers treat errors as negative business results.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds every collaborator call
const DefaultTimeout = 5 * time.Second

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string, timeout time.Duration) httpClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// doJSON performs one JSON request and decodes the response into out when
// non-nil. Non-2xx statuses are returned as errors.
func (c httpClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s %s failed", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s %s returned status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response body")
	}
	return nil
}
