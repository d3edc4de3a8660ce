// Package gateway is the only path to the remote backend. The backend
// is a single script endpoint that multiplexes every operation through
// one POST envelope, so the client mirrors that: one request function,
// thin typed wrappers, and one unified error channel. Transport
// failures, non-2xx statuses, and structural error payloads all come
// back as plain errors; callers never learn which kind they got.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

var log = logger.New("GATEWAY")

// Client talks to the remote script endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	offline atomic.Bool
}

func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Offline reports the last known connectivity status. It is advisory:
// request does not consult it, callers gate on it before spending.
func (c *Client) Offline() bool {
	return c.offline.Load()
}

// SetOffline flips the connectivity flag. The probe loop owns this in
// production; tests set it directly.
func (c *Client) SetOffline(v bool) {
	c.offline.Store(v)
}

// StartProbe pings the backend on an interval and keeps the offline
// flag current. It returns when ctx is cancelled.
func (c *Client) StartProbe(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
			if err != nil {
				continue
			}
			resp, err := c.http.Do(req)
			if err != nil {
				if !c.offline.Swap(true) {
					log.Warn("backend unreachable, entering offline mode: %v", err)
				}
				continue
			}
			resp.Body.Close()
			if c.offline.Swap(false) {
				log.Success("backend reachable again")
			}
		}
	}
}

// errorEnvelope is the backend's structural failure shape. A 200 with
// status "error" is still a failure.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// request posts one action envelope and returns the raw response body.
// The action rides both in the query string and in the body, matching
// what the backend expects.
func (c *Client) request(ctx context.Context, action string, data map[string]interface{}) ([]byte, error) {
	payload := map[string]interface{}{"action": action}
	for k, v := range data {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", action, err)
	}

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	target := fmt.Sprintf("%s%saction=%s", c.baseURL, sep, url.QueryEscape(action))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s request failed with status %d", action, resp.StatusCode)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Status == "error" {
		return nil, fmt.Errorf("%s: %s", action, envelope.Message)
	}

	return responseBody, nil
}
