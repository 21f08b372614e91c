// FilePath: internal/osem/client.go

// Package osem is the upload client for the openSenseMap ingest API.
package osem

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/internal/models"
)

const (
	// DefaultBaseURL is the production openSenseMap API.
	DefaultBaseURL = "https://api.opensensemap.org"
	// DefaultTimeout bounds the whole request, connect and body included.
	DefaultTimeout = 30 * time.Second

	softwareType    = "HomeAssistant-OpenSenseMap"
	redactionMarker = "***"
)

// Client pushes measurement payloads to a senseBox. The underlying HTTP
// client is reused across cycles and released with Close.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates an upload client. An empty baseURL selects the
// production API; a zero timeout selects the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
	}
}

// Push uploads the payload for the given box. An empty payload is a
// success without a network call. The returned snapshot is non-nil only
// when debug is set; it is built on every attempt, regardless of outcome,
// with the Authorization header redacted.
//
// Error messages are stable: "HTTP {status}: {body}" for a non-2xx
// response and "Request timeout" when the attempt exceeds the timeout.
func (c *Client) Push(ctx context.Context, boxID, accessToken string, payload map[string]string, debug bool) (*models.RequestSnapshot, error) {
	if len(payload) == 0 {
		nuts.L.Debugf("[OSeM] No sensor data to push")
		return nil, nil
	}

	url := fmt.Sprintf("%s/boxes/%s/data", c.baseURL, boxID)

	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
		"User-Agent":   softwareType + "/1.0.0",
	}
	if accessToken != "" {
		headers["Authorization"] = "Bearer " + accessToken
	}

	var snapshot *models.RequestSnapshot
	if debug {
		snapshot = snapshotRequest(url, headers, payload)
		nuts.L.Debugf("[OSeM] Pushing data: %+v", snapshot)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(payload).
		Post(url)
	if err != nil {
		if isTimeout(err) {
			nuts.L.Errorf("[OSeM] Timeout pushing data to %s", url)
			return snapshot, stderrors.New("Request timeout")
		}
		nuts.L.Errorf("[OSeM] Network error pushing data: %v", err)
		return snapshot, err
	}

	status := resp.StatusCode()
	if status == 200 || status == 201 {
		nuts.L.Debugf("[OSeM] Successfully pushed data to box %s", boxID)
		return snapshot, nil
	}

	nuts.L.Errorf("[OSeM] Failed to push data: %d - %s", status, resp.String())
	return snapshot, fmt.Errorf("HTTP %d: %s", status, resp.String())
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// snapshotRequest captures the request with the Authorization value
// replaced, never the raw token.
func snapshotRequest(url string, headers, payload map[string]string) *models.RequestSnapshot {
	redacted := make(map[string]string, len(headers))
	for k, v := range headers {
		if k == "Authorization" {
			v = redactionMarker
		}
		redacted[k] = v
	}
	return &models.RequestSnapshot{
		URL:     url,
		Headers: redacted,
		Payload: payload,
	}
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
