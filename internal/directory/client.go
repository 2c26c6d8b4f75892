package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client syncs a candidate's outward status with the directory service.
// Calls are fire-and-forget from the engine's point of view: the caller logs
// failures and moves on.
type Client interface {
	SetCandidateStatus(ctx context.Context, candidateID, status string) error
}

type HTTPClient struct {
	baseURL string
	inner   *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		inner:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetCandidateStatus(ctx context.Context, candidateID, status string) error {
	raw, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return err
	}
	endpoint := c.baseURL + "/candidates/" + url.PathEscape(candidateID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.inner.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("directory sync failed with status %d", resp.StatusCode)
	}
	return nil
}

// NopClient is used when no directory service is configured.
type NopClient struct{}

func (NopClient) SetCandidateStatus(context.Context, string, string) error { return nil }
