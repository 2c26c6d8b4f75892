package rooms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Ref identifies a provisioned room at the external media service.
type Ref struct {
	Name   string
	Region string
}

// Deleter tears down an external room. Callers treat failures as advisory:
// teardown must never gate billing closure.
type Deleter interface {
	DeleteRoom(ctx context.Context, ref Ref) error
}

type HTTPClient struct {
	baseURL string
	apiKey  string
	inner   *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		inner:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) DeleteRoom(ctx context.Context, ref Ref) error {
	if ref.Name == "" {
		return nil
	}
	endpoint := c.baseURL + "/rooms/" + url.PathEscape(ref.Name)
	if ref.Region != "" {
		endpoint += "?region=" + url.QueryEscape(ref.Region)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	// A room that is already gone is a success for teardown purposes.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("room delete failed with status %d", resp.StatusCode)
}

// NopDeleter is used when no room service is configured.
type NopDeleter struct{}

func (NopDeleter) DeleteRoom(context.Context, Ref) error { return nil }
