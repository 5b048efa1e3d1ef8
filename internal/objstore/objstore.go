// Package objstore uploads menu item images to the hosted bucket and
// returns durable public URLs. One authenticated POST per upload; no
// retries in the core.
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	endpoint string
	bucket   string
	apiKey   string
	httpc    *http.Client
}

func NewClient(endpoint, bucket, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		bucket:   bucket,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores the named object and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.endpoint, c.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return c.PublicURL(name), nil
}

// PublicURL returns the durable public URL for an already-uploaded object.
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.endpoint, c.bucket, name)
}
