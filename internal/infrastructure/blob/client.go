// Package blob uploads generated assets (avatar renders, try-on images)
// to the configured blob storage account over its REST interface.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Client writes blobs with authenticated PUT requests. Auth uses a shared
// access signature appended to each blob URL.
type Client struct {
	endpoint   string
	container  string
	sasToken   string
	httpClient *http.Client
}

// NewClient creates a blob client for one storage account. container is
// the default container used when callers pass an empty container name.
func NewClient(endpoint, container, sasToken string) *Client {
	return &Client{
		endpoint:  endpoint,
		container: container,
		sasToken:  sasToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Upload writes a blob and returns its public URL (without the SAS token).
func (c *Client) Upload(ctx context.Context, container, name string, data []byte, contentType string) (string, error) {
	blobURL := c.blobURL(container, name)

	req, err := http.NewRequestWithContext(ctx, "PUT", c.signed(blobURL), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload blob %s: %w", name, err)
	}
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload blob %s: %w", name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload blob %s: storage returned status %d", name, resp.StatusCode)
	}

	log.Printf("[BLOB] uploaded %s (%d bytes)", name, len(data))
	return blobURL, nil
}

// Delete removes a blob. Deleting a blob that does not exist is not an error.
func (c *Client) Delete(ctx context.Context, container, name string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.signed(c.blobURL(container, name)), nil)
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete blob %s: storage returned status %d", name, resp.StatusCode)
	}
	return nil
}

func (c *Client) blobURL(container, name string) string {
	if container == "" {
		container = c.container
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, container, escapePath(name))
}

func (c *Client) signed(blobURL string) string {
	if c.sasToken == "" {
		return blobURL
	}
	return blobURL + "?" + c.sasToken
}

// escapePath escapes each path segment while keeping the separators, so
// names like "avatars/task-1/avatar.png" stay hierarchical.
func escapePath(name string) string {
	u := url.URL{Path: name}
	return u.EscapedPath()
}
