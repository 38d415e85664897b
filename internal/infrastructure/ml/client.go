// Package ml talks to the model-serving endpoint used for avatar image
// generation, virtual try-on composition and fit analysis. Each call is a
// single bounded request; all retry and rate-limit handling lives here so
// the services above treat inference as an opaque collaborator.
package ml

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Client is an HTTP client for the inference endpoint.
type Client struct {
	endpoint    string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a client for the given inference endpoint.
func NewClient(endpoint, apiKey string) *Client {
	// Image generation is slow; keep the limiter loose but the pool from
	// stampeding the endpoint.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		rateLimiter: limiter,
	}
}

// GenerateAvatarImage renders an avatar image from a text prompt and
// returns the PNG bytes.
func (c *Client) GenerateAvatarImage(ctx context.Context, prompt string) ([]byte, error) {
	payload := map[string]any{"prompt": prompt, "size": "1024x1024"}
	return c.postBinary(ctx, "/v1/images/avatar", payload)
}

// ApplyAvatarFeatures blends features from a user-supplied reference
// photo ("face" or "body") into a rendered avatar and returns the
// refined PNG bytes.
func (c *Client) ApplyAvatarFeatures(ctx context.Context, feature string, baseImage []byte, referenceURL string) ([]byte, error) {
	payload := map[string]any{
		"feature":             feature,
		"base_image":          base64.StdEncoding.EncodeToString(baseImage),
		"reference_image_url": referenceURL,
	}
	return c.postBinary(ctx, "/v1/images/avatar/features", payload)
}

// TryOn composites a garment onto an avatar image and returns the
// rendered PNG bytes.
func (c *Client) TryOn(ctx context.Context, input map[string]any) ([]byte, error) {
	return c.postBinary(ctx, "/v1/images/tryon", input)
}

// AnalyzeFit runs the fit model over avatar measurements and garment
// attributes, returning its structured prediction.
func (c *Client) AnalyzeFit(ctx context.Context, input map[string]any) (domain.FitPrediction, error) {
	body, err := c.post(ctx, "/v1/fit/analyze", input)
	if err != nil {
		return nil, err
	}

	var prediction domain.FitPrediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		return nil, fmt.Errorf("%w: decode fit prediction: %v", domain.ErrMLAPIFailure, err)
	}
	return prediction, nil
}

func (c *Client) postBinary(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	return c.post(ctx, path, payload)
}

// post sends one JSON request with rate limiting and bounded retries on
// 5xx responses and transport errors.
func (c *Client) post(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrMLAPIFailure, err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrMLAPIFailure, err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMLAPIFailure, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrMLAPIFailure, err)
			if !c.wait(ctx, attempt) {
				return nil, lastErr
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		lastErr = fmt.Errorf("%w: %s returned status %d", domain.ErrMLAPIFailure, path, resp.StatusCode)
		if resp.StatusCode < 500 {
			// Client errors never succeed on retry.
			return nil, lastErr
		}
		log.Printf("[ML] attempt %d on %s failed with status %d, retrying", attempt, path, resp.StatusCode)
		if !c.wait(ctx, attempt) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) wait(ctx context.Context, attempt int) bool {
	timer := time.NewTimer(time.Duration(attempt) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
