// Package platform implements the per-retailer product search and price
// lookup capability behind a shared adapter interface. The set of supported
// platforms is closed (domain.SupportedPlatforms); each configured platform
// gets one HTTP/JSON adapter against that retailer's API gateway.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Adapter is one platform's HTTP/JSON connector.
//
// Expected endpoints under the configured base URL:
//
//	GET {base}/api/search?q=...&brand=...&category=...   -> {"products":[...]}
//	GET {base}/api/products/{id}                         -> product record
//	GET {base}/api/products/{id}/price                   -> {"price":..,"currency":..,"availability":..}
type Adapter struct {
	platform    domain.Platform
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewAdapter creates an adapter for one platform.
func NewAdapter(platform domain.Platform, baseURL string) *Adapter {
	// Retail APIs tolerate roughly 2 req/s sustained; burst covers a
	// multi-platform match fanning out at once.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Adapter{
		platform: platform,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: limiter,
	}
}

// Platform returns the platform this adapter serves.
func (a *Adapter) Platform() domain.Platform {
	return a.platform
}

type searchResponse struct {
	Products []domain.ProductRecord `json:"products"`
}

// SearchProducts queries the platform for products similar to the given
// attributes. Criteria are passed through as query parameters.
func (a *Adapter) SearchProducts(ctx context.Context, name, brand, category string, criteria map[string]string) ([]domain.ProductRecord, error) {
	params := url.Values{}
	params.Add("q", name)
	if brand != "" {
		params.Add("brand", brand)
	}
	if category != "" {
		params.Add("category", category)
	}
	for k, v := range criteria {
		params.Add(k, v)
	}

	reqURL := fmt.Sprintf("%s/api/search?%s", a.baseURL, params.Encode())

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrAdapterFailure, err)
	}

	// Hits come back without a platform tag; stamp ours.
	for i := range resp.Products {
		resp.Products[i].Platform = a.platform
	}

	log.Printf("[ADAPTER] %s search %q returned %d products", a.platform, name, len(resp.Products))
	return resp.Products, nil
}

// GetProduct fetches one product's full record by platform-native id.
func (a *Adapter) GetProduct(ctx context.Context, productID string) (*domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/api/products/%s", a.baseURL, url.PathEscape(productID))

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var product domain.ProductRecord
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", domain.ErrAdapterFailure, err)
	}
	product.Platform = a.platform
	if product.ProductID == "" {
		product.ProductID = productID
	}

	return &product, nil
}

// GetProductPrice fetches the current price record for a product. A 404
// means the platform does not list the product; that is a nil price, not
// an adapter failure.
func (a *Adapter) GetProductPrice(ctx context.Context, productID string) (*domain.PriceInfo, error) {
	reqURL := fmt.Sprintf("%s/api/products/%s/price", a.baseURL, url.PathEscape(productID))

	body, err := a.doRequest(ctx, reqURL)
	if err == errNotListed {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var price domain.PriceInfo
	if err := json.Unmarshal(body, &price); err != nil {
		return nil, fmt.Errorf("%w: decode price: %v", domain.ErrAdapterFailure, err)
	}
	return &price, nil
}

// errNotListed distinguishes a clean 404 from a transport failure.
var errNotListed = fmt.Errorf("product not listed")

// doRequest executes a GET with rate limiting and bounded retries on
// transient failures, returning the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := a.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrAdapterFailure, err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAdapterFailure, err)
		}
		req.Header.Set("User-Agent", "Wyoiwyget/1.0")
		req.Header.Set("Accept", "application/json")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrAdapterFailure, err)
			if sleepErr := sleepCtx(ctx, backoff(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, errNotListed
		default:
			lastErr = fmt.Errorf("%w: %s returned status %d", domain.ErrAdapterFailure, a.platform, resp.StatusCode)
			if sleepErr := sleepCtx(ctx, backoff(attempt)); sleepErr != nil {
				return nil, lastErr
			}
		}
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
