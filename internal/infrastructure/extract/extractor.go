// Package extract turns a product page URL into a normalized ProductRecord.
// Known platforms are recognized by hostname and their product id pulled
// from the URL path; full details come from the platform adapter. URLs on
// unrecognized hosts fall back to fetching the page and scraping it.
package extract

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// AdapterLookup resolves the adapter for a platform, when one is configured.
type AdapterLookup interface {
	Lookup(p domain.Platform) (domain.PlatformAdapter, bool)
}

// platformPattern ties a hostname fragment to the product id pattern in
// that platform's URLs.
type platformPattern struct {
	platform domain.Platform
	host     string
	idRe     *regexp.Regexp
}

var platformPatterns = []platformPattern{
	{domain.PlatformAmazon, "amazon.", regexp.MustCompile(`/dp/([A-Z0-9]{10})`)},
	{domain.PlatformEbay, "ebay.", regexp.MustCompile(`/itm/(\d+)`)},
	{domain.PlatformWalmart, "walmart.", regexp.MustCompile(`/ip/([^/?]+)`)},
	{domain.PlatformTarget, "target.", regexp.MustCompile(`/p/([^/?]+)`)},
	{domain.PlatformBestBuy, "bestbuy.", regexp.MustCompile(`/site/([^/?]+)\.p`)},
	{domain.PlatformNewegg, "newegg.", regexp.MustCompile(`/p/([^/?]+)`)},
}

// Extractor resolves product URLs to records.
type Extractor struct {
	adapters AdapterLookup
	generic  *GenericScraper
}

// NewExtractor creates an extractor backed by the given adapter registry.
// The generic scraper handles URLs outside the supported platform set.
func NewExtractor(adapters AdapterLookup, generic *GenericScraper) *Extractor {
	return &Extractor{
		adapters: adapters,
		generic:  generic,
	}
}

// IdentifyPlatform maps a product URL to its platform and platform-native
// product id. Unrecognized hosts resolve to PlatformGeneric with an empty id.
func IdentifyPlatform(rawURL string) (domain.Platform, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.PlatformGeneric, ""
	}
	host := strings.ToLower(u.Hostname())

	for _, pp := range platformPatterns {
		if !strings.Contains(host, pp.host) {
			continue
		}
		if m := pp.idRe.FindStringSubmatch(u.Path); m != nil {
			return pp.platform, m[1]
		}
		// Right host, unrecognized path shape. Still the platform's page,
		// but nothing the adapter can look up.
		return pp.platform, ""
	}
	return domain.PlatformGeneric, ""
}

// ExtractProduct resolves a product URL to a normalized record. A record
// with no name is treated as a failed extraction.
func (e *Extractor) ExtractProduct(ctx context.Context, rawURL string) (*domain.ProductRecord, error) {
	platform, productID := IdentifyPlatform(rawURL)

	var (
		product *domain.ProductRecord
		err     error
	)

	if platform != domain.PlatformGeneric && productID != "" {
		if adapter, ok := e.adapters.Lookup(platform); ok {
			product, err = adapter.GetProduct(ctx, productID)
			if err != nil {
				log.Printf("[EXTRACT] %s adapter lookup for %s failed: %v", platform, productID, err)
			}
		}
	}

	if product == nil && e.generic != nil {
		product, err = e.generic.Scrape(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}
		product.Platform = platform
	}

	if product == nil {
		return nil, fmt.Errorf("%w: no extraction path for %s", domain.ErrExtractionFailed, rawURL)
	}
	if product.Name == "" {
		return nil, fmt.Errorf("%w: page at %s yielded no product name", domain.ErrExtractionFailed, rawURL)
	}

	product.URL = rawURL
	if product.ProductID == "" {
		product.ProductID = productID
	}
	return product, nil
}
