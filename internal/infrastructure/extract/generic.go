package extract

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// priceRe matches the first dollar amount on a page, e.g. "$49.99".
var priceRe = regexp.MustCompile(`\$\s?(\d{1,5}(?:,\d{3})*(?:\.\d{2})?)`)

// GenericScraper extracts a best-effort product record from an arbitrary
// product page: title tag (or og:title) for the name, first currency
// amount in the body for the price.
type GenericScraper struct {
	httpClient *http.Client
}

func NewGenericScraper() *GenericScraper {
	return &GenericScraper{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Scrape fetches the page and pulls out what product fields it can.
func (s *GenericScraper) Scrape(ctx context.Context, rawURL string) (*domain.ProductRecord, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Wyoiwyget/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	product := &domain.ProductRecord{
		Platform: domain.PlatformGeneric,
		URL:      rawURL,
	}

	var bodyText strings.Builder
	walk(doc, product, &bodyText)

	if m := priceRe.FindStringSubmatch(bodyText.String()); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			product.Price = &p
			product.Currency = "USD"
		}
	}

	return product, nil
}

// walk collects the title, og meta tags and visible text in one pass.
func walk(n *html.Node, product *domain.ProductRecord, text *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if n.FirstChild != nil && product.Name == "" {
				product.Name = strings.TrimSpace(n.FirstChild.Data)
			}
		case "meta":
			prop, content := attr(n, "property"), attr(n, "content")
			switch prop {
			case "og:title":
				// og:title beats the title tag; sites pad titles with branding.
				if content != "" {
					product.Name = strings.TrimSpace(content)
				}
			case "og:image":
				if product.ImageURL == "" {
					product.ImageURL = content
				}
			case "og:description":
				if product.Description == "" {
					product.Description = strings.TrimSpace(content)
				}
			}
		case "script", "style":
			return
		}
	}
	if n.Type == html.TextNode {
		text.WriteString(n.Data)
		text.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, product, text)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
