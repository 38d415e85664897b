package domain

import "time"

// Platform identifies a supported retail platform. The set is closed:
// adding a platform means adding a constant here and wiring an adapter for it.
type Platform string

const (
	PlatformAmazon  Platform = "amazon"
	PlatformEbay    Platform = "ebay"
	PlatformWalmart Platform = "walmart"
	PlatformTarget  Platform = "target"
	PlatformBestBuy Platform = "bestbuy"
	PlatformNewegg  Platform = "newegg"
	PlatformGeneric Platform = "generic"
)

// SupportedPlatforms is the fixed iteration order used throughout matching.
// Candidate ranking on score ties is stable in this order.
var SupportedPlatforms = []Platform{
	PlatformAmazon,
	PlatformEbay,
	PlatformWalmart,
	PlatformTarget,
	PlatformBestBuy,
	PlatformNewegg,
}

// ProductRecord is a normalized product extracted from a platform.
// Records are immutable once extracted.
type ProductRecord struct {
	Platform     Platform `json:"platform"`
	ProductID    string   `json:"product_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Category     string   `json:"category,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
	Availability string   `json:"availability,omitempty"`
	URL          string   `json:"url"`
}

// MatchCandidate is a search hit scored against the source product.
type MatchCandidate struct {
	ProductRecord
	RelevanceScore float64 `json:"relevance_score"`
}

// MatchResult is the persisted outcome of one matching invocation.
// Matches are sorted descending by relevance score.
type MatchResult struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	SourceURL       string            `json:"source_url"`
	SourceProduct   *ProductRecord    `json:"source_product"`
	Matches         []MatchCandidate  `json:"matches"`
	TargetPlatforms []Platform        `json:"target_platforms"`
	Criteria        map[string]string `json:"criteria,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// PriceInfo is a single platform's current price for a product.
type PriceInfo struct {
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency,omitempty"`
	Availability string   `json:"availability,omitempty"`
}

// PriceStats summarizes prices across platforms. When no platform reports
// a price, all figures are zero and BestDeals is empty.
type PriceStats struct {
	MinPrice   float64    `json:"min_price"`
	MaxPrice   float64    `json:"max_price"`
	AvgPrice   float64    `json:"avg_price"`
	PriceRange float64    `json:"price_range"`
	BestDeals  []Platform `json:"best_deals"`
}

// PriceComparison aggregates per-platform prices for one product.
type PriceComparison struct {
	Product     *ProductRecord         `json:"product"`
	Prices      map[Platform]PriceInfo `json:"price_comparison"`
	Stats       PriceStats             `json:"statistics"`
	LastUpdated time.Time              `json:"last_updated"`
}

// PricePoint is one row of a product's price history on a platform.
type PricePoint struct {
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Availability string    `json:"availability"`
	TrackedAt    time.Time `json:"tracked_at"`
}
