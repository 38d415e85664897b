package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// AdapterLookup resolves the configured adapter for a platform.
type AdapterLookup interface {
	Lookup(p domain.Platform) (domain.PlatformAdapter, bool)
}

// ProductExtractor turns a product page URL into a normalized record.
type ProductExtractor interface {
	ExtractProduct(ctx context.Context, rawURL string) (*domain.ProductRecord, error)
}

// MatchingService finds equivalent products across retail platforms and
// compares their prices. One platform failing never aborts a match; the
// failure is logged and that platform contributes nothing.
type MatchingService struct {
	extractor ProductExtractor
	adapters  AdapterLookup
	repo      domain.MatchRepository
	cache     domain.CacheRepository
	threshold float64
	cacheTTL  time.Duration
}

// NewMatchingService creates a matching service. Candidates scoring at or
// below threshold are discarded.
func NewMatchingService(
	extractor ProductExtractor,
	adapters AdapterLookup,
	repo domain.MatchRepository,
	cache domain.CacheRepository,
	threshold float64,
) *MatchingService {
	return &MatchingService{
		extractor: extractor,
		adapters:  adapters,
		repo:      repo,
		cache:     cache,
		threshold: threshold,
		cacheTTL:  1 * time.Hour,
	}
}

// FindMatches extracts the product at sourceURL and searches each target
// platform for equivalents, returning candidates ranked by relevance.
// Extraction failure aborts the match; nothing is persisted in that case.
func (s *MatchingService) FindMatches(ctx context.Context, userID, sourceURL string, targetPlatforms []domain.Platform, criteria map[string]string) (*domain.MatchResult, error) {
	source, err := s.extractor.ExtractProduct(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("extract source product: %w", err)
	}

	query := NormalizeQuery(source.Name, source.Brand)
	log.Printf("[MATCH] matching %q (query %q) across %d platforms for user %s", source.Name, query, len(targetPlatforms), userID)

	var matches []domain.MatchCandidate
	for _, platform := range targetPlatforms {
		adapter, ok := s.adapters.Lookup(platform)
		if !ok {
			log.Printf("[MATCH] Warning: skipping unknown or unconfigured platform %q", platform)
			continue
		}

		hits, err := adapter.SearchProducts(ctx, query, source.Brand, source.Category, criteria)
		if err != nil {
			log.Printf("[MATCH] Warning: search on %s failed: %v", platform, err)
			continue
		}

		for i := range hits {
			score := RelevanceScore(source, &hits[i])
			if score <= s.threshold {
				continue
			}
			candidate := domain.MatchCandidate{
				ProductRecord:  hits[i],
				RelevanceScore: score,
			}
			candidate.Platform = platform
			matches = append(matches, candidate)
		}
	}

	// Stable keeps same-score candidates in platform declaration order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})

	result := &domain.MatchResult{
		ID:              uuid.NewString(),
		UserID:          userID,
		SourceURL:       sourceURL,
		SourceProduct:   source,
		Matches:         matches,
		TargetPlatforms: targetPlatforms,
		Criteria:        criteria,
		CreatedAt:       time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, matchCacheKey(result.ID), result, s.cacheTTL); err != nil {
			log.Printf("[MATCH] Warning: failed to cache match result %s: %v", result.ID, err)
		}
	}

	if err := s.repo.SaveMatchResult(ctx, result); err != nil {
		return nil, fmt.Errorf("persist match result: %w", err)
	}

	log.Printf("[MATCH] result %s: %d candidates above threshold", result.ID, len(matches))
	return result, nil
}

// ComparePrices gathers the product's current price on every requested
// platform and summarizes. Platforms that error or do not list the product
// appear in the comparison with a nil price and are excluded from the
// statistics. With no prices at all the statistics are zero-valued.
func (s *MatchingService) ComparePrices(ctx context.Context, productID string, platforms []domain.Platform) (*domain.PriceComparison, error) {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}

	prices := make(map[domain.Platform]domain.PriceInfo, len(platforms))
	for _, platform := range platforms {
		adapter, ok := s.adapters.Lookup(platform)
		if !ok {
			log.Printf("[PRICE] Warning: skipping unknown or unconfigured platform %q", platform)
			continue
		}

		info, err := adapter.GetProductPrice(ctx, productID)
		if err != nil {
			log.Printf("[PRICE] Warning: price lookup on %s failed: %v", platform, err)
			prices[platform] = domain.PriceInfo{}
			continue
		}
		if info == nil {
			prices[platform] = domain.PriceInfo{}
			continue
		}
		prices[platform] = *info

		if err := s.repo.TrackPrice(ctx, productID, platform, *info); err != nil {
			log.Printf("[PRICE] Warning: failed to track price on %s: %v", platform, err)
		}
	}

	stats := summarizePrices(prices)
	if len(stats.BestDeals) == 0 {
		log.Printf("[PRICE] Warning: no platform reported a price for %s", productID)
	}

	return &domain.PriceComparison{
		Product:     product,
		Prices:      prices,
		Stats:       stats,
		LastUpdated: time.Now().UTC(),
	}, nil
}

// summarizePrices computes min/max/avg over the priced platforms. BestDeals
// lists every platform at the minimum, in the declared platform order.
func summarizePrices(prices map[domain.Platform]domain.PriceInfo) domain.PriceStats {
	var (
		values []float64
		sum    float64
	)
	for _, info := range prices {
		if info.Price == nil {
			continue
		}
		values = append(values, *info.Price)
		sum += *info.Price
	}

	stats := domain.PriceStats{BestDeals: []domain.Platform{}}
	if len(values) == 0 {
		return stats
	}

	stats.MinPrice, stats.MaxPrice = values[0], values[0]
	for _, v := range values[1:] {
		if v < stats.MinPrice {
			stats.MinPrice = v
		}
		if v > stats.MaxPrice {
			stats.MaxPrice = v
		}
	}
	stats.AvgPrice = sum / float64(len(values))
	stats.PriceRange = stats.MaxPrice - stats.MinPrice

	for _, p := range domain.SupportedPlatforms {
		info, ok := prices[p]
		if ok && info.Price != nil && *info.Price == stats.MinPrice {
			stats.BestDeals = append(stats.BestDeals, p)
		}
	}
	return stats
}

// GetMatchHistory returns the user's most recent match results, newest first.
func (s *MatchingService) GetMatchHistory(ctx context.Context, userID string, limit int) ([]*domain.MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := s.repo.GetMatchHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load match history: %w", err)
	}
	return results, nil
}

// GetPriceHistory returns tracked price points for a product on one
// platform since the given time.
func (s *MatchingService) GetPriceHistory(ctx context.Context, productID string, platform domain.Platform, since time.Time) ([]domain.PricePoint, error) {
	points, err := s.repo.GetPriceHistory(ctx, productID, platform, since)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	return points, nil
}

// GetMatchResult returns a recently computed match from the cache.
// Results older than the cache TTL are only available through history.
func (s *MatchingService) GetMatchResult(ctx context.Context, id string) (*domain.MatchResult, error) {
	if s.cache == nil {
		return nil, domain.ErrProductNotFound
	}
	cached, err := s.cache.Get(ctx, matchCacheKey(id))
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	// The cache hands back JSON-normalized values; round-trip into the
	// concrete type.
	raw, err := json.Marshal(cached)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}
	var result domain.MatchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, domain.ErrProductNotFound
	}
	return &result, nil
}

func matchCacheKey(id string) string {
	return "match:" + id
}
