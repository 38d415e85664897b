package usecase

import (
	"strings"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Attribute weights for the relevance score. Missing attribute pairs simply
// contribute nothing; the score is not renormalized over available weight,
// so sparse metadata scores lower.
const (
	weightName        = 0.40
	weightBrand       = 0.20
	weightCategory    = 0.15
	weightPrice       = 0.15
	weightDescription = 0.10
)

// TextSimilarity returns the Jaccard coefficient of the lowercase
// whitespace-token sets of a and b. Returns 0 if either set is empty.
func TextSimilarity(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	union := len(wordsB)
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// RelevanceScore computes the weighted multi-attribute similarity between a
// source product and a candidate. The result is clamped to [0.0, 1.0].
func RelevanceScore(source, candidate *domain.ProductRecord) float64 {
	score := 0.0

	// Name similarity (40% weight)
	score += TextSimilarity(source.Name, candidate.Name) * weightName

	// Brand similarity (20% weight), only when both sides carry a brand
	if source.Brand != "" && candidate.Brand != "" {
		score += TextSimilarity(source.Brand, candidate.Brand) * weightBrand
	}

	// Category similarity (15% weight)
	if source.Category != "" && candidate.Category != "" {
		score += TextSimilarity(source.Category, candidate.Category) * weightCategory
	}

	// Price similarity (15% weight): 1 at equal prices, falling linearly
	// with the relative difference against the source price
	if source.Price != nil && candidate.Price != nil && *source.Price != 0 {
		diff := *source.Price - *candidate.Price
		if diff < 0 {
			diff = -diff
		}
		priceSim := 1 - diff / *source.Price
		if priceSim < 0 {
			priceSim = 0
		}
		score += priceSim * weightPrice
	}

	// Description similarity (10% weight)
	if source.Description != "" && candidate.Description != "" {
		score += TextSimilarity(source.Description, candidate.Description) * weightDescription
	}

	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}

// tokenSet splits a string on whitespace into a set of lowercase words.
func tokenSet(s string) map[string]bool {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
