package usecase

import (
	"regexp"
	"strings"
)

// Compiled regex patterns for query normalization
var (
	// Matches size/quantity patterns like "12 oz", "1.5 liter", "55 inch", "256 gb"
	sizeQuantityPattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(fl\s*)?oz\b|\b\d+\.?\d*\s*ounces?\b|\b\d+\.?\d*\s*lbs?\b|\b\d+\.?\d*\s*ml\b|\b\d+\.?\d*\s*liters?\b|\b\d+\.?\d*\s*(inch(es)?|in|")\b|\b\d+\.?\d*\s*(cm|mm)\b|\b\d+\.?\d*\s*[gt]b\b|\b\d+\.?\d*\s*kg\b|\b\d+\.?\d*\s*grams?\b`)

	// Matches pack/count patterns like "2 pack", "pack of 6", "6-pack", "24 count"
	packCountPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(pack|pk|count|ct)(\s+\w+)?\b|\bpack\s*of\s*\d+\b|\b\d+\s*pieces?\b|\b\d+\s*sets?\b`)

	// Matches standalone numbers at field boundaries (e.g., ", 128", "- 12")
	standaloneNumberPattern = regexp.MustCompile(`[,\-]\s*\d+\.?\d*\s*$|^\d+\.?\d*\s*[,\-]`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryNoiseWords are listing decorations that hurt cross-platform search:
// marketing filler, urgency phrases and generic descriptors sellers pad
// titles with.
var queryNoiseWords = map[string]bool{
	// Marketing terms
	"new":        true,
	"improved":   true,
	"premium":    true,
	"deluxe":     true,
	"quality":    true,
	"best":       true,
	"great":      true,
	"amazing":    true,
	"authentic":  true,
	"genuine":    true,
	"official":   true,
	"original":   true,
	"exclusive":  true,
	"limited":    true,
	"bestseller": true,

	// Deal and shipping noise
	"sale":      true,
	"deal":      true,
	"hot":       true,
	"free":      true,
	"shipping":  true,
	"fast":      true,
	"guarantee": true,
	"warranty":  true,

	// Generic descriptors
	"item":    true,
	"product": true,
	"bundle":  true,
	"lot":     true,
	"set":     true,
	"value":   true,
	"edition": true,
}

// NormalizeQuery cleans a product title for cross-platform search: size and
// pack-count fragments go, listing noise words go, the brand is prepended
// when the title does not already carry it. Long titles are cut at a word
// boundary because several platform search APIs truncate silently.
func NormalizeQuery(productName, brand string) string {
	if productName == "" {
		return ""
	}

	cleaned := sizeQuantityPattern.ReplaceAllString(productName, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = standaloneNumberPattern.ReplaceAllString(cleaned, " ")
	cleaned = removeNoiseWords(cleaned)
	cleaned = cleanOrphanedPunctuation(cleaned)
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if brand != "" {
		if !strings.Contains(strings.ToLower(cleaned), strings.ToLower(brand)) {
			cleaned = brand + " " + cleaned
		}
	}

	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > 50 {
			cleaned = cleaned[:lastSpace]
		}
	}

	return cleaned
}

// removeNoiseWords drops listing noise while preserving the original casing
// and punctuation of the kept words.
func removeNoiseWords(s string) string {
	words := strings.Fields(s)
	var kept []string

	for _, word := range words {
		cleanWord := strings.ToLower(strings.Trim(word, ",.!?;:-'\""))
		if !queryNoiseWords[cleanWord] {
			kept = append(kept, word)
		}
	}

	return strings.Join(kept, " ")
}

var (
	lonePunctPattern     = regexp.MustCompile(`\s+[,\-;:|]+\s+`)
	trailingPunctPattern = regexp.MustCompile(`[,\-;:|]+\s*$`)
	leadingPunctPattern  = regexp.MustCompile(`^\s*[,\-;:|]+`)
)

// cleanOrphanedPunctuation removes punctuation left dangling after the
// surrounding words were stripped.
func cleanOrphanedPunctuation(s string) string {
	// Adjacent orphan groups share a boundary space, so sweep until stable.
	result := s
	for {
		next := lonePunctPattern.ReplaceAllString(result, " ")
		if next == result {
			break
		}
		result = next
	}
	result = trailingPunctPattern.ReplaceAllString(result, "")
	result = leadingPunctPattern.ReplaceAllString(result, "")
	return result
}
