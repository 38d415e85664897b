package usecase

import (
	"math"
	"testing"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical strings", "red running shoe", "red running shoe", 1.0},
		{"no overlap", "red shoe", "blue hat", 0.0},
		{"partial overlap", "red shoe", "red boot", 1.0 / 3.0},
		{"empty left", "", "red shoe", 0.0},
		{"empty right", "red shoe", "", 0.0},
		{"both empty", "", "", 0.0},
		{"whitespace only", "   ", "red shoe", 0.0},
		{"case insensitive", "Red Shoe", "red shoe", 1.0},
		{"duplicate words collapse", "shoe shoe shoe", "shoe", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("TextSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	t.Run("symmetry", func(t *testing.T) {
		pairs := [][2]string{
			{"red running shoe", "blue running shoe"},
			{"acme widget", "widget deluxe"},
			{"", "anything"},
		}
		for _, p := range pairs {
			if TextSimilarity(p[0], p[1]) != TextSimilarity(p[1], p[0]) {
				t.Errorf("TextSimilarity not symmetric for %q / %q", p[0], p[1])
			}
		}
	})
}

func TestRelevanceScore(t *testing.T) {
	t.Run("identical name brand price scores 0.75", func(t *testing.T) {
		source := &domain.ProductRecord{Name: "Red Shoe", Brand: "Acme", Price: floatPtr(50)}
		candidate := &domain.ProductRecord{Name: "Red Shoe", Brand: "Acme", Price: floatPtr(50)}

		got := RelevanceScore(source, candidate)
		if !almostEqual(got, 0.75) {
			t.Errorf("RelevanceScore = %v, want 0.75", got)
		}
	})

	t.Run("fully identical product scores 1.0", func(t *testing.T) {
		p := &domain.ProductRecord{
			Name:        "Red Shoe",
			Brand:       "Acme",
			Category:    "footwear",
			Description: "a red shoe",
			Price:       floatPtr(50),
		}
		if got := RelevanceScore(p, p); !almostEqual(got, 1.0) {
			t.Errorf("RelevanceScore = %v, want 1.0", got)
		}
	})

	t.Run("no shared attributes scores 0.0", func(t *testing.T) {
		source := &domain.ProductRecord{Name: "Red Shoe"}
		candidate := &domain.ProductRecord{Name: "Blue Hat"}
		if got := RelevanceScore(source, candidate); got != 0.0 {
			t.Errorf("RelevanceScore = %v, want 0.0", got)
		}
	})

	t.Run("missing attributes are not renormalized", func(t *testing.T) {
		// Candidate without brand must score strictly lower than one with
		// a matching brand, never equally high
		source := &domain.ProductRecord{Name: "Red Shoe", Brand: "Acme"}
		withBrand := &domain.ProductRecord{Name: "Red Shoe", Brand: "Acme"}
		withoutBrand := &domain.ProductRecord{Name: "Red Shoe"}

		if RelevanceScore(source, withoutBrand) >= RelevanceScore(source, withBrand) {
			t.Error("sparse candidate scored at least as high as full candidate")
		}
		if got := RelevanceScore(source, withoutBrand); !almostEqual(got, 0.40) {
			t.Errorf("name-only score = %v, want 0.40", got)
		}
	})

	t.Run("price similarity falls with relative difference", func(t *testing.T) {
		source := &domain.ProductRecord{Name: "x", Price: floatPtr(100)}
		near := &domain.ProductRecord{Name: "x", Price: floatPtr(90)}
		far := &domain.ProductRecord{Name: "x", Price: floatPtr(10)}

		nearScore := RelevanceScore(source, near)
		farScore := RelevanceScore(source, far)
		if nearScore <= farScore {
			t.Errorf("near price score %v not greater than far price score %v", nearScore, farScore)
		}
		// name 0.40 + price 0.15*0.9
		if !almostEqual(nearScore, 0.40+0.15*0.9) {
			t.Errorf("nearScore = %v, want %v", nearScore, 0.40+0.15*0.9)
		}
	})

	t.Run("huge price difference clamps price term at zero", func(t *testing.T) {
		source := &domain.ProductRecord{Name: "x", Price: floatPtr(10)}
		candidate := &domain.ProductRecord{Name: "x", Price: floatPtr(1000)}
		if got := RelevanceScore(source, candidate); !almostEqual(got, 0.40) {
			t.Errorf("score = %v, want 0.40 (price term clamped)", got)
		}
	})

	t.Run("zero source price skips price term", func(t *testing.T) {
		source := &domain.ProductRecord{Name: "x", Price: floatPtr(0)}
		candidate := &domain.ProductRecord{Name: "x", Price: floatPtr(50)}
		if got := RelevanceScore(source, candidate); !almostEqual(got, 0.40) {
			t.Errorf("score = %v, want 0.40", got)
		}
	})

	t.Run("score always within bounds", func(t *testing.T) {
		records := []*domain.ProductRecord{
			{},
			{Name: "a b c d e"},
			{Name: "a", Brand: "b", Category: "c", Description: "d", Price: floatPtr(1)},
			{Name: "a", Price: floatPtr(-5)},
		}
		for _, s := range records {
			for _, c := range records {
				got := RelevanceScore(s, c)
				if got < 0.0 || got > 1.0 {
					t.Errorf("RelevanceScore(%+v, %+v) = %v out of [0,1]", s, c, got)
				}
			}
		}
	})
}
