package patterns

import (
	"testing"

	"trademind/internal/types"
)

func contains(patterns []string, want string) bool {
	for _, p := range patterns {
		if p == want {
			return true
		}
	}
	return false
}

func TestClassifyGravestoneDoji(t *testing.T) {
	// Tiny body at the bottom of the range, long upper shadow.
	c := types.Candle{O: 10, H: 11, L: 10, C: 10.01}
	got := Classify(c, nil)

	if !contains(got, "doji") {
		t.Errorf("Expected doji in %v", got)
	}
	if !contains(got, "gravestone_doji") {
		t.Errorf("Expected gravestone_doji in %v", got)
	}
}

func TestClassifyDragonflyDoji(t *testing.T) {
	// Tiny body at the top of the range, long lower shadow.
	c := types.Candle{O: 11, H: 11, L: 10, C: 10.99}
	got := Classify(c, nil)

	if !contains(got, "dragonfly_doji") {
		t.Errorf("Expected dragonfly_doji in %v", got)
	}
}

func TestClassifyPlainDoji(t *testing.T) {
	// Small body with balanced shadows qualifies as doji but neither variant.
	c := types.Candle{O: 10.5, H: 11, L: 10, C: 10.52}
	got := Classify(c, nil)

	if !contains(got, "doji") {
		t.Errorf("Expected doji in %v", got)
	}
	if contains(got, "gravestone_doji") || contains(got, "dragonfly_doji") {
		t.Errorf("Expected no doji variant in %v", got)
	}
}

func TestClassifyBullishEngulfing(t *testing.T) {
	prev := types.Candle{O: 10.5, H: 10.6, L: 9.9, C: 10}
	latest := types.Candle{O: 9.9, H: 10.9, L: 9.8, C: 10.8}

	got := Classify(latest, &prev)
	if !contains(got, "bullish_engulfing") {
		t.Errorf("Expected bullish_engulfing in %v", got)
	}
}

func TestClassifyBearishEngulfing(t *testing.T) {
	prev := types.Candle{O: 10, H: 10.6, L: 9.9, C: 10.5}
	latest := types.Candle{O: 10.6, H: 10.7, L: 9.6, C: 9.7}

	got := Classify(latest, &prev)
	if !contains(got, "bearish_engulfing") {
		t.Errorf("Expected bearish_engulfing in %v", got)
	}
}

func TestClassifyNoEngulfingForSmallerBody(t *testing.T) {
	prev := types.Candle{O: 10, H: 11, L: 9.4, C: 10.9}
	// Green over red but the body is no bigger than the previous one.
	latest := types.Candle{O: 9.9, H: 10.8, L: 9.5, C: 10.6}

	got := Classify(latest, &prev)
	if contains(got, "bullish_engulfing") {
		t.Errorf("Expected no engulfing for a smaller body, got %v", got)
	}
}

func TestClassifyDirectionalFallback(t *testing.T) {
	bullish := types.Candle{O: 10, H: 10.9, L: 9.9, C: 10.8}
	if got := Classify(bullish, nil); !contains(got, "bullish") {
		t.Errorf("Expected bullish fallback, got %v", got)
	}

	bearish := types.Candle{O: 10.8, H: 10.9, L: 9.9, C: 10}
	if got := Classify(bearish, nil); !contains(got, "bearish") {
		t.Errorf("Expected bearish fallback, got %v", got)
	}
}
