package pattern

import (
	"strings"
	"testing"
	"time"

	"SignalSentry/internal/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func bar(d int, open, high, low, close float64) model.Candle {
	return model.Candle{Time: day(d), Open: open, High: high, Low: low, Close: close}
}

// neutral is a plain up bar with full-range body that matches nothing.
func neutral(d int) model.Candle {
	return bar(d, 100, 110, 100, 110)
}

func TestScan_TooFewCandles(t *testing.T) {
	if _, err := Scan([]model.Candle{neutral(1)}); err == nil {
		t.Fatal("expected an error for a single candle")
	}
}

func TestScan_Doji(t *testing.T) {
	candles := []model.Candle{
		neutral(1),
		bar(2, 100, 105, 95, 100.5), // body 0.5 on a 10-point range
	}
	matches, err := Scan(candles)
	if err != nil {
		t.Fatal(err)
	}
	if !hasMatch(matches, "Doji") {
		t.Errorf("expected a Doji, got %v", matches)
	}
}

func TestScan_Hammer(t *testing.T) {
	candles := []model.Candle{
		neutral(1),
		bar(2, 100, 101, 90, 101), // lower shadow 10, body 1, no upper shadow
	}
	matches, err := Scan(candles)
	if err != nil {
		t.Fatal(err)
	}
	if !hasMatch(matches, "Hammer") {
		t.Errorf("expected a Hammer, got %v", matches)
	}
	if hasMatch(matches, "Shooting Star") {
		t.Errorf("a hammer bar must not also read as a shooting star: %v", matches)
	}
}

func TestScan_ShootingStar(t *testing.T) {
	candles := []model.Candle{
		neutral(1),
		bar(2, 100, 110, 99, 99.5), // upper shadow ~10, body 0.5
	}
	matches, err := Scan(candles)
	if err != nil {
		t.Fatal(err)
	}
	if !hasMatch(matches, "Shooting Star") {
		t.Errorf("expected a Shooting Star, got %v", matches)
	}
}

func TestScan_Engulfing(t *testing.T) {
	bullish := []model.Candle{
		bar(1, 105, 106, 99, 100),  // down bar
		bar(2, 99, 108, 98, 107),   // up bar engulfing it
	}
	matches, err := Scan(bullish)
	if err != nil {
		t.Fatal(err)
	}
	if !hasMatch(matches, "Bullish Engulfing") {
		t.Errorf("expected a Bullish Engulfing, got %v", matches)
	}

	bearish := []model.Candle{
		bar(1, 100, 106, 99, 105),  // up bar
		bar(2, 106, 107, 98, 99),   // down bar engulfing it
	}
	matches, err = Scan(bearish)
	if err != nil {
		t.Fatal(err)
	}
	if !hasMatch(matches, "Bearish Engulfing") {
		t.Errorf("expected a Bearish Engulfing, got %v", matches)
	}
}

func TestScan_OnlyRecentBarsConsidered(t *testing.T) {
	candles := []model.Candle{
		neutral(1),
		bar(2, 100, 105, 95, 100.5), // Doji, but outside the lookback window
	}
	for d := 3; d <= 8; d++ {
		candles = append(candles, neutral(d))
	}
	matches, err := Scan(candles)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("old bars must not be scanned, got %v", matches)
	}
}

func TestFormatReport(t *testing.T) {
	empty := FormatReport("BTC/USD", "1day", nil)
	if !strings.Contains(empty, "No notable candlestick patterns") {
		t.Errorf("unexpected empty report: %q", empty)
	}

	report := FormatReport("BTC/USD", "1day", []Match{
		{Name: "Hammer", Bias: "Bullish", Date: "2025-01-02"},
	})
	if !strings.Contains(report, "- Hammer (Bullish) on 2025-01-02") {
		t.Errorf("unexpected report: %q", report)
	}
}

func hasMatch(matches []Match, name string) bool {
	for _, m := range matches {
		if m.Name == name {
			return true
		}
	}
	return false
}
