// Package pattern scans candle windows for common single- and two-bar
// candlestick formations.
package pattern

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"SignalSentry/internal/model"
)

// Match is one detected pattern occurrence.
type Match struct {
	Name string
	Bias string // "Bullish", "Bearish", or "Neutral"
	Date string
}

// lookback is how many of the most recent bars are scanned.
const lookback = 5

// Scan inspects the tail of an oldest-first candle sequence for Doji,
// Hammer, Shooting Star, and Engulfing formations.
func Scan(candles []model.Candle) ([]Match, error) {
	if len(candles) < 2 {
		return nil, errors.New("need at least 2 candles to scan for patterns")
	}

	start := len(candles) - lookback
	if start < 1 {
		start = 1
	}

	var matches []Match
	for i := start; i < len(candles); i++ {
		cur, prev := candles[i], candles[i-1]
		date := cur.Time.Format("2006-01-02")

		if isDoji(cur) {
			matches = append(matches, Match{Name: "Doji", Bias: "Neutral", Date: date})
		}
		if isHammer(cur) {
			matches = append(matches, Match{Name: "Hammer", Bias: "Bullish", Date: date})
		}
		if isShootingStar(cur) {
			matches = append(matches, Match{Name: "Shooting Star", Bias: "Bearish", Date: date})
		}
		if isBullishEngulfing(prev, cur) {
			matches = append(matches, Match{Name: "Bullish Engulfing", Bias: "Bullish", Date: date})
		}
		if isBearishEngulfing(prev, cur) {
			matches = append(matches, Match{Name: "Bearish Engulfing", Bias: "Bearish", Date: date})
		}
	}
	return matches, nil
}

// FormatReport renders scan results for one symbol as chat-ready text.
func FormatReport(symbol, interval string, matches []Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No notable candlestick patterns found for %s over the last %d %s bars.",
			symbol, lookback, interval)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Candlestick patterns for %s (%s):\n", symbol, interval)
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s (%s) on %s\n", m.Name, m.Bias, m.Date)
	}
	return strings.TrimRight(b.String(), "\n")
}

func body(c model.Candle) float64 { return math.Abs(c.Close - c.Open) }

func rng(c model.Candle) float64 { return c.High - c.Low }

func upperShadow(c model.Candle) float64 { return c.High - math.Max(c.Open, c.Close) }

func lowerShadow(c model.Candle) float64 { return math.Min(c.Open, c.Close) - c.Low }

// isDoji: the body is at most 10% of the bar's full range.
func isDoji(c model.Candle) bool {
	r := rng(c)
	return r > 0 && body(c) <= 0.1*r
}

// isHammer: long lower shadow (at least twice the body), little to no upper
// shadow.
func isHammer(c model.Candle) bool {
	b := body(c)
	return b > 0 && lowerShadow(c) >= 2*b && upperShadow(c) <= b
}

// isShootingStar: mirror image of the hammer.
func isShootingStar(c model.Candle) bool {
	b := body(c)
	return b > 0 && upperShadow(c) >= 2*b && lowerShadow(c) <= b
}

// isBullishEngulfing: a down bar followed by an up bar whose body covers it.
func isBullishEngulfing(prev, cur model.Candle) bool {
	return prev.Close < prev.Open &&
		cur.Close > cur.Open &&
		cur.Open <= prev.Close &&
		cur.Close >= prev.Open
}

func isBearishEngulfing(prev, cur model.Candle) bool {
	return prev.Close > prev.Open &&
		cur.Close < cur.Open &&
		cur.Open >= prev.Close &&
		cur.Close <= prev.Open
}
