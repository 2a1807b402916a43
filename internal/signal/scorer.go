// Package signal implements the confluence scorer: a fixed basket of
// indicator readings votes bullish or bearish with per-indicator weights,
// and the weighted tally maps to a BUY/SELL/HOLD recommendation.
package signal

import (
	"context"
	"fmt"
	"log"
	"math"

	"SignalSentry/internal/format"
	"SignalSentry/internal/market"
	"SignalSentry/internal/model"
)

// Fetcher is the slice of the market gateway the scorer needs.
type Fetcher interface {
	Fetch(ctx context.Context, req market.Request) (*market.Payload, error)
}

// basketEntry fixes one indicator's request parameters, importance weight,
// role label, and vote rule.
type basketEntry struct {
	kind       model.IndicatorKind
	period     string
	multiplier string
	weight     int
	role       string
	vote       func(r *model.IndicatorReading, livePrice float64, weight int) (verdict, error)
}

type verdict struct {
	assessment string
	bullish    int
	bearish    int
}

// The basket mixes trend (SMA, Supertrend), momentum (RSI), and
// trend/momentum (MACD) signals so no single indicator dominates.
var basket = []basketEntry{
	{kind: model.IndicatorRSI, period: "14", weight: 2, role: "Momentum (RSI)", vote: voteRSI},
	{kind: model.IndicatorMACD, period: "0", weight: 3, role: "Trend/Momentum (MACD)", vote: voteMACD},
	{kind: model.IndicatorSMA, period: "50", weight: 1, role: "Major Trend (SMA-50)", vote: voteSMA},
	{kind: model.IndicatorSupertrend, period: "10", multiplier: "3", weight: 4, role: "Primary Trend (Supertrend)", vote: voteSupertrend},
}

// Decision boundaries of the bullish-percentage mapping, inclusive.
const (
	buyThreshold  = 70.0
	sellThreshold = 30.0
)

// Scorer produces SignalAssessments from live market data.
type Scorer struct {
	fetcher Fetcher
}

func NewScorer(f Fetcher) *Scorer {
	return &Scorer{fetcher: f}
}

// Score runs the confluence analysis for one symbol and interval. It is
// fail-soft: a live-price failure yields a neutral assessment carrying the
// reason, and individual indicator failures are recorded without aborting.
func (s *Scorer) Score(ctx context.Context, symbol, interval string) *model.SignalAssessment {
	if interval == "" {
		interval = "1day"
	}
	a := &model.SignalAssessment{
		Symbol:     symbol,
		Interval:   interval,
		Signal:     model.SignalHold,
		Confidence: 50,
	}

	live, err := s.fetcher.Fetch(ctx, market.Request{DataType: market.DataLive, Symbol: symbol})
	if err != nil {
		a.Reason = fmt.Sprintf("Failed to fetch live price: %v", err)
		log.Printf("[WARN] signal %s: %s", symbol, a.Reason)
		return a
	}
	a.LivePrice = live.Quote.Price

	for _, entry := range basket {
		v, value, err := s.voteOne(ctx, entry, symbol, interval, a.LivePrice)
		if err != nil {
			log.Printf("[WARN] signal %s: %s failed: %v", symbol, entry.kind, err)
			a.ErrorCount++
			a.Details = append(a.Details, model.IndicatorVerdict{
				Name: entry.role, Value: "N/A", Assessment: "Error",
			})
			continue
		}
		a.BullishScore += v.bullish
		a.BearishScore += v.bearish
		a.Details = append(a.Details, model.IndicatorVerdict{
			Name: entry.role, Value: value, Assessment: v.assessment,
		})
	}

	s.conclude(a)
	return a
}

func (s *Scorer) voteOne(ctx context.Context, entry basketEntry, symbol, interval string, livePrice float64) (verdict, string, error) {
	payload, err := s.fetcher.Fetch(ctx, market.Request{
		DataType:            market.DataIndicator,
		Symbol:              symbol,
		Interval:            interval,
		Indicator:           entry.kind,
		IndicatorPeriod:     entry.period,
		IndicatorMultiplier: entry.multiplier,
	})
	if err != nil {
		return verdict{}, "", err
	}
	if payload.Reading == nil {
		return verdict{}, "", fmt.Errorf("gateway returned no %s reading", entry.kind)
	}

	v, err := entry.vote(payload.Reading, livePrice, entry.weight)
	if err != nil {
		return verdict{}, "", err
	}

	value, err := format.Format(payload.Reading)
	if err != nil {
		value = "N/A"
	}
	return v, value, nil
}

// conclude maps the weighted tally onto the final signal. With no valid
// votes at all the bullish percentage defaults to a fully neutral 50.
func (s *Scorer) conclude(a *model.SignalAssessment) {
	total := a.BullishScore + a.BearishScore
	bullishPct := 50.0
	if total > 0 {
		bullishPct = 100 * float64(a.BullishScore) / float64(total)
	}

	switch {
	case bullishPct >= buyThreshold:
		a.Signal = model.SignalBuy
		a.Confidence = int(math.Round(bullishPct))
		a.Reason = "Strong bullish confluence across multiple trend and momentum indicators (Supertrend, MACD, SMA-50)."
	case bullishPct <= sellThreshold:
		a.Signal = model.SignalSell
		a.Confidence = int(math.Round(100 - bullishPct))
		a.Reason = "Strong bearish consensus as price is below major trend indicators and momentum is negative."
	default:
		a.Signal = model.SignalHold
		a.Confidence = int(math.Round(math.Max(bullishPct, 100-bullishPct)))
		a.Reason = "Mixed signals from key indicators suggest consolidation or uncertainty. Awaiting clearer trend direction."
	}

	// Errors reduce reliability but not the numeric confidence; the note
	// makes the gap visible to the reader.
	if a.ErrorCount > 0 {
		a.Reason += fmt.Sprintf(" Note: %d indicators could not be processed due to data errors.", a.ErrorCount)
	}
}

func voteRSI(r *model.IndicatorReading, _ float64, weight int) (verdict, error) {
	v, ok := r.Field("rsi")
	if !ok {
		return verdict{}, fmt.Errorf("missing rsi field")
	}
	switch {
	case v < 30:
		return verdict{assessment: "Strong BUY (Oversold)", bullish: weight}, nil
	case v > 70:
		return verdict{assessment: "Strong SELL (Overbought)", bearish: weight}, nil
	case v > 50:
		return verdict{assessment: "Neutral", bullish: 1}, nil
	default:
		return verdict{assessment: "Neutral", bearish: 1}, nil
	}
}

func voteMACD(r *model.IndicatorReading, _ float64, weight int) (verdict, error) {
	macd, ok := r.Field("macd")
	if !ok {
		return verdict{}, fmt.Errorf("missing macd field")
	}
	sig, ok := r.Field("signal")
	if !ok {
		return verdict{}, fmt.Errorf("missing signal field")
	}
	switch {
	case macd > sig && macd < 0:
		return verdict{assessment: "Bullish Cross (Buy Signal)", bullish: weight}, nil
	case macd < sig && macd > 0:
		return verdict{assessment: "Bearish Cross (Sell Signal)", bearish: weight}, nil
	case macd > sig:
		return verdict{assessment: "Neutral", bullish: 1}, nil
	default:
		return verdict{assessment: "Neutral", bearish: 1}, nil
	}
}

func voteSMA(r *model.IndicatorReading, livePrice float64, weight int) (verdict, error) {
	v, ok := r.Field("sma")
	if !ok {
		return verdict{}, fmt.Errorf("missing sma field")
	}
	if livePrice > v {
		return verdict{assessment: "Bullish (Above SMA-50)", bullish: weight}, nil
	}
	return verdict{assessment: "Bearish (Below SMA-50)", bearish: weight}, nil
}

func voteSupertrend(r *model.IndicatorReading, livePrice float64, weight int) (verdict, error) {
	v, ok := r.Field("supertrend")
	if !ok {
		return verdict{}, fmt.Errorf("missing supertrend field")
	}
	if livePrice > v {
		return verdict{assessment: "Strong BUY (Above Supertrend)", bullish: weight}, nil
	}
	return verdict{assessment: "Strong SELL (Below Supertrend)", bearish: weight}, nil
}
