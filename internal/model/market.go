package model

import "time"

// Quote is a live price snapshot for one symbol.
type Quote struct {
	Symbol string
	Price  float64
}

// Candle represents a single OHLCV bar. Candle sequences are always
// oldest-first once they leave the market gateway.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// NewsArticle is one headline from the news provider.
type NewsArticle struct {
	Title       string
	Source      string
	PublishedAt string
	URL         string
}
