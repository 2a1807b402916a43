package model

// Signal is the final trade recommendation.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// IndicatorVerdict records how a single indicator voted.
type IndicatorVerdict struct {
	Name       string // role label, e.g. "Primary Trend (Supertrend)"
	Value      string // rendered reading, or "N/A" on error
	Assessment string // e.g. "Strong BUY (Oversold)", "Neutral", "Error"
}

// SignalAssessment is the output of the confluence scorer.
type SignalAssessment struct {
	Symbol       string
	Interval     string
	LivePrice    float64
	Details      []IndicatorVerdict
	BullishScore int
	BearishScore int
	Signal       Signal
	Confidence   int // 0-100
	Reason       string
	ErrorCount   int // indicators that failed to fetch or parse
}
