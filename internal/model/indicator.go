package model

// IndicatorKind identifies a supported technical indicator.
type IndicatorKind string

const (
	IndicatorRSI         IndicatorKind = "RSI"
	IndicatorMACD        IndicatorKind = "MACD"
	IndicatorBBands      IndicatorKind = "BBANDS"
	IndicatorStochRSI    IndicatorKind = "STOCHRSI"
	IndicatorSMA         IndicatorKind = "SMA"
	IndicatorEMA         IndicatorKind = "EMA"
	IndicatorVWAP        IndicatorKind = "VWAP"
	IndicatorSupertrend  IndicatorKind = "SUPERTREND"
	IndicatorSAR         IndicatorKind = "SAR"
	IndicatorPivotPoints IndicatorKind = "PIVOT_POINTS"
	IndicatorUltOsc      IndicatorKind = "ULTOSC"
)

// IndicatorReading holds the latest values for one indicator, with field
// names normalized to canonical keys regardless of what the provider calls
// them (e.g. "stochrsi_signal" and "StochRSI_D" both land on "d").
type IndicatorReading struct {
	Kind   IndicatorKind
	Period int
	Fields map[string]float64
}

// Field returns a named value and whether the provider supplied it.
func (r *IndicatorReading) Field(name string) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}
