// Package format renders normalized indicator readings as human-readable
// sentences. It is the only place numeric indicator values become text;
// everything upstream passes the structured reading around.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"SignalSentry/internal/model"
)

// fieldSpec names one expected field of an indicator and how to label it.
type fieldSpec struct {
	key   string
	label string
}

// indicatorSpec drives both the sentence template and missing-field
// detection for one indicator kind.
type indicatorSpec struct {
	description string // e.g. "Relative Strength Index"
	periodized  bool   // whether "N-period" prefixes the description
	fields      []fieldSpec
}

var specs = map[model.IndicatorKind]indicatorSpec{
	model.IndicatorRSI: {
		description: "Relative Strength Index",
		periodized:  true,
		fields:      []fieldSpec{{"rsi", ""}},
	},
	model.IndicatorMACD: {
		description: "Moving Average Convergence Divergence",
		fields: []fieldSpec{
			{"macd", "MACD Line"},
			{"signal", "Signal Line"},
			{"histogram", "Histogram"},
		},
	},
	model.IndicatorBBands: {
		description: "Bollinger Bands",
		periodized:  true,
		fields: []fieldSpec{
			{"upper", "Upper Band"},
			{"middle", "Middle Band"},
			{"lower", "Lower Band"},
		},
	},
	model.IndicatorStochRSI: {
		description: "Stochastic Relative Strength Index",
		periodized:  true,
		fields: []fieldSpec{
			{"k", "StochRSI %K"},
			{"d", "StochRSI %D"},
		},
	},
	model.IndicatorSMA: {
		description: "Simple Moving Average",
		periodized:  true,
		fields:      []fieldSpec{{"sma", ""}},
	},
	model.IndicatorEMA: {
		description: "Exponential Moving Average",
		periodized:  true,
		fields:      []fieldSpec{{"ema", ""}},
	},
	model.IndicatorVWAP: {
		description: "Volume Weighted Average Price",
		fields:      []fieldSpec{{"vwap", ""}},
	},
	model.IndicatorSupertrend: {
		description: "Supertrend",
		periodized:  true,
		fields:      []fieldSpec{{"supertrend", ""}},
	},
	model.IndicatorSAR: {
		description: "Parabolic SAR",
		fields:      []fieldSpec{{"sar", ""}},
	},
	model.IndicatorPivotPoints: {
		description: "Pivot Points",
		fields: []fieldSpec{
			{"pivot", "Pivot"},
			{"r1", "R1"},
			{"r2", "R2"},
			{"r3", "R3"},
			{"s1", "S1"},
			{"s2", "S2"},
			{"s3", "S3"},
		},
	},
	model.IndicatorUltOsc: {
		description: "Ultimate Oscillator",
		fields:      []fieldSpec{{"ultosc", ""}},
	},
}

// Number renders a value with two decimals and thousands separators.
func Number(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Format converts a reading into a templated sentence. It fails with a
// missing-field error when the provider omitted a value the indicator kind
// is expected to carry.
func Format(r *model.IndicatorReading) (string, error) {
	spec, ok := specs[r.Kind]
	if !ok {
		return "", fmt.Errorf("no formatter for indicator %q", r.Kind)
	}

	desc := spec.description
	if spec.periodized && r.Period > 0 {
		desc = fmt.Sprintf("%d-period %s", r.Period, spec.description)
	}

	// Pivot points report whichever levels the provider computed; every
	// other indicator requires its full field set.
	if r.Kind == model.IndicatorPivotPoints {
		return formatPartial(desc, spec, r)
	}

	if len(spec.fields) == 1 {
		v, ok := r.Field(spec.fields[0].key)
		if !ok {
			return "", missingField(r.Kind, spec.fields[0].key)
		}
		return fmt.Sprintf("The %s is %s.", desc, Number(v)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %s is: ", desc)
	for _, f := range spec.fields {
		v, ok := r.Field(f.key)
		if !ok {
			return "", missingField(r.Kind, f.key)
		}
		fmt.Fprintf(&b, "%s: %s. ", f.label, Number(v))
	}
	return strings.TrimSpace(b.String()), nil
}

func formatPartial(desc string, spec indicatorSpec, r *model.IndicatorReading) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s are: ", desc)
	n := 0
	for _, f := range spec.fields {
		if v, ok := r.Field(f.key); ok {
			fmt.Fprintf(&b, "%s: %s. ", f.label, Number(v))
			n++
		}
	}
	if n == 0 {
		return "", missingField(r.Kind, "pivot")
	}
	return strings.TrimSpace(b.String()), nil
}

func missingField(kind model.IndicatorKind, key string) error {
	return fmt.Errorf("incomplete %s data: provider omitted field %q", kind, key)
}
