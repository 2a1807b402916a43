package signal

import (
	"fmt"
	"strings"

	"SignalSentry/internal/format"
	"SignalSentry/internal/model"
)

// FormatReport renders the assessment as the multi-line text report sent to
// chat and returned to the LLM as tool output.
func FormatReport(a *model.SignalAssessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Signal Report for %s (%s)**\n", a.Symbol, a.Interval)
	b.WriteString("-----------------------------------------\n")
	fmt.Fprintf(&b, "**Final Signal:** %s\n", a.Signal)
	fmt.Fprintf(&b, "**Confidence:** %d%%\n", a.Confidence)
	fmt.Fprintf(&b, "**Live Price:** $%s\n", format.Number(a.LivePrice))
	fmt.Fprintf(&b, "**Reasoning:** %s\n\n", a.Reason)

	b.WriteString("**Indicator Scores (Confluence):**\n")
	fmt.Fprintf(&b, "Bullish Score: %d / Bearish Score: %d\n\n", a.BullishScore, a.BearishScore)

	b.WriteString("**Detailed Breakdown:**\n")
	for _, d := range a.Details {
		fmt.Fprintf(&b, "- %s (%s): %s\n", d.Name, lean(d.Assessment), d.Assessment)
	}
	return strings.TrimRight(b.String(), "\n")
}

func lean(assessment string) string {
	switch {
	case strings.Contains(assessment, "Bullish"):
		return "Bullish"
	case strings.Contains(assessment, "Bearish"):
		return "Bearish"
	default:
		return "Neutral"
	}
}
