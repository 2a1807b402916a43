package relay

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"SignalSentry/internal/llm"
	"SignalSentry/internal/market"
	"SignalSentry/internal/model"
)

// scriptedModel returns canned replies in order; errors are interleaved by
// leaving the reply nil.
type scriptedModel struct {
	replies []*llm.Reply
	errs    []error
	calls   int
	seen    [][]llm.Content
}

func (m *scriptedModel) GenerateContent(_ context.Context, history []llm.Content) (*llm.Reply, error) {
	m.seen = append(m.seen, history)
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.replies[i], nil
}

type textFetcher struct {
	text string
	err  error
	last market.Request
}

func (f *textFetcher) Fetch(_ context.Context, req market.Request) (*market.Payload, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &market.Payload{Text: f.text, Candles: []model.Candle{}}, nil
}

type fixedScorer struct {
	assessment *model.SignalAssessment
}

func (s *fixedScorer) Score(_ context.Context, symbol, interval string) *model.SignalAssessment {
	a := *s.assessment
	a.Symbol, a.Interval = symbol, interval
	return &a
}

func newTestRelay(m ModelClient, f *textFetcher) *Relay {
	return New(m, f, &fixedScorer{assessment: &model.SignalAssessment{
		Signal: model.SignalHold, Confidence: 50, Reason: "Mixed signals.",
	}})
}

func TestHandleMessage_DirectTextReply(t *testing.T) {
	m := &scriptedModel{replies: []*llm.Reply{{Text: "Bitcoin is a cryptocurrency."}}}
	r := newTestRelay(m, &textFetcher{})

	chunks := r.HandleMessage(context.Background(), "u1", "what is bitcoin?")
	if len(chunks) != 1 || chunks[0] != "Bitcoin is a cryptocurrency." {
		t.Fatalf("unexpected reply: %v", chunks)
	}
	if m.calls != 1 {
		t.Errorf("expected a single model call, got %d", m.calls)
	}
}

func TestHandleMessage_ToolRoundTrip(t *testing.T) {
	m := &scriptedModel{replies: []*llm.Reply{
		{FunctionCall: &llm.FunctionCall{
			Name: llm.ToolGetMarketData,
			Args: map[string]any{"data_type": "live", "symbol": "BTC/USD"},
		}},
		{Text: "BTC is trading at $65,000."},
	}}
	f := &textFetcher{text: "The current price of BTC USD is $65,000.00."}
	r := newTestRelay(m, f)

	chunks := r.HandleMessage(context.Background(), "u1", "btc price?")
	if chunks[0] != "BTC is trading at $65,000." {
		t.Fatalf("unexpected final reply: %v", chunks)
	}
	if m.calls != 2 {
		t.Fatalf("expected two model calls, got %d", m.calls)
	}
	if f.last.Symbol != "BTC/USD" || f.last.DataType != market.DataLive {
		t.Errorf("tool args not mapped onto the request: %+v", f.last)
	}

	// The second model call must carry the function response turn.
	second := m.seen[1]
	last := second[len(second)-1]
	if last.Role != "function" || last.Parts[0].FunctionResponse == nil {
		t.Errorf("expected a function turn before the second call, got role %q", last.Role)
	}
}

func TestHandleMessage_SignalTool(t *testing.T) {
	m := &scriptedModel{replies: []*llm.Reply{
		{FunctionCall: &llm.FunctionCall{
			Name: llm.ToolGenerateTradingSignal,
			Args: map[string]any{"symbol": "ETH/USD", "interval": "1h"},
		}},
		{Text: "The signal is HOLD."},
	}}
	r := newTestRelay(m, &textFetcher{})

	chunks := r.HandleMessage(context.Background(), "u1", "signal for eth?")
	if chunks[0] != "The signal is HOLD." {
		t.Fatalf("unexpected reply: %v", chunks)
	}

	// The tool output fed back to the model is the rendered report.
	second := m.seen[1]
	resp := second[len(second)-1].Parts[0].FunctionResponse
	text, _ := resp.Response["text"].(string)
	if !strings.Contains(text, "Signal Report for ETH/USD (1h)") {
		t.Errorf("signal report not passed to the model: %q", text)
	}
}

func TestHandleMessage_UnknownTool(t *testing.T) {
	m := &scriptedModel{replies: []*llm.Reply{
		{FunctionCall: &llm.FunctionCall{Name: "mystery_tool", Args: map[string]any{}}},
	}}
	r := newTestRelay(m, &textFetcher{})

	chunks := r.HandleMessage(context.Background(), "u1", "do the thing")
	if !strings.Contains(chunks[0], "unknown function: mystery_tool") {
		t.Fatalf("expected unknown-function reply, got %v", chunks)
	}
	if m.calls != 1 {
		t.Errorf("unknown tool must not trigger a second model call, got %d calls", m.calls)
	}
}

func TestHandleMessage_FirstTurnFailure(t *testing.T) {
	m := &scriptedModel{errs: []error{fmt.Errorf("dial tcp: timeout")}, replies: []*llm.Reply{nil}}
	r := newTestRelay(m, &textFetcher{})

	chunks := r.HandleMessage(context.Background(), "u1", "hello")
	if !strings.Contains(chunks[0], "trouble connecting to my AI brain") {
		t.Fatalf("expected connection apology, got %v", chunks)
	}
}

func TestHandleMessage_SecondTurnFailure(t *testing.T) {
	m := &scriptedModel{
		replies: []*llm.Reply{
			{FunctionCall: &llm.FunctionCall{
				Name: llm.ToolGetMarketData,
				Args: map[string]any{"data_type": "live", "symbol": "BTC/USD"},
			}},
			nil,
		},
		errs: []error{nil, fmt.Errorf("dial tcp: timeout")},
	}
	r := newTestRelay(m, &textFetcher{text: "price text"})

	chunks := r.HandleMessage(context.Background(), "u1", "btc price?")
	if !strings.Contains(chunks[0], "I received the data") {
		t.Fatalf("expected second-turn apology, got %v", chunks)
	}
}

func TestHandleMessage_BlockedPrompt(t *testing.T) {
	m := &scriptedModel{replies: []*llm.Reply{{BlockReason: "SAFETY"}}}
	r := newTestRelay(m, &textFetcher{})

	chunks := r.HandleMessage(context.Background(), "u1", "something odd")
	if !strings.Contains(chunks[0], "Block reason: SAFETY") {
		t.Fatalf("expected block-reason reply, got %v", chunks)
	}
}

func TestHandleMessage_ToolErrorSerialized(t *testing.T) {
	m := &scriptedModel{replies: []*llm.Reply{
		{FunctionCall: &llm.FunctionCall{
			Name: llm.ToolGetMarketData,
			Args: map[string]any{"data_type": "live"},
		}},
		{Text: "Sorry, I couldn't fetch that."},
	}}
	f := &textFetcher{err: &market.ValidationError{Msg: "Missing 'symbol' parameter for live price."}}
	r := newTestRelay(m, f)

	r.HandleMessage(context.Background(), "u1", "price?")

	second := m.seen[1]
	resp := second[len(second)-1].Parts[0].FunctionResponse
	text, _ := resp.Response["text"].(string)
	if !strings.Contains(text, "Error during tool execution") {
		t.Errorf("tool error not surfaced to the model: %q", text)
	}
}

func TestInferPeriod(t *testing.T) {
	tests := []struct {
		kind model.IndicatorKind
		text string
		want string
	}{
		{model.IndicatorMACD, "macd for btc", "0"},
		{model.IndicatorSMA, "show me the 200 day ma for AAPL", "200"},
		{model.IndicatorSMA, "50 sma on the daily", "50"},
		{model.IndicatorRSI, "rsi please", "14"},
		{model.IndicatorEMA, "ema for eth", "14"},
	}
	for _, tt := range tests {
		if got := inferPeriod(tt.kind, tt.text); got != tt.want {
			t.Errorf("inferPeriod(%s, %q) = %q, want %q", tt.kind, tt.text, got, tt.want)
		}
	}
}
