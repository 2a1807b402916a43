// Package relay drives one chat message through the model's function-calling
// loop: first model turn, optional tool execution, second model turn, then
// chunked delivery. Every failure becomes a reply string; nothing here is
// fatal to the host process.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"SignalSentry/internal/llm"
	"SignalSentry/internal/market"
	"SignalSentry/internal/model"
	"SignalSentry/internal/pattern"
	"SignalSentry/internal/signal"
)

// ModelClient is the slice of the LLM client the relay needs.
type ModelClient interface {
	GenerateContent(ctx context.Context, history []llm.Content) (*llm.Reply, error)
}

// Scorer produces a signal assessment for one symbol.
type Scorer interface {
	Score(ctx context.Context, symbol, interval string) *model.SignalAssessment
}

// Relay wires the model, the market gateway, and the scorer together.
type Relay struct {
	model   ModelClient
	fetcher signal.Fetcher
	scorer  Scorer
	history *HistoryStore
	maxLen  int
}

func New(mc ModelClient, fetcher signal.Fetcher, scorer Scorer) *Relay {
	return &Relay{
		model:   mc,
		fetcher: fetcher,
		scorer:  scorer,
		history: NewHistoryStore(MaxConversationTurns),
		maxLen:  MaxMessageLength,
	}
}

// HandleMessage runs the full state machine for one incoming message and
// returns the reply, pre-chunked to the platform limit.
func (r *Relay) HandleMessage(ctx context.Context, userID, text string) []string {
	r.history.Append(userID, llm.TextTurn("user", text))
	chat := r.history.Recent(userID)

	reply, err := r.model.GenerateContent(ctx, chat)
	if err != nil {
		log.Printf("[ERROR] model call (first turn): %v", err)
		return Split(fmt.Sprintf("I'm having trouble connecting to my AI brain. Please check the GOOGLE_API_KEY and try again later. Error: %v", err), r.maxLen)
	}

	var final string
	switch {
	case reply.FunctionCall != nil:
		final = r.runTool(ctx, chat, reply.FunctionCall, text)
	case reply.Text != "":
		final = reply.Text
	default:
		final = fmt.Sprintf("AI could not generate a response. This might be due to content policy. Block reason: %s. Please try rephrasing.", reply.BlockReason)
	}

	r.history.Append(userID, llm.TextTurn("model", final))
	return Split(final, r.maxLen)
}

// runTool executes the requested tool and asks the model for the final
// conversational reply.
func (r *Relay) runTool(ctx context.Context, chat []llm.Content, call *llm.FunctionCall, userText string) string {
	log.Printf("[INFO] model requested tool call: %s with args: %v", call.Name, call.Args)

	var output string
	switch call.Name {
	case llm.ToolGetMarketData:
		output = r.execMarketData(ctx, call.Args, userText)
	case llm.ToolGenerateTradingSignal:
		a := r.scorer.Score(ctx, strArg(call.Args, "symbol"), strArg(call.Args, "interval"))
		output = signal.FormatReport(a)
	case llm.ToolAnalyzeCandlesticks:
		output = r.execCandlestickScan(ctx, call.Args)
	default:
		return fmt.Sprintf("AI requested an unknown function: %s.", call.Name)
	}

	chat = append(chat, llm.Content{Role: "model", Parts: []llm.Part{{FunctionCall: call}}})
	chat = append(chat, llm.Content{Role: "function", Parts: []llm.Part{{
		FunctionResponse: &llm.FunctionResponse{
			Name:     call.Name,
			Response: map[string]any{"text": output},
		},
	}}})

	reply, err := r.model.GenerateContent(ctx, chat)
	if err != nil {
		log.Printf("[ERROR] model call (second turn): %v", err)
		return fmt.Sprintf("I received the data, but I'm having trouble processing it with my AI brain. Please try again later. Error: %v", err)
	}
	if reply.Text == "" {
		if reply.BlockReason != "" {
			return fmt.Sprintf("AI could not generate a response. This might be due to content policy. Block reason: %s. Please try rephrasing.", reply.BlockReason)
		}
		return "Could not get a valid second response from the AI."
	}
	return reply.Text
}

var maPeriodPattern = regexp.MustCompile(`\b(50|200)\b`)

// execMarketData maps tool-call args onto a gateway request. Tool errors are
// serialized into the output so the model can explain them; the relay never
// aborts mid-conversation over a data error.
func (r *Relay) execMarketData(ctx context.Context, args map[string]any, userText string) string {
	req := market.Request{
		DataType:            market.DataType(strings.ToLower(strArg(args, "data_type"))),
		Symbol:              strArg(args, "symbol"),
		Interval:            strArg(args, "interval"),
		OutputSize:          strArg(args, "outputsize"),
		Indicator:           model.IndicatorKind(strings.ToUpper(strArg(args, "indicator"))),
		IndicatorPeriod:     strArg(args, "indicator_period"),
		IndicatorMultiplier: strArg(args, "indicator_multiplier"),
		NewsQuery:           strArg(args, "news_query"),
		FromDate:            strArg(args, "from_date"),
		SortBy:              strArg(args, "sort_by"),
		NewsLanguage:        strArg(args, "news_language"),
	}
	if req.Indicator != "" && req.IndicatorPeriod == "" {
		req.IndicatorPeriod = inferPeriod(req.Indicator, userText)
	}

	payload, err := r.fetcher.Fetch(ctx, req)
	if err != nil {
		return toolError(fmt.Sprintf("Error during tool execution: %v", err))
	}
	return payload.Text
}

// inferPeriod preserves the period-guessing behavior the model relies on:
// MACD uses its own fixed periods, and an explicit 50/200 in the user's
// message wins for moving averages.
func inferPeriod(kind model.IndicatorKind, userText string) string {
	if kind == model.IndicatorMACD {
		return "0"
	}
	lower := strings.ToLower(userText)
	if strings.Contains(lower, "ma") {
		if m := maPeriodPattern.FindString(userText); m != "" {
			return m
		}
	}
	return "14"
}

func (r *Relay) execCandlestickScan(ctx context.Context, args map[string]any) string {
	symbol := strArg(args, "symbol")
	interval := strArg(args, "interval")
	if interval == "" {
		interval = "1day"
	}

	payload, err := r.fetcher.Fetch(ctx, market.Request{
		DataType:   market.DataHistorical,
		Symbol:     symbol,
		Interval:   interval,
		OutputSize: "50",
	})
	if err != nil {
		return toolError(fmt.Sprintf("Error during tool execution: %v", err))
	}

	matches, err := pattern.Scan(payload.Candles)
	if err != nil {
		return toolError(fmt.Sprintf("Error during tool execution: %v", err))
	}
	return pattern.FormatReport(symbol, interval, matches)
}

func toolError(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}

func strArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
