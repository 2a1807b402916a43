package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c
}

func TestGenerateContent_RequestShape(t *testing.T) {
	var captured map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`))
	})

	reply, err := c.GenerateContent(context.Background(), []Content{TextTurn("user", "hello")})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != "hi" {
		t.Errorf("unexpected reply text %q", reply.Text)
	}

	tools, ok := captured["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("expected one tools entry, got %v", captured["tools"])
	}
	safety, ok := captured["safetySettings"].([]any)
	if !ok || len(safety) != 4 {
		t.Fatalf("expected four safety settings, got %v", captured["safetySettings"])
	}
	for _, s := range safety {
		m := s.(map[string]any)
		if m["threshold"] != "BLOCK_NONE" {
			t.Errorf("safety threshold must be BLOCK_NONE, got %v", m["threshold"])
		}
	}
}

func TestGenerateContent_FunctionCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[
			{"functionCall":{"name":"get_market_data","args":{"symbol":"BTC/USD","data_type":"live"}}}
		]}}]}`))
	})

	reply, err := c.GenerateContent(context.Background(), []Content{TextTurn("user", "btc price")})
	if err != nil {
		t.Fatal(err)
	}
	if reply.FunctionCall == nil {
		t.Fatal("expected a function call")
	}
	if reply.FunctionCall.Name != ToolGetMarketData {
		t.Errorf("unexpected tool name %q", reply.FunctionCall.Name)
	}
	if reply.FunctionCall.Args["symbol"] != "BTC/USD" {
		t.Errorf("unexpected args %v", reply.FunctionCall.Args)
	}
}

func TestGenerateContent_BlockedPrompt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	reply, err := c.GenerateContent(context.Background(), []Content{TextTurn("user", "x")})
	if err != nil {
		t.Fatal(err)
	}
	if reply.BlockReason != "SAFETY" {
		t.Errorf("expected SAFETY block reason, got %q", reply.BlockReason)
	}
}

func TestGenerateContent_EmptyCandidateDefaultsReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	reply, err := c.GenerateContent(context.Background(), []Content{TextTurn("user", "x")})
	if err != nil {
		t.Fatal(err)
	}
	if reply.BlockReason != "unknown" {
		t.Errorf("expected unknown block reason, got %q", reply.BlockReason)
	}
}

func TestGenerateContent_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"key invalid"}}`))
	})

	if _, err := c.GenerateContent(context.Background(), []Content{TextTurn("user", "x")}); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}

func TestToolDeclarations_NamesAndParams(t *testing.T) {
	decls := ToolDeclarations()
	if len(decls) != 1 {
		t.Fatalf("expected one tools wrapper, got %d", len(decls))
	}
	fns, ok := decls[0]["functionDeclarations"].([]map[string]any)
	if !ok {
		t.Fatalf("unexpected declaration shape: %T", decls[0]["functionDeclarations"])
	}
	names := make(map[string]bool, len(fns))
	for _, fn := range fns {
		name, _ := fn["name"].(string)
		names[name] = true
		if desc, _ := fn["description"].(string); desc == "" {
			t.Errorf("tool %q has no description", name)
		}
	}
	for _, want := range []string{ToolGetMarketData, ToolGenerateTradingSignal, ToolAnalyzeCandlesticks} {
		if !names[want] {
			t.Errorf("missing tool declaration %q", want)
		}
	}
}
