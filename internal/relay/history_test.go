package relay

import (
	"fmt"
	"testing"

	"SignalSentry/internal/llm"
)

func TestHistoryStore_CapsTurns(t *testing.T) {
	h := NewHistoryStore(10)
	for i := 0; i < 25; i++ {
		h.Append("u1", llm.TextTurn("user", fmt.Sprintf("msg %d", i)))
	}

	turns := h.Recent("u1")
	if len(turns) != 10 {
		t.Fatalf("expected 10 retained turns, got %d", len(turns))
	}
	if got := turns[0].Parts[0].Text; got != "msg 15" {
		t.Errorf("expected oldest retained turn to be msg 15, got %q", got)
	}
	if got := turns[9].Parts[0].Text; got != "msg 24" {
		t.Errorf("expected newest turn to be msg 24, got %q", got)
	}
}

func TestHistoryStore_IsolatesUsers(t *testing.T) {
	h := NewHistoryStore(10)
	h.Append("u1", llm.TextTurn("user", "from u1"))
	h.Append("u2", llm.TextTurn("user", "from u2"))

	if n := len(h.Recent("u1")); n != 1 {
		t.Fatalf("expected 1 turn for u1, got %d", n)
	}
	if got := h.Recent("u2")[0].Parts[0].Text; got != "from u2" {
		t.Errorf("u2 history leaked: %q", got)
	}
}

func TestHistoryStore_RecentReturnsCopy(t *testing.T) {
	h := NewHistoryStore(10)
	h.Append("u1", llm.TextTurn("user", "original"))

	turns := h.Recent("u1")
	turns[0] = llm.TextTurn("user", "mutated")

	if got := h.Recent("u1")[0].Parts[0].Text; got != "original" {
		t.Errorf("mutating the returned slice changed the store: %q", got)
	}
}
