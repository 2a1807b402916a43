package relay

import (
	"strings"
	"testing"
)

func TestSplit_ShortMessagePassesThrough(t *testing.T) {
	chunks := Split("hello", 2000)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("expected single unchanged chunk, got %v", chunks)
	}
}

func TestSplit_PrefersNewline(t *testing.T) {
	content := strings.Repeat("a", 40) + "\n" + strings.Repeat("b", 40)
	chunks := Split(content, 50)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != strings.Repeat("a", 40) {
		t.Errorf("first chunk should end at the newline, got %q", chunks[0])
	}
	if chunks[1] != strings.Repeat("b", 40) {
		t.Errorf("second chunk should have leading whitespace stripped, got %q", chunks[1])
	}
}

func TestSplit_FallsBackToSentenceThenSpace(t *testing.T) {
	content := "First sentence. Second sentence continues for quite a while here"
	chunks := Split(content, 40)
	if !strings.HasSuffix(chunks[0], ".") && !strings.Contains(chunks[0], "sentence") {
		t.Errorf("expected a sentence or word split, got %q", chunks[0])
	}
	for i, c := range chunks {
		if len(c) > 40 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	content := strings.Repeat("x", 95)
	chunks := Split(content, 40)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 95 unbreakable chars at limit 40, got %d", len(chunks))
	}
	if len(chunks[0]) != 40 || len(chunks[1]) != 40 || len(chunks[2]) != 15 {
		t.Errorf("unexpected chunk lengths: %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplit_NoChunkExceedsLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	for _, c := range Split(b.String(), MaxMessageLength) {
		if len(c) > MaxMessageLength {
			t.Fatalf("chunk of %d chars exceeds %d", len(c), MaxMessageLength)
		}
		if len(c) == 0 {
			t.Fatal("empty chunk emitted")
		}
	}
}
