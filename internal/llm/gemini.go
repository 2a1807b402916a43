// Package llm talks to the Gemini generateContent HTTP API, including its
// function-calling protocol.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultModel = "gemini-2.0-flash"

// Content is one turn of the conversation in the provider's wire shape.
type Content struct {
	Role  string `json:"role"` // "user", "model", or "function"
	Parts []Part `json:"parts"`
}

// Part is either plain text, a tool-call request from the model, or a
// tool-call response from us.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is the model asking us to run a named tool.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse feeds a tool's output back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// TextTurn builds a plain-text conversation turn.
func TextTurn(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// Reply is the decoded outcome of one generateContent call: exactly one of
// Text or FunctionCall is set unless the prompt was blocked.
type Reply struct {
	Text         string
	FunctionCall *FunctionCall
	BlockReason  string
}

// Client calls the Gemini REST API.
type Client struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// NewClient creates a Gemini client for the default model.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   defaultModel,
		BaseURL: "https://generativelanguage.googleapis.com",
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Safety thresholds are pinned to "do not block"; the bot's replies are
// gated by its own tooling, not by the provider's content filter.
var safetySettings = []map[string]string{
	{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_NONE"},
	{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_NONE"},
	{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_NONE"},
	{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_NONE"},
}

// GenerateContent sends the conversation plus tool schemas and decodes the
// model's next move.
func (c *Client) GenerateContent(ctx context.Context, history []Content) (*Reply, error) {
	payload := map[string]any{
		"contents":       history,
		"tools":          ToolDeclarations(),
		"safetySettings": safetySettings,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var decoded struct {
		Candidates []struct {
			Content struct {
				Parts []Part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		reason := decoded.PromptFeedback.BlockReason
		if reason == "" {
			reason = "unknown"
		}
		return &Reply{BlockReason: reason}, nil
	}

	first := decoded.Candidates[0].Content.Parts[0]
	if first.FunctionCall != nil {
		return &Reply{FunctionCall: first.FunctionCall}, nil
	}
	if first.Text != "" {
		return &Reply{Text: first.Text}, nil
	}
	reason := decoded.PromptFeedback.BlockReason
	if reason == "" {
		reason = "unknown"
	}
	return &Reply{BlockReason: reason}, nil
}
