// Package ai turns a free-text prompt into task suggestions, either via an
// OpenAI-compatible chat-completions call or a local splitting heuristic.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-4o-mini"
)

const systemInstruction = "You are a task list generator. " +
	"Respond with a raw JSON array of objects, each with a required \"text\" string " +
	"and optional \"category\" (string) and \"priority\" (boolean) fields. " +
	"Do not wrap the array in markdown or add any other text."

// itemsSchema is what we accept from the provider before any task is added.
const itemsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "text": {"type": "string"},
      "category": {"type": "string"},
      "priority": {"type": "boolean"}
    },
    "required": ["text"]
  }
}`

var compiledItemsSchema = jsonschema.MustCompileString("items.json", itemsSchema)

// Item is one generated task suggestion.
type Item struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Priority bool   `json:"priority"`
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		Model:      DefaultModel,
		HTTPClient: &http.Client{},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate asks the provider for task suggestions. Any failure (transport,
// auth, malformed response, zero usable items) is returned to the caller;
// there is no silent fallback here.
func (c *Client) Generate(ctx context.Context, prompt string) ([]Item, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("api key not set")
	}
	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var ce chatError
		if json.Unmarshal(respBody, &ce) == nil && ce.Error.Message != "" {
			return nil, fmt.Errorf("provider error (%d): %s", resp.StatusCode, ce.Error.Message)
		}
		return nil, fmt.Errorf("provider error (%d)", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	items, err := ParseItems(cr.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no usable items")
	}
	return items, nil
}

// ParseItems decodes provider content as a JSON array of items. When the
// content carries surrounding text, it retries on the substring from the
// first '[' to the last ']'. Items with empty text are dropped.
func ParseItems(content string) ([]Item, error) {
	items, err := decodeItems(content)
	if err == nil {
		return items, nil
	}
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		return decodeItems(content[start : end+1])
	}
	return nil, err
}

func decodeItems(content string) ([]Item, error) {
	var probe interface{}
	if err := json.Unmarshal([]byte(content), &probe); err != nil {
		return nil, err
	}
	if err := compiledItemsSchema.Validate(probe); err != nil {
		return nil, fmt.Errorf("response shape: %w", err)
	}
	var items []Item
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, err
	}
	out := items[:0]
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
