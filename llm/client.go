package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Hints is the JSON shape the LLM returns for Tier 3/4 (spec §6). It is
// never fed catalog lists; these are free-form strings re-resolved against
// the catalog by DBMatcher, per spec §9's "LLM as an oracle, not a parser".
type Hints struct {
	Category    string            `json:"category,omitempty"`
	Location    string            `json:"location,omitempty"`
	Transaction string            `json:"transaction,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// ClientConfig configures the chat-completion collaborator.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client issues the Tier 3/4 hint prompts and the confidence-gate
// validator call, both via Chat Completions (spec §6).
type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm: chat model is required")
	}
	openaiCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		openaiCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{client: openai.NewClientWithConfig(openaiCfg), model: cfg.Model}, nil
}

// tier3System is the short system prompt spec §6 bounds at ~40 tokens,
// including a handful of Arabic-dialect equivalences so the model does not
// need a larger instruction to recognize colloquial phrasing.
const tier3System = `Extract {"category":"","location":"","transaction":""} as JSON from the user's classifieds query. ` +
	`بدي≈want, وين≈where, مطلوب≈wanted. Use empty string for unknown fields. Never invent catalog ids.`

// tier4System extends tier3System with an attributes field (spec §6).
const tier4System = tier3System + ` Also extract {"attributes":{"year":"","rooms":"","...":""}} for any numeric hints present.`

// Tier3Hints issues the short Tier-3 prompt (spec §4.6 step 6).
func (c *Client) Tier3Hints(ctx context.Context, utterance, language string) (Hints, int, error) {
	return c.hints(ctx, tier3System, utterance, language)
}

// Tier4Hints issues the richer Tier-4 prompt (spec §4.6 step 7).
func (c *Client) Tier4Hints(ctx context.Context, utterance, language string) (Hints, int, error) {
	return c.hints(ctx, tier4System, utterance, language)
}

func (c *Client) hints(ctx context.Context, system, utterance, language string) (Hints, int, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("language=%s query=%s", language, utterance)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0,
	})
	if err != nil {
		return Hints{}, 0, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Hints{}, resp.Usage.TotalTokens, fmt.Errorf("llm: no choices returned")
	}

	var hints Hints
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &hints); err != nil {
		return Hints{}, resp.Usage.TotalTokens, fmt.Errorf("llm: decode hints: %w", err)
	}
	return hints, resp.Usage.TotalTokens, nil
}

// ValidateCategory asks a yes/no question about whether categoryName fits
// utterance, used by the orchestrator's confidence gate (spec §4.9 step 4).
func (c *Client) ValidateCategory(ctx context.Context, utterance, categoryName string) (bool, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: `Answer only "yes" or "no": is the given category appropriate for the query?`},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("query=%s category=%s", utterance, categoryName)},
		},
		Temperature: 0,
		MaxTokens:   3,
	})
	if err != nil {
		return false, fmt.Errorf("llm: validate category: %w", err)
	}
	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("llm: no choices returned")
	}
	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	return strings.HasPrefix(answer, "yes"), nil
}
