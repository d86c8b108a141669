package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIScorer implements Scorer using the OpenAI Chat Completions API.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg OpenAIConfig) *OpenAIScorer {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	return &OpenAIScorer{client: c, model: model}
}

func (o *OpenAIScorer) Name() string { return "openai:" + o.model }

const scoreSystemPrompt = `You rate the sentiment of a social media post about a political protest.
Reply with ONLY a decimal number between -1.0 (strongly negative/hostile) and 1.0 (strongly positive/supportive).
0 means neutral. No words, no explanation, just the number.`

// Score asks the model for a single bounded number and parses it. Responses
// that do not parse as a number are an error, not a silent zero.
func (o *OpenAIScorer) Score(ctx context.Context, text string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	text = strings.TrimSpace(text)
	if len([]rune(text)) > 1000 {
		text = string([]rune(text)[:1000])
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoreSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		slog.Error("openai: score error", "err", err)
		return 0, err
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai: empty response")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, fmt.Errorf("openai: unparsable score %q: %w", out, err)
	}
	return Clamp(v), nil
}
