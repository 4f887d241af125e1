// Package openaicompat talks to any OpenAI-compatible chat completions API.
// Groq exposes one, so it is the default target.
package openaicompat

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	boterrors "github.com/stxkxs/bluebot/internal/errors"
	"github.com/stxkxs/bluebot/internal/provider"
)

const (
	GroqBaseURL   = "https://api.groq.com/openai/v1/"
	OpenAIBaseURL = "https://api.openai.com/v1/"

	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Client implements provider.Provider over the OpenAI chat completions API.
type Client struct {
	name   string
	model  string
	apiKey string
	sdk    openai.Client
}

// NewGroq creates a client for Groq. An empty apiKey falls back to GROQ_API_KEY.
func NewGroq(apiKey, model, baseURL string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if model == "" {
		model = defaultGroqModel
	}
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	return newClient("groq", apiKey, model, baseURL)
}

// NewOpenAI creates a client for OpenAI. An empty apiKey falls back to OPENAI_API_KEY.
func NewOpenAI(apiKey, model, baseURL string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	return newClient("openai", apiKey, model, baseURL)
}

func newClient(name, apiKey, model, baseURL string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	// Retries are owned by provider.RetryProvider.
	sdk := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &Client{name: name, model: model, apiKey: apiKey, sdk: sdk}
}

func (c *Client) Name() string { return c.name }

// Complete sends the message list as one chat completion.
func (c *Client) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Response, error) {
	if c.apiKey == "" {
		envVar := strings.ToUpper(c.name) + "_API_KEY"
		return nil, boterrors.New(boterrors.CodeAPIKeyMissing, envVar+" not set").
			WithSuggestion("Set the " + envVar + " environment variable or add api_key to the provider section of bluebot.yaml")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toSDKMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, c.translateError(err)
	}
	if len(completion.Choices) == 0 {
		return &provider.Response{StopReason: "empty"}, nil
	}

	choice := completion.Choices[0]
	return &provider.Response{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: provider.Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
	}, nil
}

func toSDKMessages(msgs []provider.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case provider.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case provider.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// translateError maps SDK errors onto the provider error types used for retries.
func (c *Client) translateError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &provider.StatusError{Provider: c.name, StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
	}
	return &provider.TransportError{Provider: c.name, Err: err}
}
