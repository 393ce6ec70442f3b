package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider uses the chat completion API.
type OpenAIProvider struct {
	key    string
	model  string
	client *openai.Client
}

// NewOpenAIProvider builds a provider. baseURL may be empty for the public API.
func NewOpenAIProvider(key, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		key:    key,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (p *OpenAIProvider) Name() ProviderName { return OpenAI }

func (p *OpenAIProvider) Available() bool { return p.key != "" }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", &ProviderError{Provider: OpenAI, Kind: KindNoCredentials}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: OpenAI, Kind: KindEmpty}
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &ProviderError{Provider: OpenAI, Kind: KindEmpty}
	}
	return content, nil
}

func classifyOpenAIError(err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := statusError(OpenAI, apiErr.HTTPStatusCode, nil)
		pe.Err = err
		return pe
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		pe := statusError(OpenAI, reqErr.HTTPStatusCode, nil)
		pe.Err = err
		return pe
	}
	return transportError(OpenAI, err)
}
