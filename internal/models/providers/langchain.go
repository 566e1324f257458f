package providers

import (
	"context"
	"fmt"

	"orderintake/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// GitHubModelsBaseURL is the OpenAI-compatible endpoint of GitHub Models.
const GitHubModelsBaseURL = "https://models.inference.ai.azure.com"

// LangChainProvider implements Completer on top of any langchaingo model
type LangChainProvider struct {
	model    llms.Model
	settings Settings
}

// NewLangChainProvider wraps an already constructed langchaingo model
func NewLangChainProvider(model llms.Model, settings Settings) *LangChainProvider {
	return &LangChainProvider{model: model, settings: settings}
}

// NewOpenAIProvider creates a provider backed by the OpenAI chat API. A
// non-empty baseURL points the client at an OpenAI-compatible service.
func NewOpenAIProvider(token, modelName, baseURL string, settings Settings) (*LangChainProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("an API token is required for the OpenAI provider")
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	return NewLangChainProvider(client, settings), nil
}

// Complete implements the Completer interface
func (p *LangChainProvider) Complete(ctx context.Context, messages []models.Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var msgType schema.ChatMessageType
		switch msg.Role {
		case models.RoleSystem:
			msgType = schema.ChatMessageTypeSystem
		case models.RoleAssistant:
			msgType = schema.ChatMessageTypeAI
		case models.RoleUser:
			msgType = schema.ChatMessageTypeHuman
		default:
			return "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
		content = append(content, llms.TextParts(msgType, msg.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(p.settings.Temperature),
	}
	if p.settings.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.settings.MaxTokens))
	}
	if p.settings.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	response, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate chat completion: %w", err)
	}

	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return response.Choices[0].Content, nil
}
