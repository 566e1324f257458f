package providers

import (
	"context"
	"fmt"

	"orderintake/internal/models"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzureOpenAIProvider implements the Completer interface for Azure OpenAI
type AzureOpenAIProvider struct {
	client         *azopenai.Client
	deploymentName string
	settings       Settings
}

// NewAzureOpenAIProvider creates a new Azure OpenAI provider
func NewAzureOpenAIProvider(endpoint, apiKey, deploymentName string, settings Settings) (*AzureOpenAIProvider, error) {
	if endpoint == "" || apiKey == "" || deploymentName == "" {
		return nil, fmt.Errorf("Azure OpenAI configuration missing: endpoint, api key and deployment name are required")
	}

	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	return &AzureOpenAIProvider{
		client:         client,
		deploymentName: deploymentName,
		settings:       settings,
	}, nil
}

// Complete implements the Completer interface
func (p *AzureOpenAIProvider) Complete(ctx context.Context, messages []models.Message) (string, error) {
	chatMessages, err := toAzureMessages(messages)
	if err != nil {
		return "", err
	}

	opts := azopenai.ChatCompletionsOptions{
		Messages:       chatMessages,
		Temperature:    to.Ptr(float32(p.settings.Temperature)),
		DeploymentName: to.Ptr(p.deploymentName),
	}
	if p.settings.MaxTokens > 0 {
		opts.MaxTokens = to.Ptr(int32(p.settings.MaxTokens))
	}

	resp, err := p.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return "", fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from Azure OpenAI")
	}

	if resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("empty response from Azure OpenAI")
	}

	return *resp.Choices[0].Message.Content, nil
}

func toAzureMessages(messages []models.Message) ([]azopenai.ChatRequestMessageClassification, error) {
	chatMessages := make([]azopenai.ChatRequestMessageClassification, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			chatMessages[i] = &azopenai.ChatRequestSystemMessage{
				Content: to.Ptr(msg.Content),
			}
		case models.RoleUser:
			chatMessages[i] = &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(msg.Content),
			}
		case models.RoleAssistant:
			chatMessages[i] = &azopenai.ChatRequestAssistantMessage{
				Content: to.Ptr(msg.Content),
			}
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	return chatMessages, nil
}
