package providers

import (
	"fmt"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	OpenAIProvider       ProviderType = "openai"
	GitHubModelsProvider ProviderType = "github_models"
	AzureProvider        ProviderType = "azure"
)

// Options holds the credentials and model settings for a provider.
type Options struct {
	Type     ProviderType
	Model    string
	APIKey   string
	BaseURL  string
	Settings Settings

	// Azure only.
	AzureEndpoint   string
	AzureDeployment string
}

// New initializes the completer for the configured provider type
func New(opts Options) (Completer, error) {
	switch opts.Type {
	case OpenAIProvider, "":
		return NewOpenAIProvider(opts.APIKey, opts.Model, opts.BaseURL, opts.Settings)
	case GitHubModelsProvider:
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = GitHubModelsBaseURL
		}
		return NewOpenAIProvider(opts.APIKey, opts.Model, baseURL, opts.Settings)
	case AzureProvider:
		return NewAzureOpenAIProvider(opts.AzureEndpoint, opts.APIKey, opts.AzureDeployment, opts.Settings)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", opts.Type)
	}
}
