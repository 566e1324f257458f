package providers

import (
	"context"
	"errors"
	"testing"

	"orderintake/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// MockLLM is a mock implementation of the langchaingo model interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func TestLangChainProviderMapsRoles(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("GenerateContent", mock.Anything, mock.MatchedBy(func(msgs []llms.MessageContent) bool {
		return len(msgs) == 3 &&
			msgs[0].Role == schema.ChatMessageTypeSystem &&
			msgs[1].Role == schema.ChatMessageTypeHuman &&
			msgs[2].Role == schema.ChatMessageTypeAI
	})).Return(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"intent":"order_food"}`}},
	}, nil)

	p := NewLangChainProvider(mockLLM, Settings{})
	out, err := p.Complete(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "be a waiter"},
		{Role: models.RoleUser, Content: "one pizza"},
		{Role: models.RoleAssistant, Content: "sure"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"intent":"order_food"}`, out)
	mockLLM.AssertExpectations(t)
}

func TestLangChainProviderErrors(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()
	mockLLM.On("GenerateContent", mock.Anything, mock.Anything).Return(&llms.ContentResponse{}, nil).Once()

	p := NewLangChainProvider(mockLLM, Settings{MaxTokens: 64})
	msgs := []models.Message{{Role: models.RoleUser, Content: "hi"}}

	_, err := p.Complete(context.Background(), msgs)
	assert.ErrorContains(t, err, "rate limited")

	_, err = p.Complete(context.Background(), msgs)
	assert.ErrorContains(t, err, "empty response")

	_, err = p.Complete(context.Background(), []models.Message{{Role: "tool", Content: "x"}})
	assert.ErrorContains(t, err, "unsupported message role")
}

func TestNewRejectsIncompleteOptions(t *testing.T) {
	_, err := New(Options{Type: OpenAIProvider})
	assert.Error(t, err)

	_, err = New(Options{Type: AzureProvider, APIKey: "k"})
	assert.Error(t, err)

	_, err = New(Options{Type: "cohere", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported model provider")
}

func TestToAzureMessages(t *testing.T) {
	msgs, err := toAzureMessages([]models.Message{
		{Role: models.RoleSystem, Content: "s"},
		{Role: models.RoleUser, Content: "u"},
		{Role: models.RoleAssistant, Content: "a"},
	})
	require.NoError(t, err)
	assert.Len(t, msgs, 3)

	_, err = toAzureMessages([]models.Message{{Role: "function"}})
	assert.Error(t, err)
}
