package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSSM struct {
	mock.Mock
}

func (m *mockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ssm.GetParameterOutput), args.Error(1)
}

func TestParameterStoreGet(t *testing.T) {
	m := new(mockSSM)
	m.On("GetParameter", mock.Anything, mock.MatchedBy(func(in *ssm.GetParameterInput) bool {
		return aws.ToString(in.Name) == "/orders/openai-key" && aws.ToBool(in.WithDecryption)
	})).Return(&ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String("sk-test")},
	}, nil)

	value, err := NewParameterStore(m).Get(context.Background(), "/orders/openai-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", value)
	m.AssertExpectations(t)
}

func TestParameterStoreErrors(t *testing.T) {
	m := new(mockSSM)
	m.On("GetParameter", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDenied")).Once()
	m.On("GetParameter", mock.Anything, mock.Anything).Return(&ssm.GetParameterOutput{}, nil).Once()

	store := NewParameterStore(m)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorContains(t, err, "AccessDenied")

	_, err = store.Get(context.Background(), "empty")
	assert.ErrorContains(t, err, "has no value")
}
