package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/btca/internal/agent/mocks"
	"github.com/sevigo/btca/internal/apperr"
	"github.com/sevigo/btca/internal/credstore"
)

func TestRegistryGetModelRejectsUnknownProvider(t *testing.T) {
	r := NewRegistry(credstore.NewStatic(nil))

	_, err := r.GetModel(context.Background(), "nope", "any-model")
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TagInvalidProvider, e.Tag)
}

func TestRegistryGetModelRejectsProviderWithNoCredential(t *testing.T) {
	r := NewRegistry(credstore.NewStatic(nil))
	r.Register("openai-compatible", func(ctx context.Context, modelID, apiKey string) (LanguageModel, Capability, error) {
		t.Fatal("factory must not be called when no credential is configured")
		return nil, nil, nil
	})

	_, err := r.GetModel(context.Background(), "openai-compatible", "gpt-test")
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TagProviderNotConnected, e.Tag)
}

func TestRegistryDispatchesStreamTextToBoundCapability(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockModel := mocks.NewMockLanguageModel(ctrl)
	mockModel.EXPECT().Provider().Return("openai-compatible").AnyTimes()
	mockModel.EXPECT().ModelID().Return("gpt-test").AnyTimes()

	mockCapability := mocks.NewMockCapability(ctrl)
	want := make(chan Part)
	close(want)
	mockCapability.EXPECT().
		StreamText(gomock.Any(), gomock.Any()).
		Return((<-chan Part)(want), nil)

	r := NewRegistry(credstore.NewStatic(map[string]string{"openai-compatible": "sk-test"}))
	r.Register("openai-compatible", func(ctx context.Context, modelID, apiKey string) (LanguageModel, Capability, error) {
		assert.Equal(t, "sk-test", apiKey)
		return mockModel, mockCapability, nil
	})

	model, err := r.GetModel(context.Background(), "openai-compatible", "gpt-test")
	require.NoError(t, err)

	got, err := r.StreamText(context.Background(), StreamRequest{Model: model})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRegistryStreamTextRejectsUnresolvedModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	unresolved := mocks.NewMockLanguageModel(ctrl)

	r := NewRegistry(credstore.NewStatic(nil))
	_, err := r.StreamText(context.Background(), StreamRequest{Model: unresolved})
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TagAgent, e.Tag)
}
