package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/pkg/logging"
)

func TestBuildLLMClientRequiresConfig(t *testing.T) {
	_, cleanup, err := BuildLLMClient(context.Background(), nil, aws.Config{}, nil)
	require.Error(t, err)
	cleanup()
}

func TestBuildLLMClientSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     appconfig.Config
		wantNil bool
		wantErr bool
		wantT   any
	}{
		{name: "disabled", cfg: appconfig.Config{LLMProvider: "none", BedrockModelID: "m"}, wantNil: true},
		{name: "gemini without key", cfg: appconfig.Config{LLMProvider: "gemini"}, wantNil: true},
		{name: "gemini without key uses bedrock", cfg: appconfig.Config{LLMProvider: "gemini", BedrockModelID: "anthropic.claude"}, wantT: &conversation.BedrockLLMClient{}},
		{name: "bedrock", cfg: appconfig.Config{LLMProvider: "bedrock", BedrockModelID: "anthropic.claude"}, wantT: &conversation.BedrockLLMClient{}},
		{name: "bedrock without model", cfg: appconfig.Config{LLMProvider: "bedrock"}, wantErr: true},
		{name: "unknown provider", cfg: appconfig.Config{LLMProvider: "openai"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			client, cleanup, err := BuildLLMClient(context.Background(), &cfg, aws.Config{Region: "eu-west-2"}, logging.New("error"))
			defer cleanup()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, client)
				return
			}
			assert.IsType(t, tt.wantT, client)
		})
	}
}

func TestBuildAssistantRunsTemplateTurns(t *testing.T) {
	cfg := &appconfig.Config{
		BusinessName:         "VIP Chauffeurs",
		BusinessTimezone:     "Europe/London",
		ContactPhone:         "0161 496 0000",
		ContactEmail:         "bookings@vipride.example",
		OutOfRegionKeywords:  []string{"monaco"},
		ReplyHistoryLimit:    10,
		ReplyGenerateTimeout: time.Second,
	}
	assistant, err := BuildAssistant(cfg, AssistantDeps{
		Sessions: conversation.NewMemorySessionStore(),
		Bookings: conversation.BookingStoreFunc(func(context.Context, string, conversation.BookingRecord) (string, bool, error) {
			return "b-1", true, nil
		}),
		Logger: logging.New("error"),
		Clock:  func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	res, err := assistant.ProcessMessage(context.Background(), conversation.MessageRequest{SessionID: "s1", Message: "Can you drive us to Monaco?"})
	require.NoError(t, err)
	assert.Equal(t, conversation.ModeOutOfRegion, res.Mode)
	assert.Contains(t, res.Response, "0161 496 0000")
}

func TestBuildAssistantRequiresStores(t *testing.T) {
	_, err := BuildAssistant(&appconfig.Config{BusinessTimezone: "Nowhere/Invalid"}, AssistantDeps{Logger: logging.New("error")})
	require.Error(t, err)

	_, err = BuildAssistant(nil, AssistantDeps{})
	require.Error(t, err)
}
