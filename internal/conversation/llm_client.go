package conversation

import (
	"context"
	"strings"
)

// Transcript roles. System text normally travels in LLMRequest.System; a system-role
// message is folded into it by the clients.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ProviderDefaultTemperature leaves sampling temperature to the provider. Zero is a valid
// temperature, so "unset" is any negative value.
const ProviderDefaultTemperature float32 = -1

// ChatMessage is the provider-neutral message shape sent to an LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage is reported by the provider; zero when it sends none.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is one completion call.
//
// Model overrides the client's configured model when set. MaxTokens and TopP are only sent
// when positive. Temperature is only sent when non-negative; use ProviderDefaultTemperature
// to omit it.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

func (r LLMRequest) modelOr(configured string) string {
	if m := strings.TrimSpace(r.Model); m != "" {
		return m
	}
	return strings.TrimSpace(configured)
}

func (r LLMRequest) hasTemperature() bool {
	return r.Temperature >= 0
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient completes a chat transcript. Gemini and Bedrock implement it; FallbackLLMClient
// chains two of them.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
