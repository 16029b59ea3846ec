package conversation

import (
	"context"
	"fmt"

	"github.com/vipride/booking-assistant/pkg/logging"
)

// FallbackLLMClient tries a secondary provider when the primary one fails.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient pairs two providers. A nil fallback makes it a pass-through.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil || c.fallback == nil {
		return resp, err
	}
	if ctx.Err() != nil {
		return LLMResponse{}, err
	}

	c.logger.Warn("primary llm failed, trying fallback", "error", err)
	resp, fbErr := c.fallback.Complete(ctx, req)
	if fbErr != nil {
		return LLMResponse{}, fmt.Errorf("conversation: primary llm: %v; fallback llm: %w", err, fbErr)
	}
	return resp, nil
}
