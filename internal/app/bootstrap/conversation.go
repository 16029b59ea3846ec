package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/internal/observability/metrics"
	"github.com/vipride/booking-assistant/pkg/logging"
)

// BuildLLMClient selects the reply provider from LLM_PROVIDER. It returns a nil client when
// replies should come from templates only. The cleanup func is always safe to call.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (conversation.LLMClient, func(), error) {
	noop := func() {}
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var bedrock conversation.LLMClient
	if model := strings.TrimSpace(cfg.BedrockModelID); model != "" {
		client, err := conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), model)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: bedrock client: %w", err)
		}
		bedrock = client
	}

	switch cfg.LLMProvider {
	case "none":
		logger.Info("llm disabled; replies use templates")
		return nil, noop, nil
	case "bedrock":
		if bedrock == nil {
			return nil, noop, fmt.Errorf("bootstrap: LLM_PROVIDER=bedrock requires BEDROCK_MODEL_ID")
		}
		logger.Info("using bedrock reply generation", "model", cfg.BedrockModelID)
		return bedrock, noop, nil
	case "", "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			if bedrock != nil {
				logger.Warn("GEMINI_API_KEY not set; using bedrock only")
				return bedrock, noop, nil
			}
			logger.Warn("no LLM credentials configured; replies use templates")
			return nil, noop, nil
		}
		gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		cleanup := func() {
			if err := gemini.Close(); err != nil {
				logger.Warn("failed to close gemini client", "error", err)
			}
		}
		if bedrock == nil {
			logger.Info("using gemini reply generation", "model", cfg.GeminiModelID)
			return gemini, cleanup, nil
		}
		logger.Info("using gemini reply generation with bedrock fallback", "model", cfg.GeminiModelID, "fallback_model", cfg.BedrockModelID)
		return conversation.NewFallbackLLMClient(gemini, bedrock, logger), cleanup, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown LLM provider %q", cfg.LLMProvider)
	}
}

// AssistantDeps are the collaborators built by the binary.
type AssistantDeps struct {
	LLM       conversation.LLMClient
	Sessions  conversation.SessionStore
	Snapshots conversation.SnapshotStore
	Bookings  conversation.BookingStore
	Metrics   *metrics.ConversationMetrics
	Logger    *logging.Logger
	Clock     func() time.Time
}

// ContactFromConfig is the business identity quoted in replies.
func ContactFromConfig(cfg *appconfig.Config) conversation.ContactInfo {
	return conversation.ContactInfo{
		BusinessName: cfg.BusinessName,
		Phone:        cfg.ContactPhone,
		Email:        cfg.ContactEmail,
	}
}

// BuildAssistant wires the booking assistant from config.
func BuildAssistant(cfg *appconfig.Config, deps AssistantDeps) (*conversation.Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		logger.Warn("unknown business timezone, using UTC", "timezone", cfg.BusinessTimezone, "error", err)
		loc = time.UTC
	}
	extractorOpts := []conversation.ExtractorOption{conversation.WithExtractorLocation(loc)}
	if deps.Clock != nil {
		extractorOpts = append(extractorOpts, conversation.WithExtractorClock(deps.Clock))
	}

	contact := ContactFromConfig(cfg)
	var generator conversation.ReplyGenerator
	if deps.LLM != nil {
		generator = conversation.NewLLMReplyGenerator(deps.LLM, "", contact, cfg.ReplyHistoryLimit, logger)
	}
	replies := conversation.NewReplyOrchestrator(generator, contact, logger,
		conversation.WithReplyTimeout(cfg.ReplyGenerateTimeout),
		conversation.WithReplyMetrics(deps.Metrics),
	)

	return conversation.NewAssistant(conversation.AssistantConfig{
		Extractor:  conversation.NewSlotExtractor(extractorOpts...),
		Classifier: conversation.NewIntentClassifier(cfg.OutOfRegionKeywords...),
		Replies:    replies,
		Sessions:   deps.Sessions,
		Snapshots:  deps.Snapshots,
		Bookings:   deps.Bookings,
		Contact:    contact,
		Metrics:    deps.Metrics,
		Logger:     logger,
		Clock:      deps.Clock,
	})
}
