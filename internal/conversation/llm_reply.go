package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vipride/booking-assistant/pkg/logging"
)

const (
	defaultReplyHistoryLimit = 20
	replyMaxTokens           = 300
	replyTemperature         = 0.3
)

// LLMReplyGenerator phrases replies with an LLM, giving it the booking state as context.
type LLMReplyGenerator struct {
	client       LLMClient
	model        string
	contact      ContactInfo
	historyLimit int
	logger       *logging.Logger
}

// NewLLMReplyGenerator wraps client. historyLimit caps the transcript turns sent per request.
func NewLLMReplyGenerator(client LLMClient, model string, contact ContactInfo, historyLimit int, logger *logging.Logger) *LLMReplyGenerator {
	if historyLimit <= 0 {
		historyLimit = defaultReplyHistoryLimit
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMReplyGenerator{
		client:       client,
		model:        model,
		contact:      contact,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (g *LLMReplyGenerator) GenerateReply(ctx context.Context, req ReplyRequest) (string, error) {
	if g.client == nil {
		return "", errors.New("conversation: llm client not configured")
	}

	messages := historyToChat(trimTranscript(req.History, g.historyLimit))
	// The current message is usually already in History; add it when the caller did not.
	if n := len(messages); n == 0 || messages[n-1].Role != ChatRoleUser || messages[n-1].Content != req.UserMessage {
		messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: req.UserMessage})
	}

	start := time.Now()
	resp, err := g.client.Complete(ctx, LLMRequest{
		Model:       g.model,
		System:      []string{buildReplySystemPrompt(g.contact), buildTurnContext(req)},
		Messages:    messages,
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("conversation: llm reply: %w", err)
	}
	g.logger.Debug("llm reply generated",
		"session_id", req.SessionID,
		"latency_ms", time.Since(start).Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)

	text := sanitizeReply(resp.Text)
	if text == "" {
		return "", errEmptyReply
	}
	return text, nil
}

func trimTranscript(history []Message, limit int) []Message {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

func historyToChat(history []Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := ChatRoleUser
		if msg.Role == ChatRoleAssistant {
			role = ChatRoleAssistant
		}
		out = append(out, ChatMessage{Role: role, Content: content})
	}
	return out
}

// sanitizeReply strips markdown the chat widget would show literally.
func sanitizeReply(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = markdownBulletRE.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
