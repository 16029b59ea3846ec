package conversation

import (
	"regexp"
	"strings"
)

// ReplyGuardResult is the outcome of screening a generated reply before it reaches a customer.
type ReplyGuardResult struct {
	Blocked bool
	Reasons []string
	// Text is the reply to send. It is empty when Blocked.
	Text string
}

type replyLeakPattern struct {
	re     *regexp.Regexp
	reason string
	block  bool
}

var replyLeakPatterns = []replyLeakPattern{
	{regexp.MustCompile(`(?i)my (system\s+)?(prompt|instructions?)\s+(is|are|says?|tells?|include)`), "prompt_disclosure", true},
	{regexp.MustCompile(`(?i)i('m| am) (programmed|instructed|configured) to`), "prompt_disclosure", true},
	{regexp.MustCompile(`(?i)(powered by|built on|running on)\s+(gemini|google|claude|gpt|openai|anthropic|bedrock|aws)`), "tech_stack", true},
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret|access[_\s]?token)\s*[:=]\s*\S+`), "credential", true},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "credential", true},
	{regexp.MustCompile(`(?i)(postgres|redis)://\S+`), "infrastructure", true},
	{regexp.MustCompile(`(?i)/admin/|/internal/|/metrics\b`), "infrastructure", true},
	{regexp.MustCompile(`(?i)(another|other) (customer|client|passenger)'?s?\s+(name|phone|email|booking|address)`), "other_customer", true},
	{regexp.MustCompile(`(?i)\bi('m| am) (an? )?(AI|language model|LLM|chatbot)\b`), "ai_identity", false},
}

var aiIdentitySentenceRE = regexp.MustCompile(`(?i)[^.!?]*\bi('m| am) (an? )?(AI|language model|LLM|chatbot)\b[^.!?]*[.!?]?\s*`)

// GuardReply screens a generated reply. Leaks of configuration or other customers' data block
// the reply; a bare AI self-description is cut and the rest kept.
func GuardReply(reply string) ReplyGuardResult {
	if strings.TrimSpace(reply) == "" {
		return ReplyGuardResult{Text: reply}
	}

	var reasons []string
	block := false
	for _, p := range replyLeakPatterns {
		if p.re.MatchString(reply) {
			reasons = append(reasons, p.reason)
			block = block || p.block
		}
	}
	switch {
	case len(reasons) == 0:
		return ReplyGuardResult{Text: reply}
	case block:
		return ReplyGuardResult{Blocked: true, Reasons: reasons}
	}

	cleaned := strings.TrimSpace(aiIdentitySentenceRE.ReplaceAllString(reply, ""))
	if cleaned == "" {
		return ReplyGuardResult{Blocked: true, Reasons: reasons}
	}
	return ReplyGuardResult{Reasons: reasons, Text: cleaned}
}
