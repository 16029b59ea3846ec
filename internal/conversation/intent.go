package conversation

import (
	"regexp"
	"strings"
)

// Mode is the per-turn framing chosen for a reply. It is never stored on the booking record.
type Mode string

const (
	ModeNormal      Mode = "normal"
	ModeConfirm     Mode = "confirm"
	ModeUpdate      Mode = "update"
	ModeOutOfRegion Mode = "out_of_region"
	ModeCancelled   Mode = "cancelled"
)

// IntentSignals are the independent cues found in a single message.
type IntentSignals struct {
	Cancelled   bool
	OutOfRegion bool
	Update      bool
}

var (
	cancelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcancel(?:l?ed)?\s+(?:the|my|this)\s+booking\b`),
		regexp.MustCompile(`(?i)\bnot\s+interested\b`),
		regexp.MustCompile(`(?i)\bchanged\s+my\s+mind\b`),
		regexp.MustCompile(`(?i)\bstop\s+(?:the\s+)?booking\b`),
	}
	outsideUKRE       = regexp.MustCompile(`(?i)\boutside\s+(?:of\s+)?(?:the\s+)?uk\b|\binternational\b|\babroad\b`)
	internationalAPRE = regexp.MustCompile(`(?i)\binternational\s+airport\b`)
	updateRE          = regexp.MustCompile(`(?i)\b(?:change[sd]?|changing|update[sd]?|modify|edit|correction|i\s+meant|replace)\b`)
)

// DefaultOutOfRegionKeywords are destinations the business does not serve.
var DefaultOutOfRegionKeywords = []string{
	"republic of ireland", "dublin", "france", "paris", "spain", "germany", "europe",
	"amsterdam", "netherlands", "belgium", "usa", "america", "new york", "dubai",
}

// IntentClassifier tags a message with signals and collapses them into a Mode.
type IntentClassifier struct {
	outOfRegion []*regexp.Regexp
}

// NewIntentClassifier builds a classifier. Extra keywords extend DefaultOutOfRegionKeywords.
func NewIntentClassifier(extraOutOfRegion ...string) *IntentClassifier {
	c := &IntentClassifier{}
	seen := make(map[string]struct{})
	for _, kw := range append(append([]string{}, DefaultOutOfRegionKeywords...), extraOutOfRegion...) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		c.outOfRegion = append(c.outOfRegion, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return c
}

// Signals reports every cue present in text.
func (c *IntentClassifier) Signals(text string) IntentSignals {
	var s IntentSignals
	for _, re := range cancelPatterns {
		if re.MatchString(text) {
			s.Cancelled = true
			break
		}
	}

	// "Manchester International Airport" is a pickup, not a trip abroad.
	regionText := internationalAPRE.ReplaceAllString(text, "airport")
	if outsideUKRE.MatchString(regionText) {
		s.OutOfRegion = true
	} else {
		for _, re := range c.outOfRegion {
			if re.MatchString(regionText) {
				s.OutOfRegion = true
				break
			}
		}
	}

	s.Update = updateRE.MatchString(text)
	return s
}

// Classify collapses the signals of text into a single Mode. wasComplete is the completion
// state of the booking before this message was merged.
//
// Precedence: cancelled, out of region, update, confirm, normal.
func (c *IntentClassifier) Classify(text string, wasComplete bool) Mode {
	s := c.Signals(text)
	switch {
	case s.Cancelled:
		return ModeCancelled
	case s.OutOfRegion:
		return ModeOutOfRegion
	case s.Update:
		return ModeUpdate
	case wasComplete:
		return ModeConfirm
	default:
		return ModeNormal
	}
}

// ClassifyIntent classifies text using the default out-of-region keywords.
func ClassifyIntent(text string, wasComplete bool) Mode {
	return defaultClassifier.Classify(text, wasComplete)
}

var defaultClassifier = NewIntentClassifier()
