package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	emailRE          = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneCandidateRE = regexp.MustCompile(`(?:\+|\b)\d[\d \t\-]*\d`)
	whitespaceRE     = regexp.MustCompile(`\s+`)
	passengerRE      = regexp.MustCompile(`(?i)\b(\d+)\s*(?:passengers?|pax|people|persons?)\b`)
	routeRE          = regexp.MustCompile(`(?i)\bfrom\s+([^,.\n]+?)\s+to\s+([^,.\n]+)`)
	relativeDateRE   = regexp.MustCompile(`(?i)\b(today|tomorrow)\b`)
	dayMonthYearRE   = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)
	yearMonthDayRE   = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
	meridiemTimeRE   = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clockTimeRE      = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	nameRE           = regexp.MustCompile(`(?i)\b(i['’]m|i am|my name is|call me)\s+([\w ]{1,30})`)
	markdownBulletRE = regexp.MustCompile(`(?m)^\s*[-•*]\s+`)
)

// serviceKeywords maps message keywords to service labels. The first keyword found, in
// slice order, decides the service type.
var serviceKeywords = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`(?i)\bairport`), "Airport Transfer"},
	{regexp.MustCompile(`(?i)\bwedding`), "Wedding Transport"},
	{regexp.MustCompile(`(?i)\bcorporate`), "Corporate Transport"},
	{regexp.MustCompile(`(?i)\bprom`), "Prom Parties"},
	{regexp.MustCompile(`(?i)\bevent`), "Event Transport"},
	{regexp.MustCompile(`(?i)\bsecurity`), "Security Services"},
	{regexp.MustCompile(`(?i)\bchauffeur`), "Chauffeur Service"},
}

// nameStopWords are first words after "I'm"/"I am" that describe the customer rather than name them.
var nameStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "on": {}, "at": {}, "back": {}, "later": {}, "asap": {},
	"looking": {}, "interested": {}, "not": {}, "just": {}, "trying": {}, "going": {},
	"travelling": {}, "traveling": {}, "after": {}, "in": {}, "from": {}, "sure": {},
	"wondering": {}, "hoping": {}, "planning": {}, "getting": {}, "booking": {},
	"flying": {}, "arriving": {}, "leaving": {}, "staying": {}, "happy": {}, "here": {},
	"coming": {}, "landing": {}, "off": {}, "also": {}, "still": {}, "only": {}, "afraid": {},
}

// slotRule detects one slot (or a pair of slots) in a raw message and writes it into out.
type slotRule struct {
	name  string
	apply func(text string, now time.Time, out *BookingRecord) bool
}

// SlotExtractor pulls booking fields out of free-text chat messages.
type SlotExtractor struct {
	now   func() time.Time
	loc   *time.Location
	rules []slotRule
}

// ExtractorOption customises a SlotExtractor.
type ExtractorOption func(*SlotExtractor)

// WithExtractorClock overrides the clock used to resolve "today" and "tomorrow".
func WithExtractorClock(now func() time.Time) ExtractorOption {
	return func(e *SlotExtractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithExtractorLocation sets the business timezone relative dates are resolved in.
func WithExtractorLocation(loc *time.Location) ExtractorOption {
	return func(e *SlotExtractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewSlotExtractor builds an extractor with the standard rule set.
//
// Rules run in this order, each against the raw message: email, phone, passenger count,
// service type, route, date, time, name. A rule that finds nothing leaves its fields unset.
func NewSlotExtractor(opts ...ExtractorOption) *SlotExtractor {
	e := &SlotExtractor{
		now: time.Now,
		loc: time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = []slotRule{
		{name: FieldCustomerEmail, apply: extractEmail},
		{name: FieldCustomerPhone, apply: extractPhone},
		{name: FieldPassengerCount, apply: extractPassengerCount},
		{name: FieldServiceType, apply: extractServiceType},
		{name: "route", apply: extractRoute},
		{name: FieldBookingDate, apply: e.extractDate},
		{name: FieldBookingTime, apply: extractTime},
		{name: FieldCustomerName, apply: extractName},
	}
	return e
}

// Extract returns a partial record holding only the fields detected in text.
// The caller merges it into the accumulated record with Merge.
func (e *SlotExtractor) Extract(text string) BookingRecord {
	var partial BookingRecord
	if strings.TrimSpace(text) == "" {
		return partial
	}
	now := e.now().In(e.loc)
	for _, rule := range e.rules {
		rule.apply(text, now, &partial)
	}
	return partial
}

// Rules returns the rule names in evaluation order.
func (e *SlotExtractor) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		names = append(names, rule.name)
	}
	return names
}

func extractEmail(text string, _ time.Time, out *BookingRecord) bool {
	m := emailRE.FindString(text)
	if m == "" {
		return false
	}
	out.CustomerEmail = m
	return true
}

// extractPhone takes the first digit run with at least nine digits. Date and clock shapes are
// blanked out first so "25-12-2025 14:30" is not read as a phone number.
func extractPhone(text string, _ time.Time, out *BookingRecord) bool {
	masked := text
	for _, re := range []*regexp.Regexp{yearMonthDayRE, dayMonthYearRE, clockTimeRE} {
		masked = re.ReplaceAllStringFunc(masked, func(s string) string {
			return strings.Repeat(" ", len(s))
		})
	}
	for _, candidate := range phoneCandidateRE.FindAllString(masked, -1) {
		if countDigits(candidate) < 9 {
			continue
		}
		out.CustomerPhone = strings.TrimSpace(whitespaceRE.ReplaceAllString(candidate, " "))
		return true
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func extractPassengerCount(text string, _ time.Time, out *BookingRecord) bool {
	m := passengerRE.FindStringSubmatch(text)
	if len(m) < 2 {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return false
	}
	out.PassengerCount = n
	return true
}

func extractServiceType(text string, _ time.Time, out *BookingRecord) bool {
	for _, kw := range serviceKeywords {
		if kw.pattern.MatchString(text) {
			out.ServiceType = kw.label
			return true
		}
	}
	return false
}

func extractRoute(text string, _ time.Time, out *BookingRecord) bool {
	m := routeRE.FindStringSubmatch(text)
	if len(m) < 3 {
		return false
	}
	pickup := strings.TrimSpace(m[1])
	dropoff := strings.TrimSpace(m[2])
	if pickup == "" || dropoff == "" {
		return false
	}
	out.PickupLocation = pickup
	out.DropoffLocation = dropoff
	return true
}

// extractDate tries relative words, then day/month/year, then year/month/day, and keeps the
// first hit. Day/month order follows the UK convention.
func (e *SlotExtractor) extractDate(text string, now time.Time, out *BookingRecord) bool {
	if m := relativeDateRE.FindStringSubmatch(text); len(m) == 2 {
		day := now
		if strings.EqualFold(m[1], "tomorrow") {
			day = now.AddDate(0, 0, 1)
		}
		out.BookingDate = day.Format("2006-01-02")
		return true
	}
	if m := dayMonthYearRE.FindStringSubmatch(text); len(m) == 4 {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		if date, ok := normalizeDate(year, m[2], m[1]); ok {
			out.BookingDate = date
			return true
		}
	}
	if m := yearMonthDayRE.FindStringSubmatch(text); len(m) == 4 {
		if date, ok := normalizeDate(m[1], m[2], m[3]); ok {
			out.BookingDate = date
			return true
		}
	}
	return false
}

// normalizeDate formats the parts as YYYY-MM-DD, rejecting dates that do not exist.
func normalizeDate(year, month, day string) (string, bool) {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// extractTime prefers "5pm" / "5:30 pm" over a bare "17:30".
func extractTime(text string, _ time.Time, out *BookingRecord) bool {
	if m := meridiemTimeRE.FindStringSubmatch(text); len(m) == 4 {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute <= 59 {
			isPM := strings.EqualFold(m[3], "pm")
			switch {
			case isPM && hour != 12:
				hour += 12
			case !isPM && hour == 12:
				hour = 0
			}
			out.BookingTime = fmt.Sprintf("%02d:%02d:00", hour, minute)
			return true
		}
	}
	if m := clockTimeRE.FindStringSubmatch(text); len(m) == 3 {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			out.BookingTime = fmt.Sprintf("%02d:%02d:00", hour, minute)
			return true
		}
	}
	return false
}

// extractName reads the name after "I'm", "I am", "my name is" or "call me". After "I'm"/"I am"
// a lower-case word ending in "ing" is a verb ("I am flying in"), not a name.
func extractName(text string, _ time.Time, out *BookingRecord) bool {
	m := nameRE.FindStringSubmatch(text)
	if len(m) < 3 {
		return false
	}
	name := strings.TrimSpace(m[2])
	if name == "" {
		return false
	}
	firstWord := strings.Fields(name)[0]
	first := strings.ToLower(firstWord)
	if _, stop := nameStopWords[first]; stop {
		return false
	}
	if first[0] >= '0' && first[0] <= '9' {
		return false
	}
	prefix := strings.ToLower(m[1])
	selfDescribed := prefix != "my name is" && prefix != "call me"
	if selfDescribed && strings.HasSuffix(firstWord, "ing") && firstWord == first {
		return false
	}
	out.CustomerName = name
	return true
}
