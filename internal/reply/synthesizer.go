// Package reply produces the canned assistant replies.
// Replies are chosen by ordered keyword rules; the first rule with a keyword
// contained in the lower-cased prompt wins, otherwise the prompt is echoed
// back in a fixed acknowledgment.
package reply

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"copilotdesk/internal/logging"
)

const (
	planResponse      = "收到，我们可以把目标拆成若干小块，再为每块安排优先级与节奏。先告诉我你的时间周期与关键里程碑吧。"
	marketingResponse = "营销文案通常需要突出人群痛点、产品优势以及明确的行动号召。我们可以先锁定受众，然后一层层搭建结构。"
	ideationResponse  = "好的，我会先从目标用户出发列举几个方向，再帮你筛选可行的方案，并附上下一步建议。"

	// FallbackTemplate wraps the original prompt when no rule matches.
	FallbackTemplate = "已记录：“%s”。我会结合背景与目标给出一个有条理的回答，必要时也会继续向你提问确认细节。"
)

// Rule maps a keyword group to a fixed response.
type Rule struct {
	Name     string
	Keywords []string // matched lower-case, as substrings
	Response string
}

// matches reports whether any keyword occurs in the normalized prompt.
func (r Rule) matches(normalized string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(normalized, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "plan", Keywords: []string{"计划"}, Response: planResponse},
		{Name: "marketing", Keywords: []string{"文案", "营销"}, Response: marketingResponse},
		{Name: "ideation", Keywords: []string{"创意", "idea"}, Response: ideationResponse},
	}
}

// Synthesizer maps a prompt to a reply. The zero value has no rules and
// always falls back; use New for the built-in rule set.
type Synthesizer struct {
	rules []Rule
}

// New creates a synthesizer with the given rules, or DefaultRules when none
// are passed.
func New(rules ...Rule) *Synthesizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Synthesizer{rules: rules}
}

// Rules returns a copy of the rule list in evaluation order.
func (s *Synthesizer) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Match returns the first rule matching prompt.
func (s *Synthesizer) Match(prompt string) (Rule, bool) {
	normalized := strings.ToLower(prompt)
	for _, r := range s.rules {
		if r.matches(normalized) {
			return r, true
		}
	}
	return Rule{}, false
}

// Synthesize returns the reply for prompt. Callers filter out blank prompts.
func (s *Synthesizer) Synthesize(prompt string) string {
	if r, ok := s.Match(prompt); ok {
		logging.ReplyDebug("rule %q matched", r.Name)
		return r.Response
	}
	logging.ReplyDebug("no rule matched, echoing %d runes", utf8.RuneCountInString(prompt))
	return Fallback(prompt)
}

// Fallback renders the acknowledgment that echoes prompt verbatim.
func Fallback(prompt string) string {
	return fmt.Sprintf(FallbackTemplate, prompt)
}
