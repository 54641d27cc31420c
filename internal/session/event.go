package session

import "copilotdesk/internal/conversation"

// EventKind classifies a controller change notification.
type EventKind int

const (
	EventUserMessage EventKind = iota
	EventAssistantMessage
	EventDraftChanged
	EventReset
)

// Event reports a state change. Message is set for the two message kinds;
// Draft is the composer text after the change.
type Event struct {
	Kind    EventKind
	Message conversation.Message
	State   State
	Draft   string
}

// quickStarters are the preset prompts offered above the transcript.
var quickStarters = []string{
	"帮我头脑风暴一个产品创意",
	"把下面这段话润色一下",
	"我想做一份学习计划",
	"根据提示生成一段营销文案",
}

// QuickStarters returns the preset prompts in display order.
func QuickStarters() []string {
	out := make([]string, len(quickStarters))
	copy(out, quickStarters)
	return out
}
