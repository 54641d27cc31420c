// Package conversation holds the chat transcript: message records and the
// ordered in-memory store that owns them.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire name of the role.
func (r Role) String() string { return string(r) }

// WelcomeID is the fixed ID of the seeded greeting.
const WelcomeID = "welcome"

// WelcomeText is the greeting every conversation starts with.
const WelcomeText = "你好，我是你的 AI 助手。有任何想法都可以直接告诉我，我们一起把它变成现实。"

// Message represents a single turn in the transcript.
// Messages are values; the store never hands out references into its slice.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time

	// Verbatim marks content that embeds user text and must be displayed
	// as typed, never interpreted as markdown.
	Verbatim bool
}

// NewMessage builds a message with a fresh ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// WelcomeMessage returns the seeded assistant greeting.
func WelcomeMessage() Message {
	return Message{
		ID:        WelcomeID,
		Role:      RoleAssistant,
		Content:   WelcomeText,
		CreatedAt: time.Now(),
	}
}

// NewMessageID returns a time-ordered unique ID (UUIDv7: millisecond clock
// plus random bits). Falls back to a random v4 UUID if v7 generation fails.
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
