package conversation

import "sync"

// Store is an ordered, append-only sequence of messages.
// Insertion order is display order. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages []Message
}

// NewStore creates a store holding the given seed messages.
func NewStore(seed ...Message) *Store {
	s := &Store{}
	s.ReplaceAll(seed)
	return s
}

// Append adds msg to the end of the transcript.
func (s *Store) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// ReplaceAll resets the transcript to a copy of seed.
func (s *Store) ReplaceAll(seed []Message) {
	fresh := make([]Message, len(seed))
	copy(fresh, seed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = fresh
}

// Messages returns a snapshot of the transcript in display order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the newest message, if any.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
