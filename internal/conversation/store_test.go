package conversation

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := NewStore(WelcomeMessage())
	first := NewMessage(RoleUser, "one")
	second := NewMessage(RoleAssistant, "two")

	s.Append(first)
	s.Append(second)

	got := s.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, WelcomeID, got[0].ID)
	if diff := cmp.Diff([]Message{first, second}, got[1:]); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	s := NewStore()
	s.Append(NewMessage(RoleUser, "hello"))
	s.Append(NewMessage(RoleAssistant, "hi"))

	seed := []Message{WelcomeMessage()}
	s.ReplaceAll(seed)

	assert.Equal(t, 1, s.Len())
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, WelcomeID, last.ID)

	// The store keeps its own copy of the seed.
	seed[0].Content = "mutated"
	last, _ = s.Last()
	assert.Equal(t, WelcomeText, last.Content)
}

func TestStore_MessagesIsSnapshot(t *testing.T) {
	s := NewStore(WelcomeMessage())
	snap := s.Messages()
	snap[0].Content = "changed"

	again := s.Messages()
	assert.Equal(t, WelcomeText, again[0].Content)
}

func TestStore_LastEmpty(t *testing.T) {
	s := NewStore()
	_, ok := s.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(NewMessage(RoleUser, "x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestNewMessageID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := NewMessageID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestWelcomeMessage(t *testing.T) {
	m := WelcomeMessage()
	assert.Equal(t, RoleAssistant, m.Role)
	assert.Equal(t, WelcomeID, m.ID)
	assert.Equal(t, "assistant", m.Role.String())
}
