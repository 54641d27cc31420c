package chat

import (
	"strings"
	"testing"

	"copilotdesk/internal/conversation"
	"copilotdesk/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_InitialLayout(t *testing.T) {
	m, _ := NewTestModel(t)

	view := m.View()
	assert.Contains(t, view, eyebrowText)
	assert.Contains(t, view, titleText)
	assert.Contains(t, view, assistantLabel)
	assert.Contains(t, view, idleCaption)
	assert.NotContains(t, view, pendingCaption)
	for i := range session.QuickStarters() {
		assert.Contains(t, view, "["+string(rune('1'+i))+"]")
	}
}

func TestView_CaptionTogglesWhileAwaiting(t *testing.T) {
	m, sched := NewTestModel(t)
	m = typeText(m, "hello")
	newModel, _ := m.Update(keyEnter())
	m = newModel.(Model)

	view := m.View()
	assert.Contains(t, view, pendingCaption)
	assert.Contains(t, view, "正在思考")
	assert.Equal(t, pendingCaption, m.sendCaption())

	require.Equal(t, 1, sched.Fire())
	m = drainEvents(t, m)

	view = m.View()
	assert.Contains(t, view, idleCaption)
	assert.NotContains(t, view, "正在思考")
	assert.Equal(t, idleCaption, m.sendCaption())
}

func TestRenderHistory_Labels(t *testing.T) {
	m, sched := NewTestModel(t)
	m = typeText(m, "随便聊聊")
	newModel, _ := m.Update(keyEnter())
	m = newModel.(Model)
	sched.Fire()
	m = drainEvents(t, m)

	history := m.renderHistory()
	assert.Contains(t, history, userLabel)
	assert.Contains(t, history, assistantLabel)
	assert.Contains(t, history, "随便聊聊")
	assert.Contains(t, history, "已记录")
}

func TestRenderHistory_WelcomeFirst(t *testing.T) {
	m, _ := NewTestModel(t)

	msgs := m.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, conversation.RoleAssistant, msgs[0].Role)
	assert.Contains(t, m.transcript, assistantLabel)
}

func TestSafeRenderMarkdown_PlainWithoutRenderer(t *testing.T) {
	m, _ := NewTestModel(t)
	require.Nil(t, m.renderer)

	assert.Equal(t, "**bold**", m.safeRenderMarkdown("**bold**"))
	assert.Equal(t, "", m.safeRenderMarkdown(""))
}

func TestSafeRenderMarkdown_WithRenderer(t *testing.T) {
	m, _ := NewTestModel(t, WithMarkdown())
	require.NotNil(t, m.renderer)

	out := m.safeRenderMarkdown("plain words")
	assert.Contains(t, out, "plain")
	assert.NotPanics(t, func() { _ = m.View() })
}

func TestRenderStarters_DisabledWhileAwaiting(t *testing.T) {
	m, _ := NewTestModel(t)
	idle := m.renderStarters()

	m = typeText(m, "x")
	newModel, _ := m.Update(keyEnter())
	m = newModel.(Model)
	busy := m.renderStarters()

	assert.NotEqual(t, idle, busy)
	assert.Contains(t, idle, "[1]")
	assert.NotContains(t, busy, "[1]", "key hints hidden while disabled")
	assert.Contains(t, busy, session.QuickStarters()[0])
	assert.Contains(t, idle, session.QuickStarters()[0])
}

func TestRenderHistory_FallbackShowsPromptLiterally(t *testing.T) {
	for _, prompt := range []string{"*重要* 的事情", "<b>hello</b> world", "# 标题"} {
		m, sched := NewTestModel(t, WithMarkdown())
		require.NotNil(t, m.renderer)

		m = typeText(m, prompt)
		newModel, _ := m.Update(keyEnter())
		m = newModel.(Model)
		require.Equal(t, 1, sched.Fire())
		m = drainEvents(t, m)

		msgs := m.ctrl.Messages()
		last := msgs[len(msgs)-1]
		require.True(t, last.Verbatim)

		history := m.renderHistory()
		first := strings.Fields(prompt)[0]
		assert.Contains(t, history, "“"+first, "prompt %q must not be interpreted", prompt)
	}
}

func TestRenderHistory_RuleReplyUsesMarkdown(t *testing.T) {
	m, sched := NewTestModel(t, WithMarkdown())
	m = typeText(m, "计划")
	newModel, _ := m.Update(keyEnter())
	m = newModel.(Model)
	sched.Fire()
	m = drainEvents(t, m)

	msgs := m.ctrl.Messages()
	assert.False(t, msgs[len(msgs)-1].Verbatim)
	assert.NotPanics(t, func() { _ = m.renderHistory() })
}
