// Package chat provides test utilities for TUI testing.
// This file contains fixtures and helpers for testing the chat package.
package chat

import (
	"testing"
	"time"

	"copilotdesk/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TEST MODEL FACTORY
// =============================================================================

type testModelConfig struct {
	width    int
	height   int
	markdown bool
	theme    string
	sched    *session.ManualScheduler
}

// TestModelOption configures NewTestModel.
type TestModelOption func(*testModelConfig)

// WithSize sets the initial window size.
func WithSize(w, h int) TestModelOption {
	return func(c *testModelConfig) { c.width, c.height = w, h }
}

// WithMarkdown enables glamour rendering.
func WithMarkdown() TestModelOption {
	return func(c *testModelConfig) { c.markdown = true }
}

// WithManualScheduler lets the test decide when replies land.
func WithManualScheduler(s *session.ManualScheduler) TestModelOption {
	return func(c *testModelConfig) { c.sched = s }
}

// NewTestModel builds a sized, ready model whose controller never fires on
// its own. The controller is torn down when the test ends.
func NewTestModel(t *testing.T, opts ...TestModelOption) (Model, *session.ManualScheduler) {
	t.Helper()

	cfg := &testModelConfig{width: 100, height: 40, theme: "light"}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sched == nil {
		cfg.sched = &session.ManualScheduler{}
	}

	ctrl := session.NewController(
		session.WithScheduler(cfg.sched),
		session.WithDelayWindow(800*time.Millisecond, 1700*time.Millisecond),
	)
	t.Cleanup(ctrl.Teardown)

	m := New(Config{Controller: ctrl, Theme: cfg.theme, Markdown: cfg.markdown})
	newModel, _ := m.Update(tea.WindowSizeMsg{Width: cfg.width, Height: cfg.height})
	return newModel.(Model), cfg.sched
}

// =============================================================================
// KEY HELPERS
// =============================================================================

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyAltDigit(d rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{d}, Alt: true}
}

func keyEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func keyAltEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter, Alt: true}
}

// typeText feeds s to the model one key at a time.
func typeText(m Model, s string) Model {
	for _, r := range s {
		newModel, _ := m.Update(keyRunes(string(r)))
		m = newModel.(Model)
	}
	return m
}

// drainEvents feeds every queued controller event back into the model.
func drainEvents(t *testing.T, m Model) Model {
	t.Helper()
	for {
		select {
		case ev, ok := <-m.ctrl.Events():
			if !ok {
				return m
			}
			newModel, _ := m.Update(controllerEventMsg(ev))
			m = newModel.(Model)
		default:
			return m
		}
	}
}
