// Package chat provides the interactive TUI for the copilot chat workspace.
// This file contains view rendering functions for the TUI.
package chat

import (
	"fmt"
	"strings"

	"copilotdesk/internal/conversation"

	"github.com/charmbracelet/lipgloss"
)

// Captions shown on the send button.
const (
	idleCaption    = "发送"
	pendingCaption = "思考中…"
)

// Header text.
const (
	eyebrowText  = "AI Co-pilot"
	titleText    = "智能对话工作台"
	subtitleText = "直接开聊，或选择下方提示。AI 会即时反馈、总结并提出下一步建议。"
)

// Avatar labels.
const (
	userLabel      = "我"
	assistantLabel = "AI"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderStarters(),
		m.styles.Content.Render(m.viewport.View()),
		m.renderComposer(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Eyebrow.Render(eyebrowText),
		m.styles.Title.Render(titleText),
		m.styles.Subtitle.Width(m.width).Render(subtitleText),
		m.styles.RenderDivider(m.width),
	)
}

// renderStarters draws the quick-start chips, wrapped to the window width.
// While a reply is pending they dim and lose their key hints, matching the
// disabled composer.
func (m Model) renderStarters() string {
	return strings.Join(m.starterRows(), "\n") + "\n"
}

func (m Model) starterRows() []string {
	busy := m.ctrl.Awaiting()

	var rows []string
	var row []string
	rowWidth := 0
	for i, s := range m.starters {
		var chip string
		if busy {
			chip = m.styles.ChipDisabled.Render(s)
		} else {
			chip = m.styles.Chip.Render(m.styles.ChipKey.Render(fmt.Sprintf("[%d]", i+1)) + " " + s)
		}
		w := lipgloss.Width(chip)
		if len(row) > 0 && rowWidth+w > m.width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, chip)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return rows
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	bubbleWidth := m.width - 8
	if bubbleWidth < minWidth {
		bubbleWidth = minWidth
	}

	for _, msg := range m.ctrl.Messages() {
		switch msg.Role {
		case conversation.RoleUser:
			sb.WriteString(m.styles.UserLabel.Render(userLabel) + "\n")
			sb.WriteString(m.styles.UserBubble.Width(bubbleWidth).Render(msg.Content))
			sb.WriteString("\n\n")

		default: // assistant
			sb.WriteString(m.styles.AssistantLabel.Render(assistantLabel) + "\n")
			var body string
			if msg.Verbatim || m.renderer == nil {
				body = lipgloss.NewStyle().Width(bubbleWidth).Render(msg.Content)
			} else {
				body = strings.TrimRight(m.safeRenderMarkdown(msg.Content), "\n")
			}
			sb.WriteString(m.styles.AssistantBubble.Render(body))
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}

// renderTyping is the placeholder row shown while a reply is pending.
func (m Model) renderTyping() string {
	return m.styles.AssistantLabel.Render(assistantLabel) + " " +
		m.spinner.View() + " " +
		m.styles.Typing.Render("正在思考")
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) renderComposer() string {
	busy := m.ctrl.Awaiting()

	box, button := m.styles.Composer, m.styles.SendIdle
	if busy {
		box, button = m.styles.ComposerBusy, m.styles.SendBusy
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		box.Render(m.textarea.View()),
		" ",
		button.Render(m.sendCaption()),
	)
}

func (m Model) renderFooter() string {
	return m.styles.Muted.Render(m.help.View(m.keys))
}

// sendCaption reports the caption the send button currently shows.
func (m Model) sendCaption() string {
	if m.ctrl.Awaiting() {
		return pendingCaption
	}
	return idleCaption
}
