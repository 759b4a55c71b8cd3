// Package tui is the terminal chat interface. It renders the conversation,
// forwards user actions to the session, and re-renders on store change
// notifications. All conversation state lives in the session and store; the
// model only keeps a display copy.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/neurocura/neurocura/pkg/chat"
	"github.com/neurocura/neurocura/session"
)

const (
	headerText     = "Neurocura AI Assistant"
	disclaimerText = "This is an AI assistant and not a replacement for professional medical advice. " +
		"Please consult with healthcare professionals for medical decisions."
)

// storeEventMsg carries a store change notification into the update loop.
type storeEventMsg chat.Event

type model struct {
	sess   *session.Session
	logger *zap.Logger

	turns       []chat.Turn
	selectedIdx int
	focused     bool

	// editingID is the user turn being edited, empty when composing a new
	// message.
	editingID string

	// overlay holds the edit-history text while it is shown.
	overlay string

	textArea textarea.Model
	status   string
	keyMap   KeyMap
	style    *Style
	renderer *glamour.TermRenderer

	width  int
	height int
}

func newModel(sess *session.Session, logger *zap.Logger) model {
	ta := textarea.New()
	ta.Placeholder = "Ask about brain health..."
	ta.SetHeight(3)
	ta.Focus()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logger.Warn("markdown renderer unavailable", zap.Error(err))
	}

	return model{
		sess:     sess,
		logger:   logger,
		textArea: ta,
		focused:  true,
		status:   "Ready",
		keyMap:   DefaultKeyMap,
		style:    DefaultStyles(),
		renderer: renderer,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textArea.SetWidth(msg.Width - 4)
		if renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-6),
		); err == nil {
			m.renderer = renderer
		}

	case storeEventMsg:
		m.turns = m.sess.Store().Turns()
		if m.selectedIdx >= len(m.turns) {
			m.selectedIdx = len(m.turns) - 1
		}
		if m.selectedIdx < 0 {
			m.selectedIdx = 0
		}
		m.status = statusFor(chat.Event(msg))
	}

	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay != "" {
		// Any key closes the history overlay.
		m.overlay = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.UnfocusInput):
		if m.focused {
			m.textArea.Blur()
			m.focused = false
		}
		m.editingID = ""
		return m, nil

	case key.Matches(msg, m.keyMap.FocusInput):
		if !m.focused {
			m.focused = true
			return m, m.textArea.Focus()
		}

	case key.Matches(msg, m.keyMap.SubmitMessage):
		if m.focused {
			m.submit()
			return m, nil
		}

	case key.Matches(msg, m.keyMap.ClearChat):
		m.sess.Reset()
		m.editingID = ""
		m.textArea.Reset()
		return m, nil

	case key.Matches(msg, m.keyMap.SelectPrevMessage):
		if !m.focused && m.selectedIdx > 0 {
			m.selectedIdx--
			return m, nil
		}

	case key.Matches(msg, m.keyMap.SelectNextMessage):
		if !m.focused && m.selectedIdx < len(m.turns)-1 {
			m.selectedIdx++
			return m, nil
		}

	case key.Matches(msg, m.keyMap.EditMessage):
		if !m.focused {
			m.beginEdit()
			return m, m.textArea.Focus()
		}

	case key.Matches(msg, m.keyMap.ViewHistory):
		if !m.focused {
			m.showHistory()
			return m, nil
		}
	}

	if m.focused {
		var cmd tea.Cmd
		m.textArea, cmd = m.textArea.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit sends the textarea content as a new message, or applies it as an
// edit when one is in progress.
func (m *model) submit() {
	text := m.textArea.Value()

	var err error
	if m.editingID != "" {
		_, err = m.sess.Edit(m.editingID, text)
	} else {
		_, _, err = m.sess.Send(text)
	}

	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		m.status = "Message is empty"
		return
	case err != nil:
		m.status = "Error: " + err.Error()
		return
	}

	m.editingID = ""
	m.textArea.Reset()
	m.status = "Processing..."
}

// beginEdit loads the selected user turn into the textarea.
func (m *model) beginEdit() {
	turn, ok := m.selectedTurn()
	if !ok || turn.Author != chat.AuthorUser {
		m.status = "Only your own messages can be edited"
		return
	}

	m.editingID = turn.ID
	m.textArea.SetValue(turn.Text)
	m.focused = true
	m.status = "Editing message"
}

// showHistory opens the edit-history overlay for the selected user turn.
func (m *model) showHistory() {
	turn, ok := m.selectedTurn()
	if !ok || turn.Author != chat.AuthorUser {
		return
	}

	versions, err := m.sess.History(turn.ID)
	if err != nil || len(versions) == 0 {
		m.overlay = "No edit history available for this message."
		return
	}

	var b strings.Builder
	b.WriteString("Edit History:\n\n")
	for i, text := range versions {
		fmt.Fprintf(&b, "Version %d:\n%s\n\n", i+1, text)
	}
	fmt.Fprintf(&b, "Current Version:\n%s", turn.Text)
	m.overlay = b.String()
}

func (m *model) selectedTurn() (chat.Turn, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.turns) {
		return chat.Turn{}, false
	}
	return m.turns[m.selectedIdx], true
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.style.Header.Render(headerText))
	b.WriteString("\n")
	b.WriteString(m.style.Disclaimer.Render(disclaimerText))
	b.WriteString("\n\n")

	if m.overlay != "" {
		b.WriteString(m.style.AssistantMessage.Render(m.overlay))
		b.WriteString("\n\n")
		b.WriteString(m.style.StatusBar.Render("Press any key to close"))
		return b.String()
	}

	for i, turn := range m.turns {
		b.WriteString(m.renderTurn(turn, i == m.selectedIdx && !m.focused))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.textArea.View())
	b.WriteString("\n")
	b.WriteString(m.style.StatusBar.Render(
		m.status + "  ·  tab send · esc select · e edit · h history · ctrl+l clear · ctrl+c quit",
	))

	return b.String()
}

func (m model) renderTurn(turn chat.Turn, selected bool) string {
	prefix := "You: "
	if turn.Author == chat.AuthorAssistant {
		prefix = "Neurocura: "
	}

	var body string
	style := m.style.UserMessage

	switch {
	case turn.Author == chat.AuthorAssistant && turn.Status == chat.StatusPending:
		body = prefix + "..."
		style = m.style.PendingMessage
	case turn.Author == chat.AuthorAssistant && turn.Status == chat.StatusFailed:
		body = prefix + "An error occurred: " + turn.ErrText
		style = m.style.FailedMessage
	case turn.Author == chat.AuthorAssistant:
		body = prefix + m.renderMarkdown(turn.Text)
		style = m.style.AssistantMessage
	default:
		body = prefix + turn.Text
	}

	if selected {
		style = m.style.SelectedMessage
	}

	return style.Width(max(20, m.width-4)).Render(body)
}

func (m model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func statusFor(e chat.Event) string {
	switch {
	case e.TurnID == "":
		return "Ready"
	case e.Status == chat.StatusPending:
		return "Processing..."
	case e.Status == chat.StatusFailed:
		return "Error occurred"
	default:
		return "Ready"
	}
}

// Run starts the terminal interface and blocks until the user quits.
func Run(ctx context.Context, sess *session.Session, logger *zap.Logger) error {
	p := tea.NewProgram(
		newModel(sess, logger),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Store notifications are delivered into the update loop so renders
	// happen on the program's goroutine only.
	sess.Store().Subscribe(func(e chat.Event) {
		go p.Send(storeEventMsg(e))
	})

	_, err := p.Run()
	return err
}
