package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gyanova/gyanova/internal/chat"
	"github.com/gyanova/gyanova/internal/models"
	"github.com/gyanova/gyanova/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// answerMsg carries the assistant message appended by Session.Resolve
	answerMsg struct {
		msg models.Message
	}
	// copiedMsg reports the result of a clipboard write
	copiedMsg struct {
		err error
	}
)

// Model represents the TUI state
type Model struct {
	ctx        context.Context
	session    *chat.Session
	relayURL   string
	renderOpts render.Options
	copyText   func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading        bool
	cancel         context.CancelFunc
	ready          bool
	notice         string
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// Option configures a Model
type Option func(*Model)

// WithRenderOptions sets how answers are rendered
func WithRenderOptions(opts render.Options) Option {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// WithClipboard replaces the clipboard writer
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copyText = fn
	}
}

// WithContext sets the parent context of every relay call
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// NewChatModel creates a new chat TUI model around session
func NewChatModel(session *chat.Session, relayURL string, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your question here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		ctx:        context.Background(),
		session:    session,
		relayURL:   relayURL,
		renderOpts: render.DefaultOptions(),
		copyText:   clipboard.WriteAll,
		textarea:   ta,
		spinner:    s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelInFlight()
			return m, tea.Quit

		case "esc":
			if m.loading {
				// The session still appends a fallback answer for the cancelled call.
				m.cancelInFlight()
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+y":
			return m, m.copyLastAnswer()

		case "enter":
			return m.submit()
		}

	case answerMsg:
		m.loading = false
		m.cancel = nil
		m.updateViewport()
		m.viewport.GotoBottom()

	case copiedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
		} else {
			m.err = nil
			m.notice = "Copied last answer to clipboard"
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only KeyMsg reaches the textarea so escape sequences don't leak into it
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

const busyNotice = "Still thinking about the last question..."

// submit hands the typed text to the session. Empty input and input
// typed while an answer is pending are not sent.
func (m Model) submit() (tea.Model, tea.Cmd) {
	// Keys don't reach the textarea while loading, so check before reading it
	if m.loading || m.session.Thinking() {
		m.notice = busyNotice
		return m, nil
	}

	input := m.textarea.Value()

	switch strings.TrimSpace(input) {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	}

	question, err := m.session.Begin(input)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return m, nil
	case errors.Is(err, chat.ErrBusy):
		m.notice = busyNotice
		return m, nil
	case err != nil:
		m.err = err
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.loading = true
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.textarea.Reset()
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.resolve(ctx, cancel, question),
		m.spinner.Tick,
		animationTick(),
	)
}

// resolve asks the relay off the UI goroutine
func (m Model) resolve(ctx context.Context, cancel context.CancelFunc, question string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		defer cancel()
		return answerMsg{msg: session.Resolve(ctx, question)}
	}
}

func (m *Model) cancelInFlight() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) copyLastAnswer() tea.Cmd {
	text := m.session.LastAnswer()
	copyText := m.copyText
	return func() tea.Msg {
		if text == "" {
			return copiedMsg{err: fmt.Errorf("nothing to copy yet")}
		}
		return copiedMsg{err: copyText(text)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Gyanova"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.relayURL),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  ⚠ %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoadingAnimation renders the thinking indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(gradientColors[(frame+i)%len(gradientColors)]).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Thinking ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy answer"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport redraws the transcript
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.session.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("⬤ You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		} else {
			rendered := render.Answer(msg.Text, m.renderOpts.WithWidth(bubbleWidth-4))
			content.WriteString(assistantLabelStyle.Render("✦ Gyanova") + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(ctx context.Context, session *chat.Session, relayURL string, opts ...Option) error {
	opts = append([]Option{WithContext(ctx)}, opts...)
	m := NewChatModel(session, relayURL, opts...)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
