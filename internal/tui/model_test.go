package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gyanova/gyanova/internal/chat"
	"github.com/gyanova/gyanova/internal/models"
	"github.com/gyanova/gyanova/internal/render"
)

type askerFunc func(ctx context.Context, q string) (string, error)

func (f askerFunc) Ask(ctx context.Context, q string) (string, error) {
	return f(ctx, q)
}

func fixedAnswer(text string) askerFunc {
	return func(context.Context, string) (string, error) {
		return text, nil
	}
}

func newTestModel(t *testing.T, asker chat.Asker, opts ...Option) (Model, *chat.Session) {
	t.Helper()

	session := chat.NewSession(asker)
	opts = append([]Option{WithRenderOptions(render.DefaultOptions().WithStyle(render.StyleNoTTY))}, opts...)
	m := NewChatModel(session, "http://localhost:8080", opts...)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), session
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: key})
	return updated.(Model), cmd
}

// firstCmdMsg runs the first command of a batch, which is the relay call
func firstCmdMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		if len(batch) == 0 || batch[0] == nil {
			t.Fatal("empty batch")
		}
		return batch[0]()
	}
	return msg
}

func TestModel_View_NotReady(t *testing.T) {
	m := NewChatModel(chat.NewSession(fixedAnswer("x")), "http://relay")
	if !strings.Contains(m.View(), "Initializing") {
		t.Errorf("View() before size = %q", m.View())
	}
}

func TestModel_ShowsGreeting(t *testing.T) {
	m, _ := newTestModel(t, fixedAnswer("x"))

	view := m.View()
	if !strings.Contains(view, "Ask me anything") {
		t.Error("greeting should be visible before the first question")
	}
	if !strings.Contains(view, "http://localhost:8080") {
		t.Error("header should show the relay URL")
	}
}

func TestModel_SubmitFlow(t *testing.T) {
	m, session := newTestModel(t, fixedAnswer("four, obviously"))

	m.textarea.SetValue("2+2?")
	m, cmd := press(m, tea.KeyEnter)

	if !m.loading || !session.Thinking() {
		t.Fatal("submitting should start the thinking state")
	}
	if m.textarea.Value() != "" {
		t.Error("input should be cleared after submit")
	}
	msgs := session.Messages()
	if len(msgs) != 2 || msgs[1].Role != models.RoleUser || msgs[1].Text != "2+2?" {
		t.Fatalf("transcript after submit = %+v", msgs)
	}

	answer := firstCmdMsg(t, cmd)
	updated, _ := m.Update(answer)
	m = updated.(Model)

	if m.loading || session.Thinking() {
		t.Error("thinking state should end with the answer")
	}
	msgs = session.Messages()
	if len(msgs) != 3 || msgs[2].Text != "four, obviously" {
		t.Fatalf("transcript after answer = %+v", msgs)
	}
	if !strings.Contains(m.viewport.View(), "four, obviously") {
		t.Error("answer should be rendered in the viewport")
	}
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	m, session := newTestModel(t, fixedAnswer("x"))

	m.textarea.SetValue("   ")
	m, cmd := press(m, tea.KeyEnter)

	if cmd != nil {
		t.Error("empty input should not produce a command")
	}
	if m.loading || len(session.Messages()) != 1 {
		t.Error("empty input should not start a request")
	}
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func TestModel_SecondSubmitWhileThinking(t *testing.T) {
	m, session := newTestModel(t, fixedAnswer("x"))

	m = typeText(m, "first")
	if m.textarea.Value() != "first" {
		t.Fatalf("textarea = %q", m.textarea.Value())
	}
	m, _ = press(m, tea.KeyEnter)
	if !m.loading {
		t.Fatal("first submission should start the thinking state")
	}

	m = typeText(m, "second")
	m, cmd := press(m, tea.KeyEnter)

	if cmd != nil {
		t.Error("a second submission should not start another request")
	}
	if m.notice != busyNotice {
		t.Errorf("notice = %q, want %q", m.notice, busyNotice)
	}
	if !m.loading {
		t.Error("the first request should still be pending")
	}
	msgs := session.Messages()
	if len(msgs) != 2 || msgs[1].Text != "first" {
		t.Errorf("transcript = %+v", msgs)
	}
}

func TestModel_EscCancelsInFlight(t *testing.T) {
	asker := askerFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return chat.FallbackServerError, ctx.Err()
	})
	m, session := newTestModel(t, asker)

	m.textarea.SetValue("slow question")
	m, cmd := press(m, tea.KeyEnter)

	m, escCmd := press(m, tea.KeyEsc)
	if escCmd != nil {
		t.Error("esc while thinking should cancel, not quit")
	}

	updated, _ := m.Update(firstCmdMsg(t, cmd))
	m = updated.(Model)

	if m.loading {
		t.Error("cancelled request should end the thinking state")
	}
	msgs := session.Messages()
	if got := msgs[len(msgs)-1].Text; got != chat.FallbackServerError {
		t.Errorf("last message = %q, want server error fallback", got)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t, fixedAnswer("x"))

	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := press(m, key)
		if cmd == nil {
			t.Fatalf("key %v: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %v: expected tea.QuitMsg", key)
		}
	}

	for _, word := range []string{"exit", "/quit"} {
		m.textarea.SetValue(word)
		_, cmd := press(m, tea.KeyEnter)
		if cmd == nil {
			t.Fatalf("%q: expected quit command", word)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q: expected tea.QuitMsg", word)
		}
	}
}

func TestModel_CopyLastAnswer(t *testing.T) {
	var copied string
	m, _ := newTestModel(t, fixedAnswer("copy me"), WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m.textarea.SetValue("q")
	m, cmd := press(m, tea.KeyEnter)
	updated, _ := m.Update(firstCmdMsg(t, cmd))
	m = updated.(Model)

	m, cmd = press(m, tea.KeyCtrlY)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	if copied != "copy me" {
		t.Errorf("copied = %q", copied)
	}
	if m.notice == "" || m.err != nil {
		t.Errorf("notice = %q, err = %v", m.notice, m.err)
	}
}

func TestModel_CopyFailure(t *testing.T) {
	m, _ := newTestModel(t, fixedAnswer("x"), WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))

	m, cmd := press(m, tea.KeyCtrlY)
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	if m.err == nil {
		t.Fatal("clipboard failure should be shown")
	}
	if !strings.Contains(m.View(), "no clipboard") {
		t.Error("error should be rendered")
	}
}

func TestModel_LoadingView(t *testing.T) {
	m, _ := newTestModel(t, fixedAnswer("x"))

	m.textarea.SetValue("q")
	m, _ = press(m, tea.KeyEnter)
	updated, _ := m.Update(animationTickMsg{})
	m = updated.(Model)

	if m.animationFrame != 1 {
		t.Errorf("animationFrame = %d, want 1", m.animationFrame)
	}
	if !strings.Contains(m.View(), "Thinking") {
		t.Error("thinking indicator should replace the input while loading")
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("FormatError(nil) should be empty")
	}

	out := FormatError(errors.New("boom"))
	if !strings.Contains(out, "boom") {
		t.Errorf("FormatError() = %q", out)
	}
}
