package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/gyanova/gyanova/internal/models"
)

var (
	// ErrEmptyInput is returned for blank submissions
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy is returned while a previous question is unanswered
	ErrBusy = errors.New("a question is already in flight")
)

// Session is one chat conversation. At most one question is in flight.
type Session struct {
	mu         sync.Mutex
	transcript *Transcript
	thinking   bool

	asker  Asker
	logger *slog.Logger
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithSessionLogger sets the logger used for relay failures
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session whose transcript starts with the greeting
func NewSession(asker Asker, opts ...SessionOption) *Session {
	s := &Session{
		transcript: NewTranscript(models.Message{Role: models.RoleAssistant, Text: Greeting}),
		asker:      asker,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin records a user submission and raises the thinking flag.
// The returned question is text as typed.
func (s *Session) Begin(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.thinking {
		return "", ErrBusy
	}
	_ = s.transcript.Append(models.Message{Role: models.RoleUser, Text: text})
	s.thinking = true
	return text, nil
}

// Resolve asks the relay and appends exactly one assistant message.
// The thinking flag is cleared on every path, including a panicking Asker.
func (s *Session) Resolve(ctx context.Context, question string) (msg models.Message) {
	defer s.finish()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat_ask_panic", "panic", r)
			msg = s.appendAnswer(FallbackServerError)
		}
	}()

	text, err := s.asker.Ask(ctx, question)
	if err != nil {
		s.logger.Warn("chat_ask_failed", "error", err)
	}
	if text == "" {
		text = FallbackServerError
	}
	return s.appendAnswer(text)
}

// Submit is Begin followed by Resolve
func (s *Session) Submit(ctx context.Context, text string) (models.Message, error) {
	question, err := s.Begin(text)
	if err != nil {
		return models.Message{}, err
	}
	return s.Resolve(ctx, question), nil
}

// Thinking reports whether a question is in flight
func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thinking
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// LastAnswer returns the text of the most recent assistant message
func (s *Session) LastAnswer() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.transcript.messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			return msgs[i].Text
		}
	}
	return ""
}

func (s *Session) appendAnswer(text string) models.Message {
	msg := models.Message{Role: models.RoleAssistant, Text: text}

	s.mu.Lock()
	_ = s.transcript.Append(msg)
	s.mu.Unlock()

	return msg
}

func (s *Session) finish() {
	s.mu.Lock()
	s.thinking = false
	s.mu.Unlock()
}
