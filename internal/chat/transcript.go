// Package chat holds the client side of a conversation: the transcript,
// the in-flight guard and the relay client.
package chat

import (
	"errors"

	"github.com/gyanova/gyanova/internal/models"
)

// Greeting is the assistant message every transcript starts with
const Greeting = "Hey ✨ I’m your AI Assistant. Ask me anything."

// ErrEmptyRole is returned when appending a message without a role
var ErrEmptyRole = errors.New("message role must not be empty")

// Transcript is an append-only ordered list of messages.
// It is not safe for concurrent use on its own; Session guards it.
type Transcript struct {
	messages []models.Message
}

// NewTranscript creates a transcript seeded with initial messages
func NewTranscript(initial ...models.Message) *Transcript {
	t := &Transcript{}
	for _, m := range initial {
		_ = t.Append(m)
	}
	return t
}

// Append adds msg to the end of the transcript
func (t *Transcript) Append(msg models.Message) error {
	if msg.Role == "" {
		return ErrEmptyRole
	}
	t.messages = append(t.messages, msg)
	return nil
}

// Messages returns a copy of the transcript
func (t *Transcript) Messages() []models.Message {
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message
func (t *Transcript) Last() (models.Message, bool) {
	if len(t.messages) == 0 {
		return models.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
