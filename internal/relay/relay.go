// Package relay implements the stateless question-to-answer proxy in front of Gemini.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/gyanova/gyanova/internal/api"
	"github.com/gyanova/gyanova/internal/config"
	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
)

// Messages returned to callers
const (
	MsgInvalidQuestion  = "Invalid question"
	MsgServerBusy       = "Server thoda busy hai, baad mein try karo."
	MsgMethodNotAllowed = "Method not allowed"

	// FallbackPhrase replaces an upstream response that carries no answer text
	FallbackPhrase = "Samajh nahi aaya 😅 thoda aur clearly poochoge?"
)

// KeyFunc resolves the upstream credential. It is called once per request.
type KeyFunc func() string

// Relay wraps a question in the persona preamble and asks the generator.
// It holds no per-request state and is safe for concurrent use.
type Relay struct {
	generator api.Generator
	persona   *config.Persona
	apiKey    KeyFunc
	logger    *slog.Logger
}

// Option configures a Relay
type Option func(*Relay)

// WithPersona sets the preamble persona
func WithPersona(p *config.Persona) Option {
	return func(r *Relay) {
		r.persona = p
	}
}

// WithKeyFunc sets how the credential is looked up
func WithKeyFunc(fn KeyFunc) Option {
	return func(r *Relay) {
		r.apiKey = fn
	}
}

// WithLogger sets the operator logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// New creates a Relay. Without options it uses the built-in default persona
// and reads GEMINI_API_KEY from the environment on every request.
func New(generator api.Generator, opts ...Option) *Relay {
	r := &Relay{
		generator: generator,
		apiKey:    config.APIKey,
		logger:    slog.Default(),
	}
	for _, p := range config.DefaultPersonas() {
		if p.Name == config.DefaultPersonaName {
			persona := p
			r.persona = &persona
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ParseQuestion extracts the question from a request body.
// Malformed JSON is a parse fault; valid JSON without a non-empty string
// question is ErrInvalidQuestion.
func ParseQuestion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("request body is not valid JSON", "")
	}

	q := gjson.GetBytes(body, "question")
	if q.Type != gjson.String || q.Str == "" {
		return "", apierrors.ErrInvalidQuestion
	}
	return q.Str, nil
}

// Answer returns the answer text for question. Missing upstream text is
// replaced by FallbackPhrase; errors are limited to a missing credential
// and upstream faults.
func (r *Relay) Answer(ctx context.Context, question string) (string, error) {
	if question == "" {
		return "", apierrors.ErrInvalidQuestion
	}

	key := ""
	if r.apiKey != nil {
		key = r.apiKey()
	}
	if key == "" {
		return "", apierrors.NewMissingKeyError(models.APIKeyEnv)
	}

	prompt := config.FormatPrompt(r.persona, question)

	answer, err := r.generator.Generate(ctx, key, prompt)
	if err != nil {
		return "", fmt.Errorf("upstream generate: %w", err)
	}

	r.logger.Debug("relay_upstream_answer",
		"status", answerStatus(answer),
		"finish_reason", answerField(answer, func(a *models.Answer) string { return a.FinishReason }),
		"text_len", len(answerField(answer, func(a *models.Answer) string { return a.Text })),
	)

	if !answer.HasText() {
		r.logger.Info("relay_fallback_answer",
			"status", answerStatus(answer),
			"finish_reason", answerField(answer, func(a *models.Answer) string { return a.FinishReason }),
			"block_reason", answerField(answer, func(a *models.Answer) string { return a.BlockReason }),
			"upstream_error", answerField(answer, func(a *models.Answer) string { return a.ErrorMessage }),
		)
		return FallbackPhrase, nil
	}

	return answer.Text, nil
}

// Classify maps an Answer error to the HTTP status and client message
func Classify(err error) (int, string) {
	var cfgErr *apierrors.ConfigError
	switch {
	case errors.Is(err, apierrors.ErrInvalidQuestion):
		return 400, MsgInvalidQuestion
	case errors.As(err, &cfgErr):
		return 500, cfgErr.Error()
	default:
		return 500, MsgServerBusy
	}
}

func answerStatus(a *models.Answer) int {
	if a == nil {
		return 0
	}
	return a.Status
}

func answerField(a *models.Answer, get func(*models.Answer) string) string {
	if a == nil {
		return ""
	}
	return get(a)
}
