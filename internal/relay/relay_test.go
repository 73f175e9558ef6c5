package relay

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gyanova/gyanova/internal/api"
	"github.com/gyanova/gyanova/internal/config"
	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
)

func configErr() error {
	return apierrors.NewMissingKeyError(models.APIKeyEnv)
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      string
		wantErr   error
		wantParse bool
	}{
		{name: "valid", body: `{"question":"2+2?"}`, want: "2+2?"},
		{name: "whitespace kept", body: `{"question":"  hi  "}`, want: "  hi  "},
		{name: "extra fields", body: `{"question":"hi","history":[1,2]}`, want: "hi"},
		{name: "escaped", body: `{"question":"line\nbreak \"q\""}`, want: "line\nbreak \"q\""},
		{name: "empty", body: `{"question":""}`, wantErr: apierrors.ErrInvalidQuestion},
		{name: "number", body: `{"question":1}`, wantErr: apierrors.ErrInvalidQuestion},
		{name: "missing", body: `{}`, wantErr: apierrors.ErrInvalidQuestion},
		{name: "not json", body: `nope`, wantParse: true},
		{name: "empty body", body: ``, wantParse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuestion([]byte(tt.body))

			switch {
			case tt.wantParse:
				if !apierrors.IsParseError(err) {
					t.Errorf("error = %v, want ParseError", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("question = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestRelay_DefaultPersona(t *testing.T) {
	gen := &api.MockGenerator{Answer: &models.Answer{Text: "x"}}
	r := New(gen, WithKeyFunc(staticKey("k")), WithLogger(quietLogger()))

	if _, err := r.Answer(context.Background(), "hi"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	persona, err := config.GetPersona("")
	if err != nil {
		t.Fatalf("GetPersona() error = %v", err)
	}
	if want := config.FormatPrompt(persona, "hi"); gen.LastPrompt != want {
		t.Errorf("prompt = %q, want %q", gen.LastPrompt, want)
	}
}

func TestRelay_EnvKey(t *testing.T) {
	t.Setenv(models.APIKeyEnv, "from-env")
	gen := &api.MockGenerator{Answer: &models.Answer{Text: "x"}}
	r := New(gen, WithLogger(quietLogger()))

	if _, err := r.Answer(context.Background(), "hi"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if gen.LastAPIKey != "from-env" {
		t.Errorf("api key = %q, want from-env", gen.LastAPIKey)
	}
}

func TestRelay_AnswerEmptyQuestion(t *testing.T) {
	r := New(&api.MockGenerator{}, WithKeyFunc(staticKey("k")), WithLogger(quietLogger()))

	if _, err := r.Answer(context.Background(), ""); !errors.Is(err, apierrors.ErrInvalidQuestion) {
		t.Errorf("error = %v, want ErrInvalidQuestion", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid question", apierrors.ErrInvalidQuestion, http.StatusBadRequest, MsgInvalidQuestion},
		{"missing key", configErr(), http.StatusInternalServerError, "GEMINI_API_KEY not set in environment"},
		{"network", apierrors.NewNetworkError("generate content", errors.New("x")), http.StatusInternalServerError, MsgServerBusy},
		{"parse", apierrors.NewParseError("bad", ""), http.StatusInternalServerError, MsgServerBusy},
		{"plain", errors.New("plain"), http.StatusInternalServerError, MsgServerBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Classify(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("Classify() = (%d, %q), want (%d, %q)", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}
