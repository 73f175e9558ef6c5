package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gyanova/gyanova/internal/chat"
	"github.com/gyanova/gyanova/internal/config"
	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
	"github.com/gyanova/gyanova/internal/relay"
)

func TestAskCommand_Raw(t *testing.T) {
	deps, env := newTestDeps(t, "Go is a programming language.", nil)
	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"ask", "--raw", "What is Go?"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if env.stdout.String() != "Go is a programming language.\n" {
		t.Errorf("stdout = %q", env.stdout.String())
	}
	if len(env.relayURLs) != 1 || env.relayURLs[0] != config.DefaultConfig().RelayURL {
		t.Errorf("relay URLs = %v, want the configured relay", env.relayURLs)
	}
}

func TestAskCommand_RelayFlag(t *testing.T) {
	deps, env := newTestDeps(t, "ok", nil)
	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"--relay", "http://relay.test:9000", "ask", "hi"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(env.relayURLs) != 1 || env.relayURLs[0] != "http://relay.test:9000" {
		t.Errorf("relay URLs = %v, want the flag value", env.relayURLs)
	}
}

func TestAskCommand_NoQuestion(t *testing.T) {
	deps, _ := newTestDeps(t, "", nil)
	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"ask"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when no question is given")
	}
}

func TestRunQuery_EmptyPrompt(t *testing.T) {
	deps, env := newTestDeps(t, "unused", nil)

	err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{}, "   \n")
	if err == nil {
		t.Fatal("expected error for an empty prompt")
	}
	if len(env.asked()) != 0 {
		t.Error("an empty prompt must not be asked")
	}
}

func TestRunQuery_SendsPromptVerbatim(t *testing.T) {
	deps, env := newTestDeps(t, "ok", nil)

	prompt := "  What is Go?\n"
	if err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{raw: true}, prompt); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	asked := env.asked()
	if len(asked) != 1 || asked[0] != prompt {
		t.Errorf("asked = %q, want %q", asked, prompt)
	}
}

func TestRunQuery_OutputFile(t *testing.T) {
	deps, env := newTestDeps(t, "saved answer", nil)
	out := filepath.Join(t.TempDir(), "answer.md")

	if err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{output: out}, "question"); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(data) != "saved answer" {
		t.Errorf("file = %q", string(data))
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout should stay empty when writing a file, got %q", env.stdout.String())
	}
}

func TestRunQuery_AskFailure(t *testing.T) {
	askErr := apierrors.NewNetworkErrorWithEndpoint("ask relay", "http://localhost:8080/api/gemini", errors.New("connection refused"))
	deps, env := newTestDeps(t, chat.FallbackServerError, askErr)

	err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{}, "question")
	if !errors.Is(err, askErr) {
		t.Fatalf("runQuery() error = %v, want the ask error", err)
	}
	if !strings.Contains(env.stdout.String(), chat.FallbackServerError) {
		t.Errorf("expected the fallback text on stdout, got %q", env.stdout.String())
	}
}

func TestRunQuery_Decorated(t *testing.T) {
	deps, env := newTestDeps(t, "Hello there", nil)
	deps.IsTTY = func() bool { return true }
	env.cfg.CopyToClipboard = true

	if err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{}, "hi"); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, "Gyanova") {
		t.Errorf("expected assistant label, got %q", out)
	}
	if !strings.Contains(out, "Hello there") {
		t.Errorf("expected the answer, got %q", out)
	}
	if len(env.copied) != 1 || env.copied[0] != "Hello there" {
		t.Errorf("clipboard = %v, want the answer", env.copied)
	}
	if !strings.Contains(env.stderr.String(), "Copied to clipboard") {
		t.Errorf("expected clipboard notice on stderr, got %q", env.stderr.String())
	}
}

func TestRunQuery_ClipboardFailure(t *testing.T) {
	deps, env := newTestDeps(t, "Hello there", nil)
	deps.IsTTY = func() bool { return true }
	deps.Clipboard = func(string) error { return errors.New("no clipboard") }
	env.cfg.CopyToClipboard = true

	if err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{}, "hi"); err != nil {
		t.Fatalf("clipboard failure should not fail the query: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "Failed to copy to clipboard") {
		t.Errorf("expected clipboard warning, got %q", env.stderr.String())
	}
}

func TestRunQuery_Direct(t *testing.T) {
	deps, env := newTestDeps(t, "", nil)
	t.Setenv(models.APIKeyEnv, "test-key")
	env.gen.Answer = &models.Answer{Text: "Direct answer"}

	flags := &queryFlags{direct: true, persona: "plain"}
	if err := runQuery(context.Background(), deps.withDefaults(), flags, "What is Go?"); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}

	if env.stdout.String() != "Direct answer\n" {
		t.Errorf("stdout = %q", env.stdout.String())
	}
	if env.gen.LastPrompt != "What is Go?" {
		t.Errorf("prompt = %q, want the literal question for the plain persona", env.gen.LastPrompt)
	}
	if env.gen.LastAPIKey != "test-key" {
		t.Errorf("api key = %q", env.gen.LastAPIKey)
	}
	if len(env.relayURLs) != 0 {
		t.Error("--direct must not build a relay client")
	}
}

func TestRunQuery_DirectFallback(t *testing.T) {
	deps, env := newTestDeps(t, "", nil)
	t.Setenv(models.APIKeyEnv, "test-key")
	env.gen.Answer = &models.Answer{FinishReason: "SAFETY"}

	if err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{direct: true}, "hi"); err != nil {
		t.Fatalf("runQuery() error: %v", err)
	}
	if env.stdout.String() != relay.FallbackPhrase+"\n" {
		t.Errorf("stdout = %q, want the fallback phrase", env.stdout.String())
	}
}

func TestRunQuery_DirectMissingKey(t *testing.T) {
	deps, env := newTestDeps(t, "", nil)
	t.Setenv(models.APIKeyEnv, "")

	err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{direct: true}, "hi")
	if !apierrors.IsConfigError(err) {
		t.Fatalf("runQuery() error = %v, want a config error", err)
	}
	if !strings.Contains(env.stdout.String(), "GEMINI_API_KEY not set in environment") {
		t.Errorf("stdout = %q", env.stdout.String())
	}
	if env.gen.CallCount() != 0 {
		t.Error("the backend must not be called without a key")
	}
}

func TestRunQuery_DirectUnknownPersona(t *testing.T) {
	deps, _ := newTestDeps(t, "", nil)

	err := runQuery(context.Background(), deps.withDefaults(), &queryFlags{direct: true, persona: "nobody"}, "hi")
	if err == nil || !strings.Contains(err.Error(), "persona") {
		t.Fatalf("runQuery() error = %v, want a persona error", err)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    []string
		wantNot []string
	}{
		{
			name: "api error with body",
			err:  apierrors.NewAPIErrorWithBody(500, "/api/gemini", "failure", "detailed body"),
			want: []string{"HTTP Status: 500", "Endpoint: /api/gemini", "detailed body"},
		},
		{
			name: "network error",
			err:  apierrors.NewNetworkErrorWithEndpoint("ask relay", "http://localhost:8080/api/gemini", errors.New("refused")),
			want: []string{"Hint", "gyanova serve"},
		},
		{
			name: "config error",
			err:  apierrors.NewMissingKeyError(models.APIKeyEnv),
			want: []string{"Hint", ".env"},
		},
		{
			name: "parse error",
			err:  apierrors.NewParseError("not JSON", ""),
			want: []string{"Hint", "--relay"},
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			want:    []string{"Failed", "boom"},
			wantNot: []string{"Hint"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Failed")
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in %q", w, out)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(out, w) {
					t.Errorf("did not expect %q in %q", w, out)
				}
			}
		})
	}

	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, want int }{
		{10, 40},
		{76, 76},
		{200, 120},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, 40, 120); got != tt.want {
			t.Errorf("clamp(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
