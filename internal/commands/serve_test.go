package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gyanova/gyanova/internal/api"
	"github.com/gyanova/gyanova/internal/config"
	"github.com/gyanova/gyanova/internal/logging"
	"github.com/gyanova/gyanova/internal/models"
	"github.com/gyanova/gyanova/internal/relay"
)

func TestServeFlagsApply(t *testing.T) {
	base := config.DefaultConfig()

	tests := []struct {
		name  string
		flags serveFlags
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name:  "no flags keep config",
			flags: serveFlags{},
			check: func(t *testing.T, cfg config.Config) {
				if cfg != base {
					t.Errorf("cfg = %+v, want unchanged", cfg)
				}
			},
		},
		{
			name:  "all flags override",
			flags: serveFlags{addr: ":9999", backend: config.BackendSDK, model: "pro", persona: "concise", endpoint: "http://upstream.test"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.Addr != ":9999" || cfg.Backend != config.BackendSDK || cfg.Model != "pro" ||
					cfg.Persona != "concise" || cfg.Endpoint != "http://upstream.test" {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.flags.apply(base))
		})
	}
}

func TestBuildHandler(t *testing.T) {
	deps, env := newTestDeps(t, "", nil)
	t.Setenv(models.APIKeyEnv, "test-key")
	env.gen.Answer = &models.Answer{Text: "Hello"}

	handler, err := buildHandler(deps.withDefaults(), env.cfg, logging.Discard())
	if err != nil {
		t.Fatalf("buildHandler() error: %v", err)
	}

	t.Run("relay", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/gemini", strings.NewReader(`{"question":"Hi"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp models.AnswerResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp.Text != "Hello" {
			t.Errorf("text = %q, want Hello", resp.Text)
		}
		if !strings.Contains(env.gen.LastPrompt, "User: Hi") {
			t.Errorf("prompt %q should carry the persona framing", env.gen.LastPrompt)
		}
	})

	t.Run("page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Gyanova") {
			t.Error("expected the chat page")
		}
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gemini", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), relay.MsgMethodNotAllowed) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestBuildHandler_UnknownPersona(t *testing.T) {
	deps, env := newTestDeps(t, "", nil)
	env.cfg.Persona = "nobody"

	if _, err := buildHandler(deps.withDefaults(), env.cfg, logging.Discard()); err == nil {
		t.Fatal("expected error for an unknown persona")
	}
}

func TestServeCommand_InvalidBackend(t *testing.T) {
	deps, _ := newTestDeps(t, "", nil)
	cmd := NewRootCmd(deps)
	cmd.SetArgs([]string{"serve", "--backend", "grpc"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for an unknown backend")
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		check   func(t *testing.T, gen api.Generator)
	}{
		{
			name:    "rest",
			backend: config.BackendREST,
			check: func(t *testing.T, gen api.Generator) {
				c, ok := gen.(*api.GeminiClient)
				if !ok {
					t.Fatalf("got %T, want *api.GeminiClient", gen)
				}
				if c.GetModel().Name != "gemini-2.5-pro" {
					t.Errorf("model = %s", c.GetModel().Name)
				}
				if !strings.HasPrefix(c.URL(), "http://upstream.test") {
					t.Errorf("url = %s, want the endpoint override", c.URL())
				}
			},
		},
		{
			name:    "sdk",
			backend: config.BackendSDK,
			check: func(t *testing.T, gen api.Generator) {
				if _, ok := gen.(*api.SDKClient); !ok {
					t.Fatalf("got %T, want *api.SDKClient", gen)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Backend = tt.backend
			cfg.Model = "gemini-2.5-pro"
			cfg.Endpoint = "http://upstream.test"

			gen, err := newGenerator(cfg)
			if err != nil {
				t.Fatalf("newGenerator() error: %v", err)
			}
			tt.check(t, gen)
		})
	}
}
