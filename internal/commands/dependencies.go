package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/gyanova/gyanova/internal/api"
	"github.com/gyanova/gyanova/internal/chat"
	"github.com/gyanova/gyanova/internal/config"
	"github.com/gyanova/gyanova/internal/models"
	"github.com/gyanova/gyanova/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LoadConfig returns the effective configuration
	LoadConfig func() (config.Config, error)

	// NewGenerator builds the upstream backend selected by cfg
	NewGenerator func(cfg config.Config) (api.Generator, error)

	// NewAsker builds a client for the relay at relayURL
	NewAsker func(relayURL string) (chat.Asker, error)

	// RunChat runs the terminal chat until the user quits
	RunChat func(ctx context.Context, session *chat.Session, relayURL string, opts ...tui.Option) error

	// Clipboard copies text to the system clipboard
	Clipboard func(text string) error

	// IsTTY reports whether stdout is a terminal
	IsTTY func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		LoadConfig:   config.LoadConfig,
		NewGenerator: newGenerator,
		NewAsker:     newRelayClient,
		RunChat:      tui.RunChat,
		Clipboard:    clipboard.WriteAll,
		IsTTY:        isStdoutTTY,
	}
}

// withDefaults fills unset fields so tests only set what they use
func (d *Dependencies) withDefaults() *Dependencies {
	defaults := NewDependencies()
	if d == nil {
		return defaults
	}

	out := *d
	if out.Stdin == nil {
		out.Stdin = defaults.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = defaults.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = defaults.Stderr
	}
	if out.LoadConfig == nil {
		out.LoadConfig = defaults.LoadConfig
	}
	if out.NewGenerator == nil {
		out.NewGenerator = defaults.NewGenerator
	}
	if out.NewAsker == nil {
		out.NewAsker = defaults.NewAsker
	}
	if out.RunChat == nil {
		out.RunChat = defaults.RunChat
	}
	if out.Clipboard == nil {
		out.Clipboard = defaults.Clipboard
	}
	if out.IsTTY == nil {
		out.IsTTY = defaults.IsTTY
	}
	return &out
}

// newGenerator builds the upstream backend named by cfg.Backend
func newGenerator(cfg config.Config) (api.Generator, error) {
	model := models.ModelFromName(cfg.Model)

	switch cfg.Backend {
	case config.BackendSDK:
		opts := []api.SDKOption{api.WithSDKModel(model)}
		if cfg.Endpoint != "" {
			opts = append(opts, api.WithSDKEndpoint(cfg.Endpoint))
		}
		return api.NewSDKClient(opts...), nil
	default:
		opts := []api.ClientOption{api.WithModel(model)}
		if cfg.Endpoint != "" {
			opts = append(opts, api.WithEndpoint(cfg.Endpoint))
		}
		return api.NewClient(opts...)
	}
}

// newRelayClient builds a relay client over the shared tls-client transport
func newRelayClient(relayURL string) (chat.Asker, error) {
	httpClient, err := api.NewHTTPClient(api.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return chat.NewClient(relayURL, httpClient), nil
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
