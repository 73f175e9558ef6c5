package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyanova/gyanova/internal/config"
	"github.com/gyanova/gyanova/internal/logging"
	"github.com/gyanova/gyanova/internal/relay"
	"github.com/gyanova/gyanova/internal/server"
	"github.com/gyanova/gyanova/internal/web"
)

type serveFlags struct {
	addr     string
	backend  string
	model    string
	persona  string
	endpoint string
}

// NewServeCmd creates the serve command
func NewServeCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay and the web chat",
		Long: `Serve the answer relay at POST /api/gemini and the chat page at /.
GEMINI_API_KEY is read on every request, so it can be set after start-up
without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = flags.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.InitWithWriter(cfg, deps.Stderr)
			if err != nil {
				logger.Warn("log_file_unavailable", "path", cfg.LogFile, "error", err)
			}

			handler, err := buildHandler(deps, cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("relay_configured",
				"backend", cfg.Backend,
				"model", cfg.Model,
				"persona", cfg.Persona,
				"api_key", config.RedactedKey(config.APIKey()),
			)
			return server.New(cfg.Addr, handler, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&flags.backend, "backend", "", "Upstream backend: rest or sdk")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	cmd.Flags().StringVarP(&flags.persona, "persona", "p", "", "Persona prepended to every question")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "Override the Gemini base URL")

	return cmd
}

func (f *serveFlags) apply(cfg config.Config) config.Config {
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.persona != "" {
		cfg.Persona = f.persona
	}
	if f.endpoint != "" {
		cfg.Endpoint = f.endpoint
	}
	return cfg
}

// buildHandler wires the relay, the chat page and the health check
func buildHandler(deps *Dependencies, cfg config.Config, logger *slog.Logger) (http.Handler, error) {
	persona, err := config.GetPersona(cfg.Persona)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}

	gen, err := deps.NewGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", cfg.Backend, err)
	}

	page, err := web.NewPage(web.DefaultPageData())
	if err != nil {
		return nil, fmt.Errorf("failed to build chat page: %w", err)
	}

	r := relay.New(gen, relay.WithPersona(persona), relay.WithLogger(logger))
	return server.NewMux(relay.NewHandler(r), page), nil
}

// commandContext returns the command context, or Background when cobra has none
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
