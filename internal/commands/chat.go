package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gyanova/gyanova/internal/chat"
	"github.com/gyanova/gyanova/internal/logging"
	"github.com/gyanova/gyanova/internal/render"
	"github.com/gyanova/gyanova/internal/tui"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies, flags *queryFlags) *cobra.Command {
	deps = deps.withDefaults()

	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat with a running gyanova relay.

Enter sends, Esc cancels a pending answer or quits, ctrl+y copies the
last answer. Start the relay first with 'gyanova serve'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// The alternate screen owns the terminal, so logs only go to a file
			logger := logging.Discard()
			if cfg.LogFile != "" {
				if logger, err = logging.Init(cfg); err != nil {
					return fmt.Errorf("failed to set up logging: %w", err)
				}
			} else {
				slog.SetDefault(logger)
			}

			relayURL := firstNonEmpty(flags.relayURL, cfg.RelayURL)
			asker, err := deps.NewAsker(relayURL)
			if err != nil {
				return fmt.Errorf("failed to create relay client: %w", err)
			}

			if !render.SetTUITheme(cfg.TUITheme) {
				logger.Warn("unknown_tui_theme", "theme", cfg.TUITheme)
			}
			tui.UpdateTheme()

			session := chat.NewSession(asker, chat.WithSessionLogger(logger))
			return deps.RunChat(commandContext(cmd), session, relayURL,
				tui.WithRenderOptions(render.OptionsFromConfig(cfg)),
				tui.WithClipboard(deps.Clipboard),
			)
		},
	}
}
