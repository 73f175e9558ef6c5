package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gyanova/gyanova/internal/chat"
	"github.com/gyanova/gyanova/internal/config"
	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/logging"
	"github.com/gyanova/gyanova/internal/relay"
	"github.com/gyanova/gyanova/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#a78bfa"), // Violet
	lipgloss.Color("#818cf8"), // Indigo
	lipgloss.Color("#60a5fa"), // Blue
	lipgloss.Color("#38bdf8"), // Sky
	lipgloss.Color("#2dd4bf"), // Teal
	lipgloss.Color("#f472b6"), // Pink
}

var (
	colorText     = lipgloss.Color("#e0e7ff")
	colorTextDim  = lipgloss.Color("#6b7280")
	colorTextMute = lipgloss.Color("#374151")
	colorSuccess  = lipgloss.Color("#34d399")
	colorPrimary  = lipgloss.Color("#818cf8")
	colorError    = lipgloss.Color("#f87171")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// queryFlags are shared by the root command and ask
type queryFlags struct {
	relayURL string
	file     string
	output   string
	persona  string
	raw      bool
	direct   bool
}

func addQueryFlags(cmd *cobra.Command, flags *queryFlags) {
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Save answer to file")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read question from file")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Print only the answer text")
	cmd.Flags().BoolVar(&flags.direct, "direct", false, "Call Gemini in-process instead of a running relay")
	cmd.Flags().StringVarP(&flags.persona, "persona", "p", "", "Persona for --direct (default from config)")
}

// NewAskCmd creates the ask command
func NewAskCmd(deps *Dependencies, flags *queryFlags) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Send one question and print the answer. The question comes from --file,
piped stdin or the argument. By default the question goes to a running relay;
--direct calls Gemini from this process with GEMINI_API_KEY.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, ok, err := readPrompt(deps.Stdin, flags.file, args)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no question given")
			}
			return runQuery(commandContext(cmd), deps, flags, prompt)
		},
	}
	addQueryFlags(cmd, flags)
	return cmd
}

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// relayAsker answers in-process through a Relay, for --direct
type relayAsker struct {
	relay *relay.Relay
}

// Ask implements chat.Asker with the same messages the HTTP relay sends
func (a relayAsker) Ask(ctx context.Context, question string) (string, error) {
	text, err := a.relay.Answer(ctx, question)
	if err != nil {
		_, msg := relay.Classify(err)
		return msg, err
	}
	return text, nil
}

// newQueryAsker returns the in-process relay for --direct, or a relay client
func newQueryAsker(deps *Dependencies, cfg config.Config, flags *queryFlags) (chat.Asker, string, error) {
	if !flags.direct {
		relayURL := firstNonEmpty(flags.relayURL, cfg.RelayURL)
		asker, err := deps.NewAsker(relayURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create relay client: %w", err)
		}
		return asker, relayURL, nil
	}

	persona, err := config.GetPersona(firstNonEmpty(flags.persona, cfg.Persona))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load persona: %w", err)
	}
	gen, err := deps.NewGenerator(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create %s backend: %w", cfg.Backend, err)
	}
	return relayAsker{relay: relay.New(gen, relay.WithPersona(persona), relay.WithLogger(slog.Default()))}, "Gemini", nil
}

// runQuery asks a single question and writes the answer.
// Non-terminal stdout gets the raw answer text.
func runQuery(ctx context.Context, deps *Dependencies, flags *queryFlags, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.InitWithWriter(cfg, deps.Stderr); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	rawOutput := flags.raw || !deps.IsTTY()

	asker, target, err := newQueryAsker(deps, cfg, flags)
	if err != nil {
		return err
	}

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(deps.Stderr, "Asking "+target)
		spin.start()
	}

	startTime := time.Now()
	text, askErr := asker.Ask(ctx, prompt)
	slog.Debug("query_answered", "target", target, "duration", time.Since(startTime).Round(time.Millisecond))

	if askErr != nil {
		if !rawOutput {
			spin.stopWithError()
		}
		fmt.Fprintln(deps.Stdout, text)
		return askErr
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}

	if rawOutput {
		if flags.output != "" {
			return writeAnswerFile(flags.output, text)
		}
		fmt.Fprintln(deps.Stdout, text)
		return nil
	}

	fmt.Fprintln(deps.Stderr)

	if cfg.CopyToClipboard {
		if err := deps.Clipboard(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(deps.Stderr, clipMsg)
		}
	}

	if flags.output != "" {
		if err := writeAnswerFile(flags.output, text); err != nil {
			return err
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Answer saved to %s", flags.output),
		)
		fmt.Fprintln(deps.Stderr, successMsg)
		return nil
	}

	bubbleWidth := clamp(getTerminalWidth()-4, 40, 120)
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ Gyanova"))

	rendered := render.Answer(text, render.OptionsFromConfig(cfg).WithWidth(contentWidth))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	return nil
}

func writeAnswerFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	// Show response body if available (carries the upstream error detail)
	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else {
		switch {
		case apierrors.IsConfigError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Set GEMINI_API_KEY in the environment or in a .env file"))
		case apierrors.IsNetworkError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Is the relay running? Start it with 'gyanova serve' or use --direct"))
		case apierrors.IsParseError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: The answer was not JSON. Check --relay points at a gyanova relay"))
		}
	}

	return sb.String()
}
