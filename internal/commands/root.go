// Package commands provides CLI commands for gyanova.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyanova/gyanova/internal/config"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd creates the gyanova command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "gyanova [prompt]",
		Short: "Friendly AI chat relay for Google Gemini",
		Long: `gyanova relays questions to Google Gemini with a friendly persona.
It serves a browser chat page, runs a terminal chat, and answers one-off
questions from the command line. GEMINI_API_KEY must be set, either in the
environment or in a .env file in the working directory.

Examples:
  gyanova serve                         Start the relay and the web chat
  gyanova chat                          Chat in the terminal
  gyanova "What is Go?"                 Send a single question
  gyanova -f question.md                Read the question from a file
  cat question.md | gyanova             Read the question from stdin
  gyanova "Hello" -o answer.md          Save the answer to a file
  gyanova --direct "Hello"              Ask Gemini without a running relay`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "gyanova %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps.Stdin, flags.file, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return runQuery(commandContext(cmd), deps, flags, prompt)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.relayURL, "relay", "", "Relay base URL (default from config, http://localhost:8080)")
	addQueryFlags(cmd, flags)
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewChatCmd(deps, flags))
	cmd.AddCommand(NewAskCmd(deps, flags))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(NewPersonaCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// readPrompt picks the question from -f, piped stdin or the positional
// argument, in that order. ok is false when none of them supplied one.
func readPrompt(stdin io.Reader, file string, args []string) (string, bool, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if hasPipedInput(stdin) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), true, nil
		}
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

// hasPipedInput reports whether stdin is a pipe or a file rather than a terminal
func hasPipedInput(stdin io.Reader) bool {
	if stdin == nil {
		return false
	}
	f, ok := stdin.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
