package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gyanova/gyanova/internal/config"
)

// NewPersonaCmd creates the persona command and its subcommands
func NewPersonaCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Manage personas",
		Long: `View and manage personas, the preamble the relay puts in front of
every question. Built-in personas can be listed and shown but not deleted.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonaList(deps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show persona details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonaShow(deps, args[0])
		},
	})

	var description, prompt string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new persona",
		Long: `Add a persona. Without --prompt the system prompt is read from stdin,
ending with an empty line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonaAdd(deps, args[0], description, prompt)
		},
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Short description")
	addCmd.Flags().StringVar(&prompt, "prompt", "", "System prompt")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeletePersona(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Persona '%s' deleted.\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "default <name>",
		Short: "Set default persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFileConfig()
			if err != nil {
				return err
			}
			if err := setPersona(&cfg, args[0]); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Default persona set to '%s'.\n", args[0])
			return nil
		},
	})

	return cmd
}

func runPersonaList(deps *Dependencies) error {
	personas, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	defaultName := config.DefaultPersonaName
	if cfg, err := deps.LoadConfig(); err == nil && cfg.Persona != "" {
		defaultName = cfg.Persona
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION\tDEFAULT")
	_, _ = fmt.Fprintln(w, "----\t-----------\t-------")

	for _, p := range personas {
		isDefault := ""
		if p.Name == defaultName {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Description, isDefault)
	}

	return w.Flush()
}

func runPersonaShow(deps *Dependencies, name string) error {
	persona, err := config.GetPersona(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Name: %s\n", persona.Name)
	fmt.Fprintf(deps.Stdout, "Description: %s\n", persona.Description)
	fmt.Fprintf(deps.Stdout, "\nSystem Prompt:\n%s\n", persona.SystemPrompt)

	return nil
}

func runPersonaAdd(deps *Dependencies, name, description, prompt string) error {
	if prompt == "" {
		var err error
		if prompt, err = readPersonaPrompt(deps.Stdin, deps.Stdout); err != nil {
			return err
		}
	}

	persona := config.Persona{
		Name:         name,
		Description:  strings.TrimSpace(description),
		SystemPrompt: prompt,
	}
	if err := config.AddPersona(persona); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Persona '%s' created.\n", name)
	return nil
}

// readPersonaPrompt reads lines until an empty line or EOF
func readPersonaPrompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "Enter system prompt (end with an empty line):")

	reader := bufio.NewReader(in)
	var promptLines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n\r")
		if line == "" {
			break
		}
		promptLines = append(promptLines, line)
		if err != nil {
			break
		}
	}

	return strings.Join(promptLines, "\n"), nil
}
