package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyanova/gyanova/internal/config"
	"github.com/gyanova/gyanova/internal/render"
)

// configView is what `gyanova config` prints
type configView struct {
	config.Config
	ConfigPath string   `json:"config_path"`
	APIKey     string   `json:"api_key"`
	Backends   []string `json:"backends"`
	Styles     []string `json:"markdown_styles"`
	TUIThemes  []string `json:"tui_themes"`
}

// configSetters maps settable keys onto the config file
var configSetters = map[string]func(cfg *config.Config, value string) error{
	"addr":      func(c *config.Config, v string) error { c.Addr = v; return nil },
	"model":     func(c *config.Config, v string) error { c.Model = v; return nil },
	"backend":   func(c *config.Config, v string) error { c.Backend = v; return nil },
	"endpoint":  func(c *config.Config, v string) error { c.Endpoint = v; return nil },
	"persona":   setPersona,
	"relay_url": func(c *config.Config, v string) error { c.RelayURL = v; return nil },
	"log_level": func(c *config.Config, v string) error { c.LogLevel = v; return nil },
	"log_format": func(c *config.Config, v string) error {
		if v != "json" && v != "text" {
			return fmt.Errorf("log_format must be json or text")
		}
		c.LogFormat = v
		return nil
	},
	"log_file": func(c *config.Config, v string) error { c.LogFile = v; return nil },
	"copy_to_clipboard": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false")
		}
		c.CopyToClipboard = b
		return nil
	},
	"tui_theme": func(c *config.Config, v string) error {
		if _, ok := render.GetTUIThemeByName(v); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)", v, strings.Join(render.TUIThemeNames(), ", "))
		}
		c.TUITheme = v
		return nil
	},
	"markdown.style": func(c *config.Config, v string) error {
		if !render.ValidStyle(v) {
			return fmt.Errorf("unknown style %q (available: %s, or a JSON file)", v, strings.Join(render.StyleNames(), ", "))
		}
		c.Markdown.Style = v
		return nil
	},
}

func setPersona(c *config.Config, name string) error {
	if _, err := config.GetPersona(name); err != nil {
		return err
	}
	c.Persona = name
	return nil
}

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after environment overrides as JSON.
The API key is shown redacted and is never written to the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			view := configView{
				Config:     cfg,
				ConfigPath: path,
				APIKey:     config.RedactedKey(config.APIKey()),
				Backends:   config.AvailableBackends(),
				Styles:     render.StyleNames(),
				TUIThemes:  render.TUIThemeNames(),
			}

			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(deps.Stdout, string(data))
			return nil
		},
	}

	cmd.AddCommand(newConfigSetCmd(deps))
	return cmd
}

func newConfigSetCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting in the config file",
		Long:  "Change a setting in the config file. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			set, ok := configSetters[key]
			if !ok {
				return fmt.Errorf("unknown key %q (available: %s)", key, strings.Join(configKeys(), ", "))
			}

			// Environment overrides must not leak into the file
			cfg, err := config.LoadFileConfig()
			if err != nil {
				return err
			}
			if err := set(&cfg, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(deps.Stdout, "%s = %s\n", key, value)
			return nil
		},
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
