package render

import (
	"os"
	"sort"

	"github.com/charmbracelet/glamour/styles"
)

// Glamour styles worth naming in help text
const (
	StyleDark       = styles.DarkStyle
	StyleLight      = styles.LightStyle
	StyleNoTTY      = styles.NoTTYStyle
	StyleTokyoNight = styles.TokyoNightStyle
)

// IsStandardStyle reports whether style names a style compiled into glamour
func IsStandardStyle(style string) bool {
	_, ok := styles.DefaultStyles[style]
	return ok
}

// IsStyleFile reports whether style points at a readable JSON style file
func IsStyleFile(style string) bool {
	info, err := os.Stat(style)
	return err == nil && !info.IsDir()
}

// ValidStyle reports whether style can be used for rendering
func ValidStyle(style string) bool {
	return IsStandardStyle(style) || IsStyleFile(style)
}

// StyleNames returns the built-in glamour style names, sorted
func StyleNames() []string {
	names := make([]string, 0, len(styles.DefaultStyles))
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
