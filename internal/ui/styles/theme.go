package styles

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // headers, spinner
	Accent  color.Color // dry-run previews, prompts
	Success color.Color // cloned, reachable
	Error   color.Color // failed
	Muted   color.Color // skipped, unknown
	Warning color.Color // unreachable remotes
}

// Preset themes
var (
	// DefaultTheme uses the 256-color palette
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),  // cyan/teal
		Accent:  lipgloss.Color("212"), // pink/magenta
		Success: lipgloss.Color("82"),  // green
		Error:   lipgloss.Color("196"), // red
		Muted:   lipgloss.Color("240"), // dark gray
		Warning: lipgloss.Color("214"), // orange
	}

	// DraculaTheme is based on the Dracula color scheme
	DraculaTheme = Theme{
		Primary: lipgloss.Color("#bd93f9"),
		Accent:  lipgloss.Color("#ff79c6"),
		Success: lipgloss.Color("#50fa7b"),
		Error:   lipgloss.Color("#ff5555"),
		Muted:   lipgloss.Color("#6272a4"),
		Warning: lipgloss.Color("#ffb86c"),
	}

	// NordTheme is based on the Nord color scheme
	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"),
		Accent:  lipgloss.Color("#b48ead"),
		Success: lipgloss.Color("#a3be8c"),
		Error:   lipgloss.Color("#bf616a"),
		Muted:   lipgloss.Color("#4c566a"),
		Warning: lipgloss.Color("#ebcb8b"),
	}

	// NoneTheme renders without any colors (uses terminal defaults)
	// Formatting (bold) is preserved
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

var presets = map[string]*Theme{
	"default": &DefaultTheme,
	"dracula": &DraculaTheme,
	"nord":    &NordTheme,
	"none":    &NoneTheme,
}

// PresetNames returns the available theme names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// currentTheme holds the active theme
var currentTheme = DefaultTheme

// Current returns the current theme
func Current() Theme {
	return currentTheme
}

// Init activates the named preset. Empty selects the default theme.
// Call this after loading config and before displaying any UI.
func Init(name string) error {
	if name == "" {
		name = "default"
	}
	t, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	currentTheme = *t
	applyTheme(*t)
	return nil
}

// applyTheme updates all global style variables to use the given theme
func applyTheme(t Theme) {
	Primary = t.Primary
	Accent = t.Accent
	Success = t.Success
	Error = t.Error
	Muted = t.Muted
	Warning = t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
}
