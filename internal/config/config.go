// Package config provides configuration types and defaults for ferry.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DeckConfig defines a single deck (column) on the board.
type DeckConfig struct {
	Name  string `mapstructure:"name"`
	Color string `mapstructure:"color"` // hex color e.g. "#10B981"
	Limit int    `mapstructure:"limit"` // max cards accepted, 0 = unlimited
}

// OverlayConfig holds drag overlay rendering options.
type OverlayConfig struct {
	// MaxRendered bounds how many dragged cards the overlay draws.
	// Dragging more shows a "+N" badge instead.
	MaxRendered int `mapstructure:"max_rendered"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowCounts    bool `mapstructure:"show_counts"`
	ShowStatusBar bool `mapstructure:"show_status_bar"`
}

// ThemeConfig holds color customization options.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"`
	Subtle    string `mapstructure:"subtle"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// Config holds all configuration options for ferry.
type Config struct {
	DBPath      string        `mapstructure:"db_path"`
	AutoRefresh bool          `mapstructure:"auto_refresh"`
	UI          UIConfig      `mapstructure:"ui"`
	Theme       ThemeConfig   `mapstructure:"theme"`
	Overlay     OverlayConfig `mapstructure:"overlay"`
	Decks       []DeckConfig  `mapstructure:"decks"`
}

// DefaultDBPath returns ~/.ferry/ferry.db, or a relative fallback if the
// home directory is unavailable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ferry/ferry.db"
	}
	return filepath.Join(home, ".ferry", "ferry.db")
}

// DefaultDecks returns the default deck configuration.
func DefaultDecks() []DeckConfig {
	return []DeckConfig{
		{Name: "To Do", Color: "#FF8787"},
		{Name: "Doing", Color: "#54A0FF", Limit: 3},
		{Name: "Done", Color: "#73F59F"},
	}
}

// Defaults returns the full default configuration.
func Defaults() Config {
	return Config{
		DBPath:      DefaultDBPath(),
		AutoRefresh: true,
		UI: UIConfig{
			ShowCounts:    true,
			ShowStatusBar: true,
		},
		Theme: ThemeConfig{
			Highlight: "#EE6FF8",
			Subtle:    "#5C5C5C",
			Error:     "#FF5555",
			Success:   "#50FA7B",
		},
		Overlay: OverlayConfig{
			MaxRendered: 3,
		},
		Decks: DefaultDecks(),
	}
}

// ValidateDecks checks deck configuration for errors.
// Returns nil if decks are valid or empty (will use defaults).
func ValidateDecks(decks []DeckConfig) error {
	if len(decks) == 0 {
		return nil // Will use defaults
	}

	seen := make(map[string]struct{}, len(decks))
	for i, deck := range decks {
		if deck.Name == "" {
			return fmt.Errorf("deck %d: name is required", i)
		}
		if _, dup := seen[deck.Name]; dup {
			return fmt.Errorf("deck %d: duplicate name %q", i, deck.Name)
		}
		seen[deck.Name] = struct{}{}
		if deck.Limit < 0 {
			return fmt.Errorf("deck %d (%s): limit must not be negative", i, deck.Name)
		}
	}
	return nil
}

// ValidateOverlay checks overlay configuration for errors.
func ValidateOverlay(overlay OverlayConfig) error {
	if overlay.MaxRendered < 1 {
		return fmt.Errorf("overlay.max_rendered must be at least 1, got %d", overlay.MaxRendered)
	}
	return nil
}

// WriteDefaultConfig writes the default configuration as YAML to path,
// creating parent directories as needed. Fails if the file already exists.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaults := Defaults()
	doc := map[string]any{
		"db_path":      defaults.DBPath,
		"auto_refresh": defaults.AutoRefresh,
		"ui": map[string]any{
			"show_counts":     defaults.UI.ShowCounts,
			"show_status_bar": defaults.UI.ShowStatusBar,
		},
		"theme": map[string]any{
			"highlight": defaults.Theme.Highlight,
			"subtle":    defaults.Theme.Subtle,
			"error":     defaults.Theme.Error,
			"success":   defaults.Theme.Success,
		},
		"overlay": map[string]any{
			"max_rendered": defaults.Overlay.MaxRendered,
		},
		"decks": decksToYAML(defaults.Decks),
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling defaults: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func decksToYAML(decks []DeckConfig) []map[string]any {
	out := make([]map[string]any, len(decks))
	for i, deck := range decks {
		m := map[string]any{
			"name":  deck.Name,
			"color": deck.Color,
		}
		if deck.Limit > 0 {
			m["limit"] = deck.Limit
		}
		out[i] = m
	}
	return out
}
