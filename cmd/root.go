package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/ferry/internal/app"
	"github.com/zjrosen/ferry/internal/config"
	"github.com/zjrosen/ferry/internal/infrastructure/sqlite"
	"github.com/zjrosen/ferry/internal/log"
	"github.com/zjrosen/ferry/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "ferry",
	Short:   "A drag-and-drop card board for the terminal",
	Long:    `A terminal card board where cards move between decks by mouse drag and drop, backed by a local SQLite database.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/ferry/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write a debug log next to the database")
	rootCmd.Flags().StringP("path", "p", "",
		"path to the card database file")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic board refresh when the database changes")

	// Bind flags to viper
	_ = viper.BindPFlag("db_path", rootCmd.Flags().Lookup("path"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("ui.show_counts", defaults.UI.ShowCounts)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)
	viper.SetDefault("overlay.max_rendered", defaults.Overlay.MaxRendered)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .ferry/config.yaml (current directory)
		// 2. ~/.config/ferry/config.yaml (user config)
		if _, err := os.Stat(".ferry/config.yaml"); err == nil {
			viper.SetConfigFile(".ferry/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "ferry"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .ferry/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".ferry/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
	if len(cfg.Decks) == 0 {
		cfg.Decks = config.DefaultDecks()
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.ValidateDecks(cfg.Decks); err != nil {
		return fmt.Errorf("invalid deck configuration: %w", err)
	}
	if err := config.ValidateOverlay(cfg.Overlay); err != nil {
		return fmt.Errorf("invalid overlay configuration: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}

	if debug || os.Getenv("FERRY_DEBUG") != "" {
		cleanup, err := log.Init(filepath.Join(filepath.Dir(dbPath), "ferry.log"))
		if err != nil {
			return fmt.Errorf("initializing debug log: %w", err)
		}
		defer cleanup()
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening card database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Handle --no-auto-refresh flag (negated logic)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	var w *watcher.Watcher
	if cfg.AutoRefresh {
		w, err = watcher.New(watcher.DefaultConfig(dbPath))
		if err != nil {
			return fmt.Errorf("creating database watcher: %w", err)
		}
	}

	// Store the config file path for saving deck changes
	configFilePath := viper.ConfigFileUsed()
	if configFilePath == "" {
		configFilePath = ".ferry/config.yaml"
	}

	// Zone marks drive drag-and-drop hit testing; the global manager must
	// exist before the first View call.
	zone.NewGlobal()
	defer zone.Close()

	model := app.New(app.Services{
		Config:     &cfg,
		ConfigPath: configFilePath,
		Repo:       db.Cards(),
		Watcher:    w,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err = p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
