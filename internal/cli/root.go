// Package cli provides the command-line interface for the bot.
package cli

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"justtrades-bot/internal/config"
	"justtrades-bot/internal/logging"
	"justtrades-bot/internal/security"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	ConfigDir string

	now func() time.Time
}

// Now returns the current time in the configured timezone.
func (a *App) Now() time.Time {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	if a.Config != nil {
		if loc, err := a.Config.Location(); err == nil {
			return now().In(loc)
		}
	}
	return now()
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	return newRootCmd(&App{Logger: logger})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "justtrades",
		Short: "JustTrades - Discord bot for a futures trading community",
		Long: `JustTrades runs the community's Discord bot: market snapshots, trade alerts,
the economic calendar and the scheduled daily and weekly digests.

Use 'justtrades serve' to connect to Discord.
Use 'justtrades config init' to write a starter config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			app.ConfigDir, _ = cmd.Flags().GetString("config")
			if app.ConfigDir == "" {
				app.ConfigDir = config.DefaultConfigDir()
			}

			if cmd.Annotations[skipConfig] == "" {
				cfg, err := config.Load(app.ConfigDir)
				if err != nil {
					return err
				}
				app.Config = cfg
				app.Logger = logging.NewLoggerWithConfig(logConfig(cfg.Logging))

				// Offline commands keep stdout for their own output.
				if cmd.Name() != "serve" && !debug {
					app.Logger = app.Logger.Level(zerolog.WarnLevel)
				}
			}

			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/justtrades)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
	rootCmd.AddCommand(newDigestCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func logConfig(cfg config.LoggingConfig) logging.LogConfig {
	lc := logging.DefaultLogConfig()
	lc.Level = cfg.Level
	lc.JSON = cfg.JSON
	lc.File = cfg.File
	if cfg.FilePath != "" {
		lc.FilePath = cfg.FilePath
	}
	return lc
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
					"go_version": runtime.Version(),
				})
			}
			output.Printf("JustTrades Bot v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			output.Dim("Go: %s", runtime.Version())
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			settings := security.MaskMap(app.Config.Settings())
			if output.IsJSON() {
				return output.JSON(settings)
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return err
			}
			output.Bold("Configuration (%s)", app.ConfigDir)
			output.Printf("%s", data)
			if app.Config.RequireToken() != nil {
				output.Warning("Discord token is not set; 'serve' will refuse to start.")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration file path",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := filepath.Join(app.ConfigDir, config.TemplateFileName)
			if output.IsJSON() {
				return output.JSON(map[string]string{"config_dir": app.ConfigDir, "config_file": path})
			}
			output.Printf("Config directory: %s\n", app.ConfigDir)
			output.Printf("Config file:      %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			// Load already validated everything except the token.
			tokenErr := app.Config.RequireToken()
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true, "token_set": tokenErr == nil})
			}
			output.Success("Configuration is valid")
			if tokenErr != nil {
				output.Warning("Discord token is not set (DISCORD_BOT_TOKEN)")
			}
			return nil
		},
	})

	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a starter config.yaml",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			force, _ := cmd.Flags().GetBool("force")
			path, err := config.WriteTemplate(app.ConfigDir, force)
			if err != nil {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"config_file": path})
			}
			output.Success("Wrote %s", path)
			output.Dim("Set DISCORD_BOT_TOKEN in the environment or a .env file next to it.")
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}
