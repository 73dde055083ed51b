// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/budget-analytics/internal/config"
	"fjacquet/budget-analytics/internal/container"
	"fjacquet/budget-analytics/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	Validate bool
}

// GlobalFlags override configuration values for a single invocation
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget-analytics",
		Short: "Assign analytical accounts to transaction lines.",
		Long: `budget-analytics resolves the analytical (cost-center) account of invoice,
bill and purchase order lines. A manual account always wins, then the most
specific confirmed rule, then the product's default account.`,
		SilenceUsage:      true,
		PersistentPreRunE: initContainer,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					AppContainer.GetLogger().WithError(err).Warn("Failed to close resources")
				}
				AppContainer = nil
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}

	// Global configuration overrides
	Global = GlobalFlags{}

	// AppContainer is built before any subcommand runs
	AppContainer *container.Container
)

func init() {
	Cmd.PersistentFlags().StringVar(&Global.ConfigFile, "config", "", "Config file (default: ./config.yaml or ~/.budget-analytics/config.yaml)")
	Cmd.PersistentFlags().StringVar(&Global.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	Cmd.PersistentFlags().StringVar(&Global.LogFormat, "log-format", "", "Log format: text or json")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate the input file before processing")
}

// LoadConfig reads the configuration and applies the command-line overrides.
func LoadConfig() (*config.Config, error) {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(Global.ConfigFile)
	if err != nil {
		return nil, err
	}
	if Global.LogLevel != "" {
		cfg.Log.Level = Global.LogLevel
	}
	if Global.LogFormat != "" {
		cfg.Log.Format = Global.LogFormat
	}
	return cfg, nil
}

func initContainer(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := container.NewContainerWithContext(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	AppContainer = c
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return AppContainer
}

// GetLogger returns the configured logger, or a discard logger before
// initialization.
func GetLogger() logging.Logger {
	if AppContainer == nil {
		return logging.NewDiscardLogger()
	}
	return AppContainer.GetLogger()
}
