package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/carbon/internal/config"
	"example.com/carbon/internal/logging"
)

// loadEnvironment reads configuration and builds a logger that writes to the
// command's error stream, honouring the persistent log flags.
func loadEnvironment(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	level := cfg.LogLevel
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}
	format, _ := cmd.Flags().GetString("log-format")

	return cfg, logging.Configure(level, format, cmd.ErrOrStderr()), nil
}
