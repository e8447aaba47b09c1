package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/runway/internal/config"
	logpkg "github.com/kailas-cloud/runway/internal/logger"
	"github.com/kailas-cloud/runway/internal/version"
)

var (
	// Global flags
	env        string
	configPath string

	// Set by PersistentPreRunE.
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "runway",
	Short:   "runway token ledger service",
	Version: version.String(),
	Long: `runway keeps the token balance that gates AI features.

Users earn tokens once per completed step and spend them on AI actions.
"serve" runs the HTTP API; "ledger" inspects and edits the stored ledger.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load(env)
		}
		if err != nil {
			return err //nolint:wrapcheck // already describes the config file
		}

		logger, err = logpkg.NewLogger(env, cfg.Logging.Level)
		return err //nolint:wrapcheck
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "environment: local, dev, docker, prod")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (overrides --env lookup)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
