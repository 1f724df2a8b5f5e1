package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ASHISH26940/stockledger/internal/config"
	"github.com/ASHISH26940/stockledger/internal/logger"
	"github.com/ASHISH26940/stockledger/internal/store"
)

const defaultConfigFile = "stockledger.toml"

// newRootCommand creates the stockledger command. It runs the fixed
// demonstration sequence against the configured inventory file.
func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "stockledger",
		Short:        "In-memory inventory bookkeeping",
		Long:         "stockledger loads an inventory document, applies a fixed series of stock movements, reports the result and saves it back.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			usingDefaults := false
			if err := cfg.Load(configFile); err != nil {
				// Only the implicit default file may be absent.
				if !errors.Is(err, os.ErrNotExist) || cmd.Flags().Changed("config") {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = config.New()
				usingDefaults = true
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()

			if usingDefaults {
				log.Debug("config file not found, using defaults", zap.String("path", configFile))
			}

			st := store.New(store.WithLogger(log))
			return runDemo(cmd.OutOrStdout(), st, cfg, log)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", defaultConfigFile, "Path to config file")
	return cmd
}
