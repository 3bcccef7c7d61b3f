// Package cli wires configuration, storage and sinks into the surveywizard
// commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-surveywizard/internal/config"
	"github.com/goliatone/go-surveywizard/internal/logging"
)

type app struct {
	configPath string
	envFile    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "surveywizard",
		Short: "Survey configuration wizard",
		Long: `surveywizard walks a survey configuration through its steps: product,
respondents, distribution criteria, impact drivers, eNPS and comments.

Use "run" for the terminal wizard or "serve" for the HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.runCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.scenariosCmd())
	root.AddCommand(a.schemaCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init() error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if a.verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
