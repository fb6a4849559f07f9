// Command deskpilot is a rule-based desktop command assistant: type what you
// want done in plain English and it opens, creates, searches, messages or
// calls.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/agent"
	"github.com/flynn-ai/deskpilot/internal/config"
	"github.com/flynn-ai/deskpilot/internal/logging"
)

// cli holds the state shared by every command of one invocation.
type cli struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *logging.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "deskpilot",
		Short: "DeskPilot - natural-language desktop commands",
		Long: `DeskPilot turns plain-English commands into desktop actions.

Examples:
  deskpilot run open my downloads
  deskpilot run "create a new file called notes.txt"
  deskpilot run "call 0244123456 and say I will be late"
  deskpilot parse --output yaml "send email to ann@example.com subject hi"

Run without arguments for an interactive session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runREPL(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging on the console")

	rootCmd.AddCommand(
		c.newRunCmd(),
		c.newParseCmd(),
		c.newBatchCmd(),
		c.newHistoryCmd(),
		c.newConfigCmd(),
		c.newCheckCmd(),
	)
	return rootCmd
}

// setup loads secrets, configuration and the logger.
func (c *cli) setup() error {
	for _, env := range []string{".env", filepath.Join(filepath.Dir(c.cfgFile), ".env")} {
		if err := config.LoadEnvFile(env); err != nil {
			return fmt.Errorf("load %s: %w", env, err)
		}
	}

	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg

	logger, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		JSON:       cfg.Logging.JSON,
		Verbose:    c.verbose,
		Dir:        cfg.Paths.LogsDir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.logger = logger
	c.logger.Debug("configuration loaded", zap.String("path", c.cfgFile))
	return nil
}

// assistant builds the assistant with the OS backends.
func (c *cli) assistant(opts agent.Options) (*agent.Assistant, error) {
	return agent.Build(c.cfg, c.logger.Logger, opts)
}
